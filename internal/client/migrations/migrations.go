// Package migrations embeds the goose migrations for the local client state.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
