// Package repomanager vends repository implementations bound to a database
// handle and owns schema migrations and transaction boundaries.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/securechat/internal/dbx"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error

	// DB is the non-transactional handle. It is nil for the memory backend.
	DB() dbx.DBTX

	// WithTx runs fn with a handle that scopes every repository obtained
	// from it to a single transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

	Users(db dbx.DBTX) users.Repository
	Messages(db dbx.DBTX) messages.Repository

	Close() error
}
