// Package users declares the credential store contract and its PostgreSQL
// and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/securechat/internal/server/models"
)

// Repository stores identities keyed by username.
type Repository interface {
	// Create inserts user. The uniqueness check and the insert are one atomic
	// step; an existing username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns common.ErrorNotFound for unknown usernames.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdatePublicKey overwrites the stored key (last writer wins).
	UpdatePublicKey(ctx context.Context, username string, publicKey string) (*models.User, error)

	// UpdatePasswordHash replaces the digest, used when migrating hash formats.
	UpdatePasswordHash(ctx context.Context, username string, passwordHash string) error
}
