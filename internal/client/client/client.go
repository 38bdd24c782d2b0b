// Package client talks to the relay over its HTTP API and bootstraps the
// local SQLite state used by the CLI.
package client

import (
	"context"

	"github.com/dmitrijs2005/securechat/internal/client/models"
)

// Client is the relay API as seen by the CLI. Calls that need a session use
// the token set with SetToken.
type Client interface {
	SetToken(token string)
	Register(ctx context.Context, username, email, password, publicKey string) (*models.Profile, error)
	Login(ctx context.Context, username, password string) (*models.Token, error)
	Me(ctx context.Context) (*models.Profile, error)
	GetPublicKey(ctx context.Context, username string) (string, error)
	UpdatePublicKey(ctx context.Context, publicKey string) (*models.Profile, error)
	Send(ctx context.Context, recipient, encryptedContent, attachmentKey string) (*models.Envelope, error)
	Inbox(ctx context.Context) ([]models.Envelope, error)
	NewUploadSlot(ctx context.Context) (*models.UploadSlot, error)
	AttachmentURL(ctx context.Context, messageID int64) (string, error)
}
