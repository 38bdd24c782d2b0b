// Package services contains the CLI's application services. AuthService owns
// the session and the local key pair; ChatService encrypts, sends and opens
// messages.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securechat/internal/client/client"
	"github.com/dmitrijs2005/securechat/internal/client/models"
	"github.com/dmitrijs2005/securechat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/cryptox"
	"github.com/dmitrijs2005/securechat/internal/dbx"
)

// Metadata keys of the local state.
const (
	keyUsername   = "username"
	keyToken      = "token"
	keyPrivateKey = "private_key"
	keyPublicKey  = "public_key"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrNoKeyPair   = errors.New("no local key pair, run keygen first")
)

type AuthService interface {
	// Keygen creates and stores a key pair. An existing pair is kept unless
	// force is set. It returns the public key PEM and whether a new pair
	// was made.
	Keygen(ctx context.Context, force bool) (string, bool, error)
	Register(ctx context.Context, username, email, password string) (*models.Profile, error)
	Login(ctx context.Context, username, password string) error
	// Restore installs a saved session token on the client and returns the
	// saved username.
	Restore(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*models.Profile, error)
	// PublishKey uploads the local public key to the relay.
	PublishKey(ctx context.Context) (*models.Profile, error)
	LookupKey(ctx context.Context, username string) (string, error)
}

type authService struct {
	client client.Client
	db     *sql.DB
}

func NewAuthService(c client.Client, db *sql.DB) AuthService {
	return &authService{client: c, db: db}
}

func (a *authService) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func (a *authService) localPublicKey(ctx context.Context) (string, error) {
	pub, err := a.repo().Get(ctx, keyPublicKey)
	if errors.Is(err, common.ErrorNotFound) {
		return "", ErrNoKeyPair
	}
	if err != nil {
		return "", err
	}
	return string(pub), nil
}

func (a *authService) Keygen(ctx context.Context, force bool) (string, bool, error) {
	if !force {
		pub, err := a.localPublicKey(ctx)
		if err == nil {
			return pub, false, nil
		}
		if !errors.Is(err, ErrNoKeyPair) {
			return "", false, err
		}
	}

	priv, err := cryptox.GenerateKeyPair()
	if err != nil {
		return "", false, err
	}
	privPEM, err := cryptox.EncodePrivateKeyPEM(priv)
	if err != nil {
		return "", false, err
	}
	pubPEM, err := cryptox.EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		return "", false, err
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := metadata.NewSQLiteRepository(tx)
		if err := r.Set(ctx, keyPrivateKey, []byte(privPEM)); err != nil {
			return err
		}
		return r.Set(ctx, keyPublicKey, []byte(pubPEM))
	})
	if err != nil {
		return "", false, fmt.Errorf("save key pair: %w", err)
	}
	return pubPEM, true, nil
}

// Register creates the account with the local public key, generating a key
// pair first when none exists.
func (a *authService) Register(ctx context.Context, username, email, password string) (*models.Profile, error) {
	pub, _, err := a.Keygen(ctx, false)
	if err != nil {
		return nil, err
	}

	p, err := a.client.Register(ctx, username, email, password, pub)
	if err != nil {
		return nil, err
	}

	if err := a.repo().Set(ctx, keyUsername, []byte(p.Username)); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *authService) Login(ctx context.Context, username, password string) error {
	tok, err := a.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := metadata.NewSQLiteRepository(tx)
		if err := r.Set(ctx, keyUsername, []byte(username)); err != nil {
			return err
		}
		return r.Set(ctx, keyToken, []byte(tok.AccessToken))
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	a.client.SetToken(tok.AccessToken)
	return nil
}

func (a *authService) Restore(ctx context.Context) (string, error) {
	r := a.repo()

	tok, err := r.Get(ctx, keyToken)
	if errors.Is(err, common.ErrorNotFound) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	a.client.SetToken(string(tok))

	username, err := r.Get(ctx, keyUsername)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}
	return string(username), nil
}

// Logout forgets the session token. The key pair stays.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetToken("")
	return a.repo().Delete(ctx, keyToken)
}

func (a *authService) WhoAmI(ctx context.Context) (*models.Profile, error) {
	return a.client.Me(ctx)
}

func (a *authService) PublishKey(ctx context.Context) (*models.Profile, error) {
	pub, err := a.localPublicKey(ctx)
	if err != nil {
		return nil, err
	}
	return a.client.UpdatePublicKey(ctx, pub)
}

func (a *authService) LookupKey(ctx context.Context, username string) (string, error) {
	return a.client.GetPublicKey(ctx, username)
}
