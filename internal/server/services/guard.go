package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/server/auth"
	"github.com/dmitrijs2005/securechat/internal/server/models"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/repomanager"
)

// SessionGuard turns a bearer token into the identity it was issued to.
// Every rejection wraps common.ErrorUnauthorized.
type SessionGuard struct {
	repomanager repomanager.RepositoryManager
	tokens      *auth.JWTManager
}

func NewSessionGuard(m repomanager.RepositoryManager, tokens *auth.JWTManager) *SessionGuard {
	return &SessionGuard{repomanager: m, tokens: tokens}
}

// Authenticate verifies token and loads its subject from the credential store.
func (g *SessionGuard) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrMissingCredentials
	}

	username, err := g.tokens.GetSubjectFromToken(token)
	if err != nil {
		return nil, err
	}

	user, err := g.repomanager.Users(g.repomanager.DB()).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownSubject
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// AuthenticateHeader accepts a raw "Bearer <token>" authorization value.
func (g *SessionGuard) AuthenticateHeader(ctx context.Context, header string) (*models.User, error) {
	token, err := auth.ParseBearer(header)
	if err != nil {
		return nil, err
	}
	return g.Authenticate(ctx, token)
}
