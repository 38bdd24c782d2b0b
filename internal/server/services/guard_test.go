package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	ctx := context.Background()

	valid, err := env.tokens.GenerateToken("alice", time.Minute)
	require.NoError(t, err)
	expired, err := env.tokens.GenerateToken("alice", -time.Minute)
	require.NoError(t, err)
	ghost, err := env.tokens.GenerateToken("ghost", time.Minute)
	require.NoError(t, err)
	other, _ := auth.NewJWTManager([]byte("other-secret"))
	foreign, err := other.GenerateToken("alice", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"authorized", valid, nil},
		{"missing", "", common.ErrMissingCredentials},
		{"garbage", "not-a-token", common.ErrInvalidToken},
		{"foreign secret", foreign, common.ErrInvalidToken},
		{"expired", expired, common.ErrTokenExpired},
		{"unknown subject", ghost, common.ErrUnknownSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := env.guard.Authenticate(ctx, tt.token)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "alice", user.Username)
				return
			}
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, common.ErrorUnauthorized)
		})
	}
}

func TestAuthenticateHeader(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	ctx := context.Background()

	tok, err := env.tokens.GenerateToken("alice", time.Minute)
	require.NoError(t, err)

	user, err := env.guard.AuthenticateHeader(ctx, "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = env.guard.AuthenticateHeader(ctx, "Basic abc")
	assert.ErrorIs(t, err, common.ErrMissingCredentials)
}
