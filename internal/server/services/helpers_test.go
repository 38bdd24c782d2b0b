package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/securechat/internal/dbx"
	"github.com/dmitrijs2005/securechat/internal/server/auth"
	"github.com/dmitrijs2005/securechat/internal/server/models"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	manager   *repomanager.MemoryRepositoryManager
	hasher    *auth.PasswordHasher
	tokens    *auth.JWTManager
	directory *DirectoryService
	users     *UserService
	guard     *SessionGuard
	messages  *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	m := repomanager.NewMemoryRepositoryManager()

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	tokens, err := auth.NewJWTManager([]byte("test-secret"))
	require.NoError(t, err)

	dir := NewDirectoryService(m)
	us, err := NewUserService(m, hasher, tokens, dir, 30*time.Minute)
	require.NoError(t, err)

	return &testEnv{
		manager:   m,
		hasher:    hasher,
		tokens:    tokens,
		directory: dir,
		users:     us,
		guard:     NewSessionGuard(m, tokens),
		messages:  NewMessageService(m),
	}
}

// register creates username and returns the stored identity.
func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	ctx := context.Background()

	_, err := e.users.Register(ctx, username, "", "pw-"+username, "PEM-"+username)
	require.NoError(t, err)

	u, err := e.manager.Users(nil).GetByUsername(ctx, username)
	require.NoError(t, err)
	return u
}

// countingManager counts credential-store reads.
type countingManager struct {
	*repomanager.MemoryRepositoryManager
	gets atomic.Int32
}

func (m *countingManager) Users(db dbx.DBTX) users.Repository {
	return &countingUsers{Repository: m.MemoryRepositoryManager.Users(db), gets: &m.gets}
}

type countingUsers struct {
	users.Repository
	gets *atomic.Int32
}

func (r *countingUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.gets.Add(1)
	return r.Repository.GetByUsername(ctx, username)
}
