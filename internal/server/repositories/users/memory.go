package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/server/models"
)

// MemoryRepository keeps identities in a map guarded by a single RWMutex.
// Records are copied in and out so callers never share state with the store.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]models.User),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return nil, common.ErrorAlreadyExists
	}

	now := r.now().UTC()
	stored := *user
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[user.Username] = stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &stored, nil
}

func (r *MemoryRepository) UpdatePublicKey(ctx context.Context, username string, publicKey string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	stored.PublicKey = publicKey
	stored.UpdatedAt = r.now().UTC()
	r.users[username] = stored

	return &stored, nil
}

func (r *MemoryRepository) UpdatePasswordHash(ctx context.Context, username string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[username]
	if !ok {
		return common.ErrorNotFound
	}
	stored.PasswordHash = passwordHash
	stored.UpdatedAt = r.now().UTC()
	r.users[username] = stored

	return nil
}
