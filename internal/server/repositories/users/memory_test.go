package users

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h1", PublicKey: "K1"})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "K1", got.PublicKey)

	_, err = repo.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_DuplicateKeepsFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h1", PublicKey: "K1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h2", PublicKey: "K2"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)
	assert.Equal(t, "K1", got.PublicKey)
}

func TestMemoryRepository_ConcurrentCreateSingleWinner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, &models.User{Username: "race", PublicKey: fmt.Sprint(i)})
			if err == nil {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Username: "alice", PublicKey: "K1"})
	require.NoError(t, err)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	got.PublicKey = "tampered"

	again, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "K1", again.PublicKey)
}

func TestMemoryRepository_Updates(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h1", PublicKey: "K1"})
	require.NoError(t, err)

	updated, err := repo.UpdatePublicKey(ctx, "alice", "K2")
	require.NoError(t, err)
	assert.Equal(t, "K2", updated.PublicKey)

	require.NoError(t, repo.UpdatePasswordHash(ctx, "alice", "h2"))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "K2", got.PublicKey)
	assert.Equal(t, "h2", got.PasswordHash)

	_, err = repo.UpdatePublicKey(ctx, "ghost", "K")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, "ghost", "h"), common.ErrorNotFound)
}
