package messages

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/server/models"
)

// MemoryRepository holds all messages in append order. Ids are 1..N with
// no gaps, and a per-recipient index keeps inbox reads proportional to the
// inbox size.
type MemoryRepository struct {
	mu          sync.RWMutex
	messages    []models.Message
	byRecipient map[string][]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byRecipient: make(map[string][]int),
	}
}

func (r *MemoryRepository) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *msg
	stored.ID = int64(len(r.messages) + 1)
	r.messages = append(r.messages, stored)
	r.byRecipient[stored.RecipientUsername] = append(r.byRecipient[stored.RecipientUsername], len(r.messages)-1)

	out := stored
	return &out, nil
}

func (r *MemoryRepository) ListForRecipient(ctx context.Context, recipient string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.byRecipient[recipient]
	result := make([]models.Message, 0, len(idx))
	for _, i := range idx {
		result = append(result, r.messages[i])
	}
	return result, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 1 || id > int64(len(r.messages)) {
		return nil, common.ErrorNotFound
	}
	m := r.messages[id-1]
	return &m, nil
}
