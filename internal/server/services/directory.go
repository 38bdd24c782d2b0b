package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/repomanager"
)

// DirectoryService resolves usernames to their current public key.
// Results are cached per username until Invalidate is called for it.
type DirectoryService struct {
	repomanager repomanager.RepositoryManager

	mu    sync.RWMutex
	cache map[string]string
	// gen changes on every invalidation; a lookup that raced with one does
	// not populate the cache.
	gen uint64
}

func NewDirectoryService(m repomanager.RepositoryManager) *DirectoryService {
	return &DirectoryService{
		repomanager: m,
		cache:       make(map[string]string),
	}
}

// LookupPublicKey returns the PEM key of username. Unknown users yield
// common.ErrorNotFound and users without a key common.ErrPublicKeyNotFound.
func (s *DirectoryService) LookupPublicKey(ctx context.Context, username string) (string, error) {
	s.mu.RLock()
	key, ok := s.cache[username]
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		return key, nil
	}

	user, err := s.repomanager.Users(s.repomanager.DB()).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}

	if user.PublicKey == "" {
		return "", common.ErrPublicKeyNotFound
	}

	s.mu.Lock()
	if s.gen == gen {
		s.cache[username] = user.PublicKey
	}
	s.mu.Unlock()

	return user.PublicKey, nil
}

// Invalidate drops the cached key of username.
func (s *DirectoryService) Invalidate(username string) {
	s.mu.Lock()
	delete(s.cache, username)
	s.gen++
	s.mu.Unlock()
}
