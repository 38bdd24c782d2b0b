package services

import (
	"fmt"

	"github.com/dmitrijs2005/securechat/internal/server/auth"
	sc "github.com/dmitrijs2005/securechat/internal/server/config"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/repomanager"
)

// Relay bundles the use cases the transports expose.
type Relay struct {
	Users       *UserService
	Directory   *DirectoryService
	Guard       *SessionGuard
	Messages    *MessageService
	Attachments *AttachmentService
}

// NewRelay wires the services over m using the signing secret, token
// lifetime and hash cost from cfg.
func NewRelay(m repomanager.RepositoryManager, cfg *sc.Config) (*Relay, error) {
	hasher, err := auth.NewPasswordHasher(cfg.PasswordHashCost)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewJWTManager([]byte(cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	directory := NewDirectoryService(m)

	users, err := NewUserService(m, hasher, tokens, directory, cfg.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("user service: %w", err)
	}

	return &Relay{
		Users:       users,
		Directory:   directory,
		Guard:       NewSessionGuard(m, tokens),
		Messages:    NewMessageService(m),
		Attachments: NewAttachmentService(m, cfg),
	}, nil
}
