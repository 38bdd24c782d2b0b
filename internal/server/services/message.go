package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/dbx"
	"github.com/dmitrijs2005/securechat/internal/server/models"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/repomanager"
)

type MessageService struct {
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewMessageService(m repomanager.RepositoryManager) *MessageService {
	return &MessageService{repomanager: m, now: time.Now}
}

// Send stores ciphertext from sender to recipient. The sender is always the
// authenticated identity. An unknown recipient yields common.ErrorNotFound
// and nothing is stored.
func (s *MessageService) Send(ctx context.Context, sender *models.User, recipient, ciphertext, attachmentKey string) (*models.Message, error) {
	if attachmentKey != "" && !strings.HasPrefix(attachmentKey, AttachmentKeyPrefix(sender.Username)) {
		return nil, fmt.Errorf("%w: attachment key does not belong to sender", common.ErrorValidation)
	}

	msg := &models.Message{
		SenderUsername:    sender.Username,
		RecipientUsername: recipient,
		EncryptedContent:  ciphertext,
		AttachmentKey:     attachmentKey,
		Timestamp:         s.now().UTC(),
	}

	var stored *models.Message
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).GetByUsername(ctx, recipient); err != nil {
			return err
		}

		var err error
		stored, err = s.repomanager.Messages(tx).Append(ctx, msg)
		return err
	})

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: error storing message: %v", common.ErrorInternal, err)
	}

	return stored, nil
}

// Inbox returns every message addressed to user, oldest first.
func (s *MessageService) Inbox(ctx context.Context, user *models.User) ([]models.Message, error) {
	msgs, err := s.repomanager.Messages(s.repomanager.DB()).ListForRecipient(ctx, user.Username)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return msgs, nil
}
