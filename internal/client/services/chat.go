package services

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/securechat/internal/client/client"
	"github.com/dmitrijs2005/securechat/internal/client/models"
	"github.com/dmitrijs2005/securechat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/cryptox"
	"github.com/dmitrijs2005/securechat/internal/netx"
)

type ChatService interface {
	// Send encrypts text (and attachment, when non-nil) for recipient and
	// hands the envelope to the relay.
	Send(ctx context.Context, recipient, text string, attachment []byte) (*models.Envelope, error)
	// Inbox fetches and decrypts the caller's messages, oldest first.
	Inbox(ctx context.Context) ([]models.Message, error)
	// Attachment downloads and decrypts the attachment of a received message.
	Attachment(ctx context.Context, messageID int64) ([]byte, error)
}

type chatService struct {
	client client.Client
	db     *sql.DB
	http   *http.Client
}

func NewChatService(c client.Client, db *sql.DB, httpClient *http.Client) ChatService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &chatService{client: c, db: db, http: httpClient}
}

func (s *chatService) privateKey(ctx context.Context) (*rsa.PrivateKey, error) {
	pem, err := metadata.NewSQLiteRepository(s.db).Get(ctx, keyPrivateKey)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrNoKeyPair
	}
	if err != nil {
		return nil, err
	}
	return cryptox.ParsePrivateKeyPEM(string(pem))
}

func (s *chatService) Send(ctx context.Context, recipient, text string, attachment []byte) (*models.Envelope, error) {
	pemKey, err := s.client.GetPublicKey(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("fetch public key of %s: %w", recipient, err)
	}
	pub, err := cryptox.ParsePublicKeyPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("public key of %s: %w", recipient, err)
	}

	ciphertext, err := cryptox.Encrypt(pub, []byte(text))
	if err != nil {
		return nil, err
	}

	attachmentKey := ""
	if attachment != nil {
		sealed, err := cryptox.Encrypt(pub, attachment)
		if err != nil {
			return nil, err
		}
		slot, err := s.client.NewUploadSlot(ctx)
		if err != nil {
			return nil, fmt.Errorf("upload slot: %w", err)
		}
		if err := netx.UploadToPresignedURL(ctx, s.http, slot.URL, []byte(sealed)); err != nil {
			return nil, err
		}
		attachmentKey = slot.Key
	}

	return s.client.Send(ctx, recipient, ciphertext, attachmentKey)
}

func (s *chatService) Inbox(ctx context.Context) ([]models.Message, error) {
	priv, err := s.privateKey(ctx)
	if err != nil {
		return nil, err
	}

	envelopes, err := s.client.Inbox(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Message, 0, len(envelopes))
	for _, e := range envelopes {
		m := models.Message{
			ID:            e.ID,
			From:          e.SenderUsername,
			HasAttachment: e.AttachmentKey != "",
			Timestamp:     e.Timestamp,
		}
		plain, err := cryptox.Decrypt(priv, e.EncryptedContent)
		if err != nil {
			m.Err = err
		} else {
			m.Text = string(plain)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *chatService) Attachment(ctx context.Context, messageID int64) ([]byte, error) {
	priv, err := s.privateKey(ctx)
	if err != nil {
		return nil, err
	}

	url, err := s.client.AttachmentURL(ctx, messageID)
	if err != nil {
		return nil, err
	}

	sealed, err := netx.DownloadFromPresignedURL(ctx, s.http, url)
	if err != nil {
		return nil, err
	}
	return cryptox.Decrypt(priv, string(sealed))
}
