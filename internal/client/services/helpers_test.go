package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/securechat/internal/client/client"
	"github.com/dmitrijs2005/securechat/internal/client/models"
	"github.com/dmitrijs2005/securechat/internal/common"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	repos, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos.DB
}

// fakeRelay is an in-memory client.Client that keeps users and envelopes
// the way the relay would.
type fakeRelay struct {
	mu sync.Mutex

	token    string
	users    map[string]fakeUser
	tokens   map[string]string
	messages []models.Envelope

	uploadURL string
	getURL    string

	loginErr error
}

type fakeUser struct {
	password  string
	publicKey string
}

var _ client.Client = (*fakeRelay)(nil)

func newFakeRelay() *fakeRelay {
	return &fakeRelay{users: map[string]fakeUser{}, tokens: map[string]string{}}
}

func (f *fakeRelay) current() (string, error) {
	u, ok := f.tokens[f.token]
	if !ok {
		return "", common.ErrorUnauthorized
	}
	return u, nil
}

func (f *fakeRelay) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeRelay) Register(ctx context.Context, username, email, password, publicKey string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.users[username] = fakeUser{password: password, publicKey: publicKey}
	return &models.Profile{Username: username, Email: email}, nil
}

func (f *fakeRelay) Login(ctx context.Context, username, password string) (*models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	u, ok := f.users[username]
	if !ok || u.password != password {
		return nil, common.ErrorUnauthorized
	}
	tok := "tok-" + username
	f.tokens[tok] = username
	return &models.Token{AccessToken: tok, TokenType: "bearer", ExpiresIn: 1800}, nil
}

func (f *fakeRelay) Me(ctx context.Context) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.current()
	if err != nil {
		return nil, err
	}
	return &models.Profile{Username: u}, nil
}

func (f *fakeRelay) GetPublicKey(ctx context.Context, username string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return "", common.ErrorNotFound
	}
	if u.publicKey == "" {
		return "", common.ErrPublicKeyNotFound
	}
	return u.publicKey, nil
}

func (f *fakeRelay) UpdatePublicKey(ctx context.Context, publicKey string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, err := f.current()
	if err != nil {
		return nil, err
	}
	u := f.users[name]
	u.publicKey = publicKey
	f.users[name] = u
	return &models.Profile{Username: name}, nil
}

func (f *fakeRelay) Send(ctx context.Context, recipient, encryptedContent, attachmentKey string) (*models.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sender, err := f.current()
	if err != nil {
		return nil, err
	}
	if _, ok := f.users[recipient]; !ok {
		return nil, common.ErrorNotFound
	}
	m := models.Envelope{
		ID:                int64(len(f.messages) + 1),
		SenderUsername:    sender,
		RecipientUsername: recipient,
		EncryptedContent:  encryptedContent,
		AttachmentKey:     attachmentKey,
		Timestamp:         time.Now().UTC(),
	}
	f.messages = append(f.messages, m)
	return &m, nil
}

func (f *fakeRelay) Inbox(ctx context.Context) ([]models.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, err := f.current()
	if err != nil {
		return nil, err
	}
	out := []models.Envelope{}
	for _, m := range f.messages {
		if m.RecipientUsername == name {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRelay) NewUploadSlot(ctx context.Context) (*models.UploadSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, err := f.current()
	if err != nil {
		return nil, err
	}
	if f.uploadURL == "" {
		return nil, common.ErrAttachmentsDisabled
	}
	return &models.UploadSlot{Key: "attachments/" + name + "/obj", URL: f.uploadURL}, nil
}

func (f *fakeRelay) AttachmentURL(ctx context.Context, messageID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getURL == "" {
		return "", common.ErrAttachmentsDisabled
	}
	return f.getURL, nil
}
