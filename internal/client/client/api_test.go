package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/securechat/internal/common"
)

type recorded struct {
	method      string
	path        string
	auth        string
	contentType string
	body        []byte
}

func newTestClient(t *testing.T, h func(w http.ResponseWriter, r *http.Request)) (*HTTPClient, *recorded) {
	t.Helper()
	rec := &recorded{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		rec.contentType = r.Header.Get("Content-Type")
		rec.body, _ = io.ReadAll(r.Body)
		h(w, r)
	}))
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(ts.URL+"/", ts.Client())
	require.NoError(t, err)
	return c, rec
}

func reply(status int, v any) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("ftp://relay", nil)
	require.Error(t, err)

	_, err = NewHTTPClient("://", nil)
	require.Error(t, err)

	c, err := NewHTTPClient("http://relay:8000", nil)
	require.NoError(t, err)
	assert.Equal(t, http.DefaultClient, c.HTTP())
}

func TestRegister(t *testing.T) {
	c, rec := newTestClient(t, reply(http.StatusOK, map[string]string{"username": "alice"}))

	p, err := c.Register(context.Background(), "alice", "", "pw", "PEM")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/register", rec.path)
	assert.Equal(t, "application/json", rec.contentType)
	assert.JSONEq(t, `{"username":"alice","email":"","password":"pw","public_key":"PEM"}`, string(rec.body))
	assert.Empty(t, rec.auth)
}

func TestRegister_Duplicate(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusBadRequest, map[string]string{"detail": "Username already registered"}))

	_, err := c.Register(context.Background(), "alice", "", "pw", "PEM")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorAlreadyExists))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Username already registered", apiErr.Detail)
}

func TestLogin_PostsForm(t *testing.T) {
	c, rec := newTestClient(t, reply(http.StatusOK, map[string]any{
		"access_token": "tok", "token_type": "bearer", "expires_in": 1800,
	}))

	tok, err := c.Login(context.Background(), "alice", "p&w")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, int64(1800), tok.ExpiresIn)

	assert.Equal(t, "/token", rec.path)
	assert.Equal(t, "application/x-www-form-urlencoded", rec.contentType)
	assert.Equal(t, "password=p%26w&username=alice", string(rec.body))
}

func TestLogin_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"}))

	_, err := c.Login(context.Background(), "alice", "bad")
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))
}

func TestAuthenticatedCallsCarryToken(t *testing.T) {
	c, rec := newTestClient(t, reply(http.StatusOK, map[string]string{"username": "alice"}))
	c.SetToken("abc")

	p, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "Bearer abc", rec.auth)
	assert.Equal(t, "/users/me", rec.path)
}

func TestGetPublicKey(t *testing.T) {
	c, rec := newTestClient(t, reply(http.StatusOK, "PEM DATA"))

	key, err := c.GetPublicKey(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "PEM DATA", key)
	assert.Equal(t, "/users/bob/public_key", rec.path)
}

func TestGetPublicKey_NotFoundKinds(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusNotFound, map[string]string{"detail": "User not found"}))
	_, err := c.GetPublicKey(context.Background(), "ghost")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
	assert.False(t, errors.Is(err, common.ErrPublicKeyNotFound))

	c, _ = newTestClient(t, reply(http.StatusNotFound, map[string]string{"detail": "Public key not found for user"}))
	_, err = c.GetPublicKey(context.Background(), "nokey")
	assert.True(t, errors.Is(err, common.ErrPublicKeyNotFound))
}

func TestUpdatePublicKey(t *testing.T) {
	c, rec := newTestClient(t, reply(http.StatusOK, map[string]string{"username": "alice"}))

	_, err := c.UpdatePublicKey(context.Background(), "NEW")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/users/me/public_key", rec.path)
	assert.JSONEq(t, `{"public_key":"NEW"}`, string(rec.body))
}

func TestSend(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c, rec := newTestClient(t, reply(http.StatusOK, map[string]any{
		"id": 1, "sender_username": "alice", "recipient_username": "bob",
		"encrypted_content": "ct", "timestamp": ts,
	}))

	m, err := c.Send(context.Background(), "bob", "ct", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, "alice", m.SenderUsername)
	assert.True(t, ts.Equal(m.Timestamp))
	assert.JSONEq(t, `{"recipient_username":"bob","encrypted_content":"ct"}`, string(rec.body))

	_, err = c.Send(context.Background(), "bob", "ct", "attachments/alice/k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"recipient_username":"bob","encrypted_content":"ct","attachment_key":"attachments/alice/k"}`, string(rec.body))
}

func TestInbox(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusOK, []map[string]any{
		{"id": 1, "sender_username": "alice", "recipient_username": "bob", "encrypted_content": "a"},
		{"id": 2, "sender_username": "carol", "recipient_username": "bob", "encrypted_content": "b"},
	}))

	msgs, err := c.Inbox(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(2), msgs[1].ID)
}

func TestInbox_Empty(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusOK, []any{}))

	msgs, err := c.Inbox(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestAttachments(t *testing.T) {
	c, rec := newTestClient(t, reply(http.StatusOK, map[string]string{"key": "attachments/alice/x", "url": "http://s3/put"}))

	slot, err := c.NewUploadSlot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "attachments/alice/x", slot.Key)
	assert.Equal(t, "/attachments", rec.path)

	c, rec = newTestClient(t, reply(http.StatusOK, map[string]string{"url": "http://s3/get"}))
	u, err := c.AttachmentURL(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "http://s3/get", u)
	assert.Equal(t, "/messages/42/attachment", rec.path)

	c, _ = newTestClient(t, reply(http.StatusNotImplemented, map[string]string{"detail": "Attachments are disabled"}))
	_, err = c.NewUploadSlot(context.Background())
	assert.True(t, errors.Is(err, common.ErrAttachmentsDisabled))
}

func TestAPIError_Mapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusForbidden, common.ErrorForbidden},
		{http.StatusUnprocessableEntity, common.ErrorValidation},
		{http.StatusInternalServerError, common.ErrorInternal},
	}
	for _, tt := range tests {
		err := &APIError{Status: tt.status}
		assert.True(t, errors.Is(err, tt.want), "status %d", tt.status)
	}
	assert.Equal(t, "relay returned 500", (&APIError{Status: 500}).Error())
	assert.Equal(t, "relay returned 422: bad", (&APIError{Status: 422, Detail: "bad"}).Error())
}

func TestNonStringDetail(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusUnprocessableEntity, map[string]any{"detail": []string{"a", "b"}}))

	_, err := c.Me(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, `["a","b"]`, apiErr.Detail)
}

func TestUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := NewHTTPClient(url, nil)
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))
}
