package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/securechat/internal/client/models"
	"github.com/dmitrijs2005/securechat/internal/common"
)

// HTTPClient implements Client against the relay's JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, httpClient *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http or https, got %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}, nil
}

// HTTP exposes the underlying client so attachment transfers share its
// timeout settings.
func (c *HTTPClient) HTTP() *http.Client {
	return c.http
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", common.BearerScheme+" "+token)
	}
	return req, nil
}

// do sends req and decodes a 200 answer into out (when non-nil).
func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Detail any `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			if s, ok := body.Detail.(string); ok {
				apiErr.Detail = s
			} else if body.Detail != nil {
				b, _ := json.Marshal(body.Detail)
				apiErr.Detail = string(b)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password, publicKey string) (*models.Profile, error) {
	in := map[string]string{
		"username":   username,
		"email":      email,
		"password":   password,
		"public_key": publicKey,
	}
	var p models.Profile
	if err := c.doJSON(ctx, http.MethodPost, "/register", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Login posts the password form and returns the issued token. The token is
// not installed automatically.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.Token, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := c.newRequest(ctx, http.MethodPost, "/token", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}

	var t models.Token
	if err := c.do(req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetPublicKey(ctx context.Context, username string) (string, error) {
	var key string
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/public_key", nil, &key); err != nil {
		return "", err
	}
	return key, nil
}

func (c *HTTPClient) UpdatePublicKey(ctx context.Context, publicKey string) (*models.Profile, error) {
	var p models.Profile
	in := map[string]string{"public_key": publicKey}
	if err := c.doJSON(ctx, http.MethodPut, "/users/me/public_key", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Send(ctx context.Context, recipient, encryptedContent, attachmentKey string) (*models.Envelope, error) {
	in := map[string]string{
		"recipient_username": recipient,
		"encrypted_content":  encryptedContent,
	}
	if attachmentKey != "" {
		in["attachment_key"] = attachmentKey
	}
	var m models.Envelope
	if err := c.doJSON(ctx, http.MethodPost, "/messages", in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *HTTPClient) Inbox(ctx context.Context) ([]models.Envelope, error) {
	msgs := []models.Envelope{}
	if err := c.doJSON(ctx, http.MethodGet, "/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *HTTPClient) NewUploadSlot(ctx context.Context) (*models.UploadSlot, error) {
	var s models.UploadSlot
	if err := c.doJSON(ctx, http.MethodPost, "/attachments", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) AttachmentURL(ctx context.Context, messageID int64) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := "/messages/" + strconv.FormatInt(messageID, 10) + "/attachment"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
