// Package models defines the client-side view of relay resources.
package models

import "time"

type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Envelope is a message as stored by the relay. EncryptedContent is opaque
// to everyone except the recipient.
type Envelope struct {
	ID                int64     `json:"id"`
	SenderUsername    string    `json:"sender_username"`
	RecipientUsername string    `json:"recipient_username"`
	EncryptedContent  string    `json:"encrypted_content"`
	AttachmentKey     string    `json:"attachment_key,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

type UploadSlot struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Message is a decrypted inbox entry. Err is set when the envelope could not
// be opened with the local private key; Text is empty in that case.
type Message struct {
	ID            int64
	From          string
	Text          string
	HasAttachment bool
	Timestamp     time.Time
	Err           error
}
