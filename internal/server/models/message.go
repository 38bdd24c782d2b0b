package models

import "time"

// Message is a stored ciphertext envelope. It is immutable once created.
type Message struct {
	ID                int64     `json:"id"`
	SenderUsername    string    `json:"sender_username"`
	RecipientUsername string    `json:"recipient_username"`
	EncryptedContent  string    `json:"encrypted_content"`
	AttachmentKey     string    `json:"attachment_key,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}
