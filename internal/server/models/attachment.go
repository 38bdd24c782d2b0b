package models

import "time"

// UploadSlot instructs the client where to PUT an encrypted attachment.
type UploadSlot struct {
	// Key is the object-storage key to reference when sending the message.
	Key string `json:"key"`
	// URL is a presigned HTTP URL accepting a single PUT of the ciphertext.
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
