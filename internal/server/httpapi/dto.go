package httpapi

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	PublicKey string `json:"public_key"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type publicKeyRequest struct {
	PublicKey string `json:"public_key"`
}

// sendRequest ignores any client-supplied sender.
type sendRequest struct {
	RecipientUsername string `json:"recipient_username"`
	EncryptedContent  string `json:"encrypted_content"`
	AttachmentKey     string `json:"attachment_key"`
}

type attachmentURLResponse struct {
	URL string `json:"url"`
}

type rootResponse struct {
	Message string `json:"message"`
}

