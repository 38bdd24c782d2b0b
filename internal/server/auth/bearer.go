package auth

import (
	"strings"

	"github.com/dmitrijs2005/securechat/internal/common"
)

// ParseBearer extracts the token from an Authorization header value of the
// form "Bearer <token>". The scheme is matched case-insensitively.
func ParseBearer(header string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", common.ErrMissingCredentials
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrMissingCredentials
	}
	return token, nil
}
