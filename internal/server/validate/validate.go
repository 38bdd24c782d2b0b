// Package validate checks client input before it reaches the services.
// Every failure wraps common.ErrorValidation.
package validate

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/mail"

	"github.com/dmitrijs2005/securechat/internal/common"
)

const (
	maxUsernameLen = 64
	maxPasswordLen = 72
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

// Username accepts 1 to 64 ASCII letters, digits, '.', '_' and '-'.
func Username(username string) error {
	if username == "" {
		return invalid("username is required")
	}
	if len(username) > maxUsernameLen {
		return invalid("username longer than %d characters", maxUsernameLen)
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return invalid("username contains invalid character %q", r)
		}
	}
	return nil
}

// Email accepts an empty string or a single bare address.
func Email(email string) error {
	if email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("value is not a valid email address")
	}
	return nil
}

// Password requires a non-empty value that bcrypt can hash in full.
func Password(password string) error {
	if password == "" {
		return invalid("password is required")
	}
	if len(password) > maxPasswordLen {
		return invalid("password longer than %d bytes", maxPasswordLen)
	}
	return nil
}

// PublicKey requires a PEM "PUBLIC KEY" block holding an RSA key.
func PublicKey(publicKey string) error {
	block, _ := pem.Decode([]byte(publicKey))
	if block == nil || block.Type != "PUBLIC KEY" {
		return invalid("public key must be a PEM encoded PUBLIC KEY block")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return invalid("public key cannot be parsed: %v", err)
	}
	if _, ok := key.(*rsa.PublicKey); !ok {
		return invalid("public key must be an RSA key")
	}
	return nil
}

// Registration checks every field of a registration request.
func Registration(username, email, password, publicKey string) error {
	if err := Username(username); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	if err := Password(password); err != nil {
		return err
	}
	return PublicKey(publicKey)
}
