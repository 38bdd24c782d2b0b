package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securechat/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2idPrefix = "$argon2id$"

// PasswordHasher produces bcrypt digests and verifies both bcrypt and legacy
// argon2id (PHC string format) digests. Verify reports when a stored digest
// should be replaced by a fresh Hash.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// Hash returns a salted bcrypt digest of password. Passwords longer than
// 72 bytes are rejected as a validation error.
func (h *PasswordHasher) Hash(password string) (string, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	digest, err := bcrypt.GenerateFromPassword(pw, h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password too long", common.ErrorValidation)
		}
		return "", err
	}
	return string(digest), nil
}

// Verify checks password against digest. needsRehash is only meaningful
// when ok is true.
func (h *PasswordHasher) Verify(password, digest string) (ok bool, needsRehash bool) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	if strings.HasPrefix(digest, argon2idPrefix) {
		return verifyArgon2id(pw, digest), true
	}

	if err := bcrypt.CompareHashAndPassword([]byte(digest), pw); err != nil {
		return false, false
	}
	cost, err := bcrypt.Cost([]byte(digest))
	return true, err == nil && cost < h.cost
}

// verifyArgon2id checks a "$argon2id$v=19$m=...,t=...,p=...$salt$hash" digest.
func verifyArgon2id(password []byte, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil || time == 0 || threads == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	candidate := argon2.IDKey(password, salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(candidate, expected) == 1
}
