// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// timeFunc is a test seam for the clock used when issuing and checking tokens.
var timeFunc = time.Now

// signingMethod is the only algorithm tokens are signed and accepted with.
var signingMethod = jwt.SigningMethodHS256

// JWTManager signs and verifies access tokens with a single HMAC secret.
// Rotating the secret invalidates every outstanding token.
type JWTManager struct {
	secretKey []byte
}

func NewJWTManager(secretKey []byte) (*JWTManager, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("empty signing secret")
	}
	return &JWTManager{secretKey: secretKey}, nil
}

// GenerateToken returns a token for subject that expires validity from now.
func (m *JWTManager) GenerateToken(subject string, validity time.Duration) (string, error) {
	now := timeFunc()
	token := jwt.NewWithClaims(signingMethod, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
	})

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies tokenString and returns its subject.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// verification, including a foreign algorithm, yields common.ErrInvalidToken.
func (m *JWTManager) GetSubjectFromToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return m.secretKey, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(timeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
