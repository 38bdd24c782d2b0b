package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

func newHasher(t *testing.T, cost int) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(cost)
	require.NoError(t, err)
	return h
}

func legacyArgon2id(password string, salt []byte) string {
	key := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, 64*1024, 1, 4,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func TestNewPasswordHasher_CostRange(t *testing.T) {
	_, err := NewPasswordHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)
	_, err = NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestHashAndVerify(t *testing.T) {
	h := newHasher(t, bcrypt.MinCost)

	digest, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotContains(t, digest, "correct horse")

	ok, rehash := h.Verify("correct horse", digest)
	assert.True(t, ok)
	assert.False(t, rehash)

	ok, _ = h.Verify("wrong horse", digest)
	assert.False(t, ok)
}

func TestHash_IsSalted(t *testing.T) {
	h := newHasher(t, bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHash_TooLong(t *testing.T) {
	h := newHasher(t, bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestVerify_LowerCostNeedsRehash(t *testing.T) {
	old := newHasher(t, bcrypt.MinCost)
	digest, err := old.Hash("pw")
	require.NoError(t, err)

	current := newHasher(t, bcrypt.MinCost+1)
	ok, rehash := current.Verify("pw", digest)
	assert.True(t, ok)
	assert.True(t, rehash)
}

func TestVerify_LegacyArgon2id(t *testing.T) {
	h := newHasher(t, bcrypt.MinCost)
	digest := legacyArgon2id("legacy-pw", []byte("0123456789abcdef"))

	ok, rehash := h.Verify("legacy-pw", digest)
	assert.True(t, ok)
	assert.True(t, rehash)

	ok, _ = h.Verify("other", digest)
	assert.False(t, ok)
}

func TestVerify_MalformedDigests(t *testing.T) {
	h := newHasher(t, bcrypt.MinCost)

	for _, digest := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$onlysalt",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=0,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	} {
		ok, _ := h.Verify("pw", digest)
		assert.False(t, ok, digest)
	}
}
