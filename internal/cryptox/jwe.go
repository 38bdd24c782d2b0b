package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securechat/internal/common"
)

const (
	algRSAOAEP256 = "RSA-OAEP-256"
	encA256GCM    = "A256GCM"

	cekSize   = 32
	nonceSize = 12
	tagSize   = 16
)

var (
	ErrMalformedJWE         = errors.New("malformed JWE")
	ErrUnsupportedAlgorithm = errors.New("unsupported JWE algorithm")
	ErrDecryptionFailed     = errors.New("decryption failed")
)

type jweHeader struct {
	Alg string `json:"alg"`
	Enc string `json:"enc"`
}

var b64 = base64.RawURLEncoding

// Encrypt seals plaintext for the holder of pub and returns the compact
// serialization "header.encryptedKey.iv.ciphertext.tag".
func Encrypt(pub *rsa.PublicKey, plaintext []byte) (string, error) {
	header, err := json.Marshal(jweHeader{Alg: algRSAOAEP256, Enc: encA256GCM})
	if err != nil {
		return "", err
	}
	protected := b64.EncodeToString(header)

	cek := common.GenerateRandByteArray(cekSize)
	defer common.WipeByteArray(cek)

	encryptedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, cek, nil)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(cek)
	if err != nil {
		return "", err
	}

	iv := common.GenerateRandByteArray(nonceSize)
	sealed := gcm.Seal(nil, iv, plaintext, []byte(protected))
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return strings.Join([]string{
		protected,
		b64.EncodeToString(encryptedKey),
		b64.EncodeToString(iv),
		b64.EncodeToString(ciphertext),
		b64.EncodeToString(tag),
	}, "."), nil
}

// Decrypt opens a compact JWE produced by Encrypt or by the web client.
func Decrypt(priv *rsa.PrivateKey, token string) ([]byte, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: expected 5 parts, got %d", ErrMalformedJWE, len(parts))
	}

	raw := make([][]byte, 5)
	for i, p := range parts {
		b, err := b64.DecodeString(p)
		if err != nil {
			return nil, fmt.Errorf("%w: part %d: %v", ErrMalformedJWE, i, err)
		}
		raw[i] = b
	}

	var header jweHeader
	if err := json.Unmarshal(raw[0], &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedJWE, err)
	}
	if header.Alg != algRSAOAEP256 || header.Enc != encA256GCM {
		return nil, fmt.Errorf("%w: alg=%q enc=%q", ErrUnsupportedAlgorithm, header.Alg, header.Enc)
	}
	if len(raw[2]) != nonceSize || len(raw[4]) != tagSize {
		return nil, fmt.Errorf("%w: bad iv or tag length", ErrMalformedJWE)
	}

	cek, err := rsa.DecryptOAEP(sha256.New(), nil, priv, raw[1], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	defer common.WipeByteArray(cek)
	if len(cek) != cekSize {
		return nil, ErrDecryptionFailed
	}

	gcm, err := newGCM(cek)
	if err != nil {
		return nil, err
	}

	sealed := append(append([]byte{}, raw[3]...), raw[4]...)
	plaintext, err := gcm.Open(nil, raw[2], sealed, []byte(parts[0]))
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
