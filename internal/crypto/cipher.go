package crypto

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// ErrInvalidKey is returned when the configured encryption key is missing or
// is not a URL-safe base64-encoded 32-byte key.
var ErrInvalidKey = errors.New("invalid_encryption_key")

// ErrDecryptFailed is returned when a ciphertext is malformed, has been
// tampered with, or was produced under a different key. Callers can rely on
// this being the only error Decrypt returns for bad ciphertext: a failed
// decryption never yields garbage plaintext.
var ErrDecryptFailed = errors.New("decryption_failed")

// TokenCipher encrypts and decrypts credential fields under a single
// process-wide fernet key. The zero value is not usable; construct it with
// NewTokenCipher.
type TokenCipher struct {
	key *fernet.Key
}

// NewTokenCipher parses and validates the configured key. The key is checked
// once here so that a bad ENCRYPTION_KEY fails at startup rather than on the
// first login.
func NewTokenCipher(encodedKey string) (*TokenCipher, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("%w: ENCRYPTION_KEY is not set", ErrInvalidKey)
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &TokenCipher{key: key}, nil
}

// Encrypt returns the fernet ciphertext of plaintext. An empty plaintext is
// represented as a nil ciphertext; empty values are never encrypted.
func (c *TokenCipher) Encrypt(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return nil, nil
	}
	ciphertext, err := fernet.EncryptAndSign([]byte(plaintext), c.key)
	if err != nil {
		return nil, fmt.Errorf("encrypting field: %w", err)
	}
	return ciphertext, nil
}

// Decrypt reverses Encrypt. A nil/empty ciphertext decrypts to the empty
// string. Any ciphertext that does not verify under the current key fails
// with ErrDecryptFailed.
func (c *TokenCipher) Decrypt(ciphertext []byte) (string, error) {
	if len(ciphertext) == 0 {
		return "", nil
	}
	plaintext := fernet.VerifyAndDecrypt(ciphertext, 0, []*fernet.Key{c.key})
	if plaintext == nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}

// GenerateKey returns a fresh encoded fernet key, suitable for ENCRYPTION_KEY.
func GenerateKey() (string, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return "", err
	}
	return key.Encode(), nil
}
