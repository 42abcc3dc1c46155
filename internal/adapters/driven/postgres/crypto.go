package postgres

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

const (
	// nonceSize is the AES-GCM nonce size (12 bytes is standard)
	nonceSize = 12

	// keySize is the required key size for AES-256
	keySize = 32
)

// KeySource supplies the hex-encoded symmetric key. It is consulted on
// every call rather than cached, so a key rotated between invocations in a
// serverless environment takes effect immediately.
type KeySource func() string

// SecretBox handles AES-256-GCM encryption/decryption of token strings.
// The emitted token format is "<nonce_hex>:<ciphertext_hex>": the nonce
// travels with the data it protects, so the two can never be desynchronized
// by a partial write the way a separate nonce column could.
type SecretBox struct {
	key KeySource
}

// NewSecretBox creates a secret box over the given key source.
func NewSecretBox(key KeySource) *SecretBox {
	return &SecretBox{key: key}
}

// Configured reports whether the key source currently yields a usable key.
// Side-effect free; other components use it to decide whether to attempt a
// flow at all.
func (b *SecretBox) Configured() bool {
	_, err := b.aead()
	return err == nil
}

// aead resolves and validates the key, failing closed on any length other
// than exactly 32 bytes rather than truncating or padding.
func (b *SecretBox) aead() (cipher.AEAD, error) {
	raw := b.key()
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid hex", domain.ErrEncryptionKeyInvalid)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("%w: got %d bytes", domain.ErrEncryptionKeyInvalid, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt encrypts a plaintext token with a fresh random nonce.
func (b *SecretBox) Encrypt(plaintext string) (string, error) {
	gcm, err := b.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. It fails with domain.ErrDecryptionFailed when
// the token does not split into exactly two non-empty hex components or
// when authentication-tag verification fails (tamper or wrong key).
func (b *SecretBox) Decrypt(token string) (string, error) {
	gcm, err := b.aead()
	if err != nil {
		return "", err
	}

	parts := strings.Split(token, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: malformed token", domain.ErrDecryptionFailed)
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return "", fmt.Errorf("%w: malformed nonce", domain.ErrDecryptionFailed)
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: malformed ciphertext", domain.ErrDecryptionFailed)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	return string(plaintext), nil
}
