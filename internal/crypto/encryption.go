// Package crypto implements the credential vault's AES-256-GCM envelope
// with a PBKDF2-derived key. The engine only ever calls Encrypt/Decrypt
// through internal/credentials; the encryption scheme itself is otherwise
// opaque to the rest of the engine (spec §1).
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

var (
	ErrInvalidKey        = errors.New("encryption key must be a 64-character hex string (32 bytes)")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

const (
	// KeySize is the AES-256 key size in bytes.
	KeySize = 32
	// pbkdf2Iterations follows current OWASP guidance for PBKDF2-HMAC-SHA256.
	pbkdf2Iterations = 600_000
)

// EncryptionService seals and opens credential values with AES-256-GCM
// using a key derived from the configured ENCRYPTION_KEY via PBKDF2.
type EncryptionService struct {
	key []byte
}

// NewEncryptionService derives a working key from a 64-character hex
// ENCRYPTION_KEY and a fixed-per-install salt. The salt need not be secret;
// it only needs to be stable for a given deployment so the same
// ENCRYPTION_KEY always re-derives the same key.
func NewEncryptionService(hexKey string, salt []byte) (*EncryptionService, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil || len(raw) != KeySize {
		return nil, ErrInvalidKey
	}
	if len(salt) == 0 {
		sum := sha256.Sum256(raw)
		salt = sum[:16]
	}
	derived := pbkdf2.Key(raw, salt, pbkdf2Iterations, KeySize, sha256.New)
	return &EncryptionService{key: derived}, nil
}

// GenerateKeyHex returns a new random 64-character hex key suitable for
// ENCRYPTION_KEY.
func GenerateKeyHex() (string, error) {
	raw := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// EncryptString seals plaintext, returning base64(nonce || ciphertext || tag).
func (s *EncryptionService) EncryptString(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString opens a value produced by EncryptString.
func (s *EncryptionService) DecryptString(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}
	if len(raw) < gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}

// DecryptMap decrypts every value of an encrypted string map.
func (s *EncryptionService) DecryptMap(data map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(data))
	for k, v := range data {
		plain, err := s.DecryptString(v)
		if err != nil {
			return nil, fmt.Errorf("decrypt key %q: %w", k, err)
		}
		out[k] = plain
	}
	return out, nil
}

// EncryptMap encrypts every value of a plaintext string map.
func (s *EncryptionService) EncryptMap(data map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(data))
	for k, v := range data {
		enc, err := s.EncryptString(v)
		if err != nil {
			return nil, fmt.Errorf("encrypt key %q: %w", k, err)
		}
		out[k] = enc
	}
	return out, nil
}
