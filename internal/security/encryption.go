package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"

	"github.com/brokerdesk/brokerdesk/internal/config"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
)

// EncryptionService protects broker credentials at rest. Values are
// AES-256-GCM sealed and base64 encoded for storage.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type aesEncryptionService struct {
	aead cipher.AEAD
}

// NewEncryptionService builds the AES-GCM service from the configured
// hex-encoded 32-byte key.
func NewEncryptionService(cfg *config.Configuration) (EncryptionService, error) {
	key, err := hex.DecodeString(cfg.Encryption.Key)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Encryption key must be hex encoded").
			Mark(ierr.ErrSystem)
	}
	if len(key) != 32 {
		return nil, ierr.NewError("encryption key must be 32 bytes").
			WithHint("Encryption key must be 32 bytes (64 hex characters)").
			Mark(ierr.ErrSystem)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to initialize cipher").
			Mark(ierr.ErrSystem)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to initialize cipher").
			Mark(ierr.ErrSystem)
	}

	return &aesEncryptionService{aead: aead}, nil
}

func (s *aesEncryptionService) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to encrypt value").
			Mark(ierr.ErrSystem)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *aesEncryptionService) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to decrypt value").
			Mark(ierr.ErrSystem)
	}
	if len(raw) < s.aead.NonceSize() {
		return "", ierr.NewError("ciphertext too short").
			WithHint("Failed to decrypt value").
			Mark(ierr.ErrSystem)
	}

	nonce, sealed := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to decrypt value").
			Mark(ierr.ErrSystem)
	}
	return string(plaintext), nil
}
