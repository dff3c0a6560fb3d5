// Package secrets implements the secret store (AEAD-wrapped secret
// material), the pending-OAuth-login workflow, and per-provider auth
// profile persistence.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"

	. "github.com/chumyin/zeroclaw/internal/logging"
	"github.com/chumyin/zeroclaw/internal/paths"
	"github.com/chumyin/zeroclaw/internal/sandbox"
)

const keyFileName = "key"

// Store wraps plaintext secrets with an authenticated symmetric primitive.
// When encryption is disabled, Encrypt/Decrypt round-trip values unchanged
// (test fixtures only, never production config).
type Store struct {
	dir     string
	enabled bool
	key     []byte // nil when enabled is false
}

// New builds a Store rooted at dir. The wrapping key is not read or
// generated until the first Encrypt/Decrypt call.
func New(dir string, encryptEnabled bool) *Store {
	return &Store{dir: dir, enabled: encryptEnabled}
}

// NewDefault builds a Store rooted at the config directory's secrets/
// subdirectory (where secrets/key is listed in the persisted state layout).
func NewDefault(encryptEnabled bool) (*Store, error) {
	keyPath, err := paths.SecretKeyPath()
	if err != nil {
		return nil, fmt.Errorf("resolve secret key path: %w", err)
	}
	return New(filepath.Dir(keyPath), encryptEnabled), nil
}

func (s *Store) keyPath() string {
	return filepath.Join(s.dir, keyFileName)
}

// loadOrCreateKey reads the wrapping key, generating and persisting a new
// one at 0600 on first use.
func (s *Store) loadOrCreateKey() ([]byte, error) {
	if s.key != nil {
		return s.key, nil
	}

	data, err := os.ReadFile(s.keyPath())
	if err == nil {
		key, decodeErr := base64.StdEncoding.DecodeString(string(data))
		if decodeErr != nil || len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("secret key at %s is corrupt", s.keyPath())
		}
		s.key = key
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read secret key: %w", err)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate secret key: %w", err)
	}
	encoded := []byte(base64.StdEncoding.EncodeToString(key))
	if err := sandbox.AtomicWriteFile(s.keyPath(), encoded, 0600); err != nil {
		return nil, fmt.Errorf("persist secret key: %w", err)
	}
	L_info("secrets: generated new wrapping key", "path", s.keyPath())
	s.key = key
	return key, nil
}

// Encrypt returns an opaque base64 ciphertext. Ciphertexts for the same
// plaintext differ across calls: each call draws a fresh random nonce.
func (s *Store) Encrypt(plaintext string) (string, error) {
	if !s.enabled {
		return plaintext, nil
	}
	key, err := s.loadOrCreateKey()
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt is the inverse of Encrypt.
func (s *Store) Decrypt(ciphertext string) (string, error) {
	if !s.enabled {
		return ciphertext, nil
	}
	key, err := s.loadOrCreateKey()
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}

// Redact masks all but the trailing visibleSuffix characters of a secret,
// for safe inclusion in logs.
func Redact(secret string, visibleSuffix int) string {
	if len(secret) <= visibleSuffix {
		return "****"
	}
	return "****" + secret[len(secret)-visibleSuffix:]
}
