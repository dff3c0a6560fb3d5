package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chumyin/zeroclaw/internal/paths"
	"github.com/chumyin/zeroclaw/internal/sandbox"
)

// PendingOAuthLogin is the in-memory form of a login in progress, shared
// across providers.
type PendingOAuthLogin struct {
	Provider     string
	Profile      string
	CodeVerifier string
	State        string
	CreatedAt    time.Time
}

// pendingOAuthLoginFile is the on-disk form: the code verifier is always
// encrypted on save, but a legacy plaintext field is still accepted on
// load.
type pendingOAuthLoginFile struct {
	Provider              string `json:"provider,omitempty"`
	Profile               string `json:"profile"`
	CodeVerifier          string `json:"code_verifier,omitempty"`
	EncryptedCodeVerifier string `json:"encrypted_code_verifier,omitempty"`
	State                 string `json:"state"`
	CreatedAt             string `json:"created_at"`
}

// PendingOAuthLoginPath returns auth/auth-<provider>-pending.json under the
// config directory.
func PendingOAuthLoginPath(provider string) (string, error) {
	return paths.PendingOAuthPath(provider)
}

// SavePendingOAuthLogin encrypts pending.CodeVerifier via store and writes
// the result through the same atomic-write helper every other persistence
// site in this module uses: sibling temp file, fsync, rename, chmod 0600.
func SavePendingOAuthLogin(store *Store, pending PendingOAuthLogin) error {
	path, err := PendingOAuthLoginPath(pending.Provider)
	if err != nil {
		return fmt.Errorf("resolve pending oauth path: %w", err)
	}

	encrypted, err := store.Encrypt(pending.CodeVerifier)
	if err != nil {
		return fmt.Errorf("encrypt code verifier: %w", err)
	}

	persisted := pendingOAuthLoginFile{
		Provider:              pending.Provider,
		Profile:               pending.Profile,
		EncryptedCodeVerifier: encrypted,
		State:                 pending.State,
		CreatedAt:             pending.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pending oauth login: %w", err)
	}

	if err := sandbox.AtomicWriteFile(path, payload, 0600); err != nil {
		return fmt.Errorf("persist pending oauth login: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("chmod pending oauth login: %w", err)
	}
	return nil
}

// LoadPendingOAuthLogin reads and decrypts the pending login for provider.
// A missing or empty file is not an error: it returns (nil, nil).
func LoadPendingOAuthLogin(store *Store, provider string) (*PendingOAuthLogin, error) {
	path, err := PendingOAuthLoginPath(provider)
	if err != nil {
		return nil, fmt.Errorf("resolve pending oauth path: %w", err)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pending oauth login %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var persisted pendingOAuthLoginFile
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, fmt.Errorf("parse pending oauth login %s: %w", path, err)
	}

	var codeVerifier string
	switch {
	case persisted.EncryptedCodeVerifier != "":
		codeVerifier, err = store.Decrypt(persisted.EncryptedCodeVerifier)
		if err != nil {
			return nil, fmt.Errorf("decrypt code verifier: %w", err)
		}
	case persisted.CodeVerifier != "":
		codeVerifier = persisted.CodeVerifier
	default:
		return nil, fmt.Errorf("pending %s login is missing code verifier", provider)
	}

	providerName := persisted.Provider
	if providerName == "" {
		providerName = provider
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, persisted.CreatedAt)

	return &PendingOAuthLogin{
		Provider:     providerName,
		Profile:      persisted.Profile,
		CodeVerifier: codeVerifier,
		State:        persisted.State,
		CreatedAt:    createdAt,
	}, nil
}

// ClearPendingOAuthLogin truncates then unlinks the pending login file for
// provider. Both steps are best-effort: a login that was never started
// leaves nothing to clear.
func ClearPendingOAuthLogin(provider string) {
	path, err := PendingOAuthLoginPath(provider)
	if err != nil {
		return
	}
	if f, err := os.OpenFile(path, os.O_WRONLY, 0600); err == nil {
		_ = f.Truncate(0)
		_ = f.Sync()
		_ = f.Close()
	}
	_ = os.Remove(path)
}
