package secrets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSavePendingOAuthLoginRoundTrip(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	store := New(t.TempDir(), true)

	pending := PendingOAuthLogin{
		Provider:     "openai",
		Profile:      "default",
		CodeVerifier: "verifier-value-xyz",
		State:        "state-abc",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := SavePendingOAuthLogin(store, pending); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadPendingOAuthLogin(store, "openai")
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("expected pending login to be found")
	}
	if loaded.CodeVerifier != pending.CodeVerifier {
		t.Errorf("got code verifier %q, want %q", loaded.CodeVerifier, pending.CodeVerifier)
	}
	if loaded.State != pending.State {
		t.Errorf("got state %q, want %q", loaded.State, pending.State)
	}
	if !loaded.CreatedAt.Equal(pending.CreatedAt) {
		t.Errorf("got created_at %v, want %v", loaded.CreatedAt, pending.CreatedAt)
	}

	path, err := PendingOAuthLoginPath("openai")
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 perm, got %v", info.Mode().Perm())
	}
}

func TestLoadPendingOAuthLoginMissingReturnsNil(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	store := New(t.TempDir(), true)

	loaded, err := LoadPendingOAuthLogin(store, "gemini")
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Errorf("expected nil for missing pending login, got %+v", loaded)
	}
}

func TestSaveAlwaysReencryptsLegacyPlaintext(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	store := New(t.TempDir(), true)

	path, err := PendingOAuthLoginPath("gemini")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}

	legacy := pendingOAuthLoginFile{
		Provider:     "gemini",
		Profile:      "default",
		CodeVerifier: "legacy-plaintext-verifier",
		State:        "legacy-state",
		CreatedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.MarshalIndent(legacy, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadPendingOAuthLogin(store, "gemini")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.CodeVerifier != "legacy-plaintext-verifier" {
		t.Fatalf("got %q", loaded.CodeVerifier)
	}

	if err := SavePendingOAuthLogin(store, *loaded); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "legacy-plaintext-verifier") {
		t.Error("expected re-saved file to no longer contain the plaintext verifier")
	}

	reloaded, err := LoadPendingOAuthLogin(store, "gemini")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.CodeVerifier != "legacy-plaintext-verifier" {
		t.Errorf("got %q", reloaded.CodeVerifier)
	}
}

func TestClearPendingOAuthLogin(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	store := New(t.TempDir(), true)

	pending := PendingOAuthLogin{Provider: "openai", Profile: "default", CodeVerifier: "v", State: "s", CreatedAt: time.Now()}
	if err := SavePendingOAuthLogin(store, pending); err != nil {
		t.Fatal(err)
	}

	ClearPendingOAuthLogin("openai")

	path, err := PendingOAuthLoginPath("openai")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat err = %v", err)
	}
}

