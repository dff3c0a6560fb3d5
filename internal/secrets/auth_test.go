package secrets

import (
	"testing"
	"time"
)

func TestStoreProviderTokenSetsActiveProfile(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	store := New(t.TempDir(), true)
	auth, err := NewAuthService(store)
	if err != nil {
		t.Fatal(err)
	}

	if err := auth.StoreProviderToken("anthropic", "default", "sk-ant-token", map[string]string{"auth_kind": "authorization"}, true); err != nil {
		t.Fatal(err)
	}

	profile, ok := auth.ActiveProfile("anthropic")
	if !ok {
		t.Fatal("expected active profile to be set")
	}
	if profile.Token != "sk-ant-token" {
		t.Errorf("got token %q", profile.Token)
	}
	if profile.Kind != AuthKindToken {
		t.Errorf("got kind %q", profile.Kind)
	}
}

func TestAuthServicePersistsAcrossReload(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	store := New(t.TempDir(), true)

	auth, err := NewAuthService(store)
	if err != nil {
		t.Fatal(err)
	}

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	if err := auth.StoreOpenAITokens("work", TokenSet{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    &expires,
	}, "acct-123", true); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewAuthService(store)
	if err != nil {
		t.Fatal(err)
	}
	profile, ok := reloaded.ActiveProfile("openai-codex")
	if !ok {
		t.Fatal("expected active profile to survive reload")
	}
	if profile.TokenSet == nil || profile.TokenSet.AccessToken != "access-1" {
		t.Fatalf("got %+v", profile.TokenSet)
	}
	if profile.TokenSet.RefreshToken != "refresh-1" {
		t.Errorf("got refresh token %q", profile.TokenSet.RefreshToken)
	}
	if profile.AccountID != "acct-123" {
		t.Errorf("got account id %q", profile.AccountID)
	}
}

func TestStoreGeminiTokensDoesNotOverwriteOtherProviderActive(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	store := New(t.TempDir(), true)
	auth, err := NewAuthService(store)
	if err != nil {
		t.Fatal(err)
	}

	if err := auth.StoreOpenAITokens("default", TokenSet{AccessToken: "openai-access"}, "", true); err != nil {
		t.Fatal(err)
	}
	if err := auth.StoreGeminiTokens("default", TokenSet{AccessToken: "gemini-access"}, "", true); err != nil {
		t.Fatal(err)
	}

	openaiProfile, ok := auth.ActiveProfile("openai-codex")
	if !ok || openaiProfile.TokenSet.AccessToken != "openai-access" {
		t.Errorf("expected openai-codex active profile to survive, got %+v ok=%v", openaiProfile, ok)
	}
	geminiProfile, ok := auth.ActiveProfile("gemini")
	if !ok || geminiProfile.TokenSet.AccessToken != "gemini-access" {
		t.Errorf("expected gemini active profile, got %+v ok=%v", geminiProfile, ok)
	}
}

func TestSetActiveProfileRequiresExistingProfile(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	store := New(t.TempDir(), true)
	auth, err := NewAuthService(store)
	if err != nil {
		t.Fatal(err)
	}

	if err := auth.SetActiveProfile("anthropic", "missing"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestSetActiveProfileSwitchesWithoutMutatingCredentials(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	store := New(t.TempDir(), true)
	auth, err := NewAuthService(store)
	if err != nil {
		t.Fatal(err)
	}

	if err := auth.StoreProviderToken("anthropic", "default", "token-a", nil, true); err != nil {
		t.Fatal(err)
	}
	if err := auth.StoreProviderToken("anthropic", "work", "token-b", nil, false); err != nil {
		t.Fatal(err)
	}

	if err := auth.SetActiveProfile("anthropic", "work"); err != nil {
		t.Fatal(err)
	}
	profile, ok := auth.ActiveProfile("anthropic")
	if !ok || profile.Token != "token-b" {
		t.Errorf("got %+v ok=%v", profile, ok)
	}
}

func TestFormatExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	noExpiry := AuthProfile{Kind: AuthKindToken}
	if got := FormatExpiry(noExpiry, now); got != "n/a" {
		t.Errorf("got %q, want n/a", got)
	}

	expired := now.Add(-time.Minute)
	expiredProfile := AuthProfile{Kind: AuthKindOAuth, TokenSet: &TokenSet{ExpiresAt: &expired}}
	if got := FormatExpiry(expiredProfile, now); got == "n/a" {
		t.Error("expected non-n/a for expired profile")
	}

	future := now.Add(45 * time.Minute)
	activeProfile := AuthProfile{Kind: AuthKindOAuth, TokenSet: &TokenSet{ExpiresAt: &future}}
	got := FormatExpiry(activeProfile, now)
	if got == "n/a" {
		t.Error("expected non-n/a for active profile")
	}
}

func TestNormalizeProvider(t *testing.T) {
	cases := map[string]string{
		"openai-codex": "openai-codex",
		"openai":       "openai-codex",
		"gemini":       "gemini",
		"anthropic":    "anthropic",
		"claude":       "anthropic",
	}
	for input, want := range cases {
		got, err := NormalizeProvider(input)
		if err != nil {
			t.Fatalf("NormalizeProvider(%q): %v", input, err)
		}
		if got != want {
			t.Errorf("NormalizeProvider(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := NormalizeProvider("unknown-provider"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestListProfiles(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	store := New(t.TempDir(), true)
	auth, err := NewAuthService(store)
	if err != nil {
		t.Fatal(err)
	}

	if err := auth.StoreProviderToken("anthropic", "default", "token", nil, true); err != nil {
		t.Fatal(err)
	}
	if err := auth.StoreOpenAITokens("default", TokenSet{AccessToken: "a"}, "", true); err != nil {
		t.Fatal(err)
	}

	profiles := auth.ListProfiles()
	if len(profiles) != 2 {
		t.Errorf("got %d profiles, want 2", len(profiles))
	}
}
