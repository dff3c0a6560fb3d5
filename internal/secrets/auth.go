package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chumyin/zeroclaw/internal/paths"
	"github.com/chumyin/zeroclaw/internal/sandbox"
)

// TokenRefresher mints a fresh TokenSet from a stored refresh token.
// Production wires the OAuth provider's token endpoint (internal/oauth);
// tests inject a stub rather than calling the provider directly.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, provider string, existing TokenSet) (TokenSet, error)
}

// AuthKind distinguishes a profile backed by a refreshable OAuth token set
// from one backed by a static pasted token.
type AuthKind string

const (
	AuthKindOAuth AuthKind = "oauth"
	AuthKindToken AuthKind = "token"
)

// TokenSet is the OAuth half of an AuthProfile. RefreshToken and ExpiresAt
// are absent for flows that never issue them.
type TokenSet struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IDToken      string     `json:"id_token,omitempty"`
}

// Expired reports whether the token set's expiry, if any, has passed.
func (t TokenSet) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

// AuthProfile is one persisted credential: either an OAuth token set or a
// pasted static token, scoped to a provider and a profile name.
type AuthProfile struct {
	Provider    string            `json:"provider"`
	ProfileName string            `json:"profile_name"`
	Kind        AuthKind          `json:"kind"`
	TokenSet    *TokenSet         `json:"token_set,omitempty"`
	Token       string            `json:"-"` // plaintext token, never marshaled directly
	AccountID   string            `json:"account_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// profileKey identifies a stored profile by provider and name.
type profileKey struct {
	provider string
	profile  string
}

// storedProfile is the on-disk form of an AuthProfile: token material is
// always encrypted before it reaches disk.
type storedProfile struct {
	Provider       string            `json:"provider"`
	ProfileName    string            `json:"profile_name"`
	Kind           AuthKind          `json:"kind"`
	EncryptedToken string            `json:"encrypted_token,omitempty"`
	AccessToken    string            `json:"access_token,omitempty"`
	RefreshToken   string            `json:"refresh_token,omitempty"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	IDToken        string            `json:"id_token,omitempty"`
	AccountID      string            `json:"account_id,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// authFile is the on-disk auth/auth.json document: every saved profile plus
// the active profile selected per provider.
type authFile struct {
	SchemaVersion int               `json:"schema_version"`
	Profiles      []storedProfile   `json:"profiles"`
	ActiveProfile map[string]string `json:"active_profile"`
}

const authFileSchemaVersion = 1

// AuthService persists AuthProfiles and tracks the active profile per
// provider, so that "give me a valid access token for provider X" resolves
// deterministically without scanning every saved profile.
type AuthService struct {
	store *Store

	mu       sync.Mutex
	profiles map[profileKey]AuthProfile
	active   map[string]string // provider -> profile name
}

// NewAuthService builds an AuthService backed by store, loading any
// previously persisted profiles.
func NewAuthService(store *Store) (*AuthService, error) {
	service := &AuthService{
		store:    store,
		profiles: make(map[profileKey]AuthProfile),
		active:   make(map[string]string),
	}
	if err := service.load(); err != nil {
		return nil, err
	}
	return service, nil
}

func authFilePath() (string, error) {
	return paths.AuthProfilesPath()
}

func (a *AuthService) load() error {
	path, err := authFilePath()
	if err != nil {
		return fmt.Errorf("resolve auth profiles path: %w", err)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read auth profiles: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var doc authFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse auth profiles: %w", err)
	}

	for _, stored := range doc.Profiles {
		profile, err := a.decodeStoredProfile(stored)
		if err != nil {
			return err
		}
		a.profiles[profileKey{provider: profile.Provider, profile: profile.ProfileName}] = profile
	}
	for provider, name := range doc.ActiveProfile {
		a.active[provider] = name
	}
	return nil
}

func (a *AuthService) decodeStoredProfile(stored storedProfile) (AuthProfile, error) {
	profile := AuthProfile{
		Provider:    stored.Provider,
		ProfileName: stored.ProfileName,
		Kind:        stored.Kind,
		AccountID:   stored.AccountID,
		Metadata:    stored.Metadata,
	}

	switch stored.Kind {
	case AuthKindToken:
		token, err := a.store.Decrypt(stored.EncryptedToken)
		if err != nil {
			return AuthProfile{}, fmt.Errorf("decrypt token for %s/%s: %w", stored.Provider, stored.ProfileName, err)
		}
		profile.Token = token
	default:
		accessToken, err := a.store.Decrypt(stored.AccessToken)
		if err != nil {
			return AuthProfile{}, fmt.Errorf("decrypt access token for %s/%s: %w", stored.Provider, stored.ProfileName, err)
		}
		refreshToken := stored.RefreshToken
		if refreshToken != "" {
			refreshToken, err = a.store.Decrypt(refreshToken)
			if err != nil {
				return AuthProfile{}, fmt.Errorf("decrypt refresh token for %s/%s: %w", stored.Provider, stored.ProfileName, err)
			}
		}
		profile.TokenSet = &TokenSet{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    stored.ExpiresAt,
			IDToken:      stored.IDToken,
		}
	}
	return profile, nil
}

func (a *AuthService) encodeStoredProfile(profile AuthProfile) (storedProfile, error) {
	stored := storedProfile{
		Provider:    profile.Provider,
		ProfileName: profile.ProfileName,
		Kind:        profile.Kind,
		AccountID:   profile.AccountID,
		Metadata:    profile.Metadata,
	}

	switch profile.Kind {
	case AuthKindToken:
		encrypted, err := a.store.Encrypt(profile.Token)
		if err != nil {
			return storedProfile{}, fmt.Errorf("encrypt token: %w", err)
		}
		stored.EncryptedToken = encrypted
	default:
		if profile.TokenSet == nil {
			return storedProfile{}, fmt.Errorf("oauth profile %s/%s is missing a token set", profile.Provider, profile.ProfileName)
		}
		accessToken, err := a.store.Encrypt(profile.TokenSet.AccessToken)
		if err != nil {
			return storedProfile{}, fmt.Errorf("encrypt access token: %w", err)
		}
		stored.AccessToken = accessToken
		if profile.TokenSet.RefreshToken != "" {
			refreshToken, err := a.store.Encrypt(profile.TokenSet.RefreshToken)
			if err != nil {
				return storedProfile{}, fmt.Errorf("encrypt refresh token: %w", err)
			}
			stored.RefreshToken = refreshToken
		}
		stored.ExpiresAt = profile.TokenSet.ExpiresAt
		stored.IDToken = profile.TokenSet.IDToken
	}
	return stored, nil
}

// persist rewrites auth/auth.json from the in-memory profile and
// active-profile maps. Callers hold a.mu.
func (a *AuthService) persist() error {
	path, err := authFilePath()
	if err != nil {
		return fmt.Errorf("resolve auth profiles path: %w", err)
	}

	doc := authFile{
		SchemaVersion: authFileSchemaVersion,
		ActiveProfile: a.active,
	}
	for _, profile := range a.profiles {
		stored, err := a.encodeStoredProfile(profile)
		if err != nil {
			return err
		}
		doc.Profiles = append(doc.Profiles, stored)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal auth profiles: %w", err)
	}
	if err := sandbox.AtomicWriteFile(path, payload, 0600); err != nil {
		return fmt.Errorf("persist auth profiles: %w", err)
	}
	return nil
}

// saveProfile saves profile, optionally making it the active profile for
// its provider. Callers hold a.mu.
func (a *AuthService) saveProfile(profile AuthProfile, setActive bool) error {
	key := profileKey{provider: profile.Provider, profile: profile.ProfileName}
	a.profiles[key] = profile
	if setActive {
		a.active[profile.Provider] = profile.ProfileName
	}
	return a.persist()
}

// StoreProviderToken saves a static pasted token profile.
func (a *AuthService) StoreProviderToken(provider, profile, token string, metadata map[string]string, setActive bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveProfile(AuthProfile{
		Provider:    provider,
		ProfileName: profile,
		Kind:        AuthKindToken,
		Token:       token,
		Metadata:    metadata,
	}, setActive)
}

// StoreOpenAITokens saves an OpenAI Codex OAuth token set.
func (a *AuthService) StoreOpenAITokens(profile string, tokenSet TokenSet, accountID string, setActive bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveProfile(AuthProfile{
		Provider:    "openai-codex",
		ProfileName: profile,
		Kind:        AuthKindOAuth,
		TokenSet:    &tokenSet,
		AccountID:   accountID,
	}, setActive)
}

// StoreGeminiTokens saves a Gemini OAuth token set.
func (a *AuthService) StoreGeminiTokens(profile string, tokenSet TokenSet, accountID string, setActive bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveProfile(AuthProfile{
		Provider:    "gemini",
		ProfileName: profile,
		Kind:        AuthKindOAuth,
		TokenSet:    &tokenSet,
		AccountID:   accountID,
	}, setActive)
}

// SetActiveProfile selects profile as the active profile for provider
// without modifying stored credentials.
func (a *AuthService) SetActiveProfile(provider, profile string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.profiles[profileKey{provider: provider, profile: profile}]; !ok {
		return fmt.Errorf("no auth profile %s/%s", provider, profile)
	}
	a.active[provider] = profile
	return a.persist()
}

// GetProfile returns the profile saved for provider/profile (regardless of
// whether it is the active one), or ok=false if none exists.
func (a *AuthService) GetProfile(provider, profile string) (AuthProfile, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.profiles[profileKey{provider: provider, profile: profile}]
	return p, ok
}

// ActiveProfile returns the active profile for provider, or ok=false if
// none is set.
func (a *AuthService) ActiveProfile(provider string) (AuthProfile, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	name, ok := a.active[provider]
	if !ok {
		return AuthProfile{}, false
	}
	profile, ok := a.profiles[profileKey{provider: provider, profile: name}]
	return profile, ok
}

// RemoveProfile deletes the profile saved for provider/profile, clearing it
// from the active-profile map too if it was the active one. ok reports
// whether a profile actually existed to remove.
func (a *AuthService) RemoveProfile(provider, profile string) (ok bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := profileKey{provider: provider, profile: profile}
	if _, exists := a.profiles[key]; !exists {
		return false, nil
	}
	delete(a.profiles, key)
	if a.active[provider] == profile {
		delete(a.active, provider)
	}
	if err := a.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// ListProfiles returns every saved profile, in no particular order.
func (a *AuthService) ListProfiles() []AuthProfile {
	a.mu.Lock()
	defer a.mu.Unlock()
	profiles := make([]AuthProfile, 0, len(a.profiles))
	for _, profile := range a.profiles {
		profiles = append(profiles, profile)
	}
	return profiles
}

// FormatExpiry renders a profile's token expiry for human-readable status
// output: "n/a" for static tokens, "expired at ..." or "expires in Nm (...)"
// for OAuth token sets.
func FormatExpiry(profile AuthProfile, now time.Time) string {
	if profile.TokenSet == nil || profile.TokenSet.ExpiresAt == nil {
		return "n/a"
	}
	expiresAt := *profile.TokenSet.ExpiresAt
	if !expiresAt.After(now) {
		return fmt.Sprintf("expired at %s", expiresAt.Format(time.RFC3339))
	}
	minutes := int(expiresAt.Sub(now).Minutes())
	return fmt.Sprintf("expires in %dm (%s)", minutes, expiresAt.Format(time.RFC3339))
}

// NormalizeProvider maps user-facing provider aliases to their canonical
// identifiers.
func NormalizeProvider(raw string) (string, error) {
	switch raw {
	case "openai-codex", "openai":
		return "openai-codex", nil
	case "gemini":
		return "gemini", nil
	case "anthropic", "claude":
		return "anthropic", nil
	default:
		return "", fmt.Errorf("unknown provider %q", raw)
	}
}
