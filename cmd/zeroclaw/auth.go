package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chumyin/zeroclaw/internal/config"
	"github.com/chumyin/zeroclaw/internal/oauth"
	"github.com/chumyin/zeroclaw/internal/secrets"
)

// AuthCmd groups every `auth *` subcommand.
type AuthCmd struct {
	Login         AuthLoginCmd         `cmd:"login" help:"Start a provider OAuth login"`
	PasteRedirect AuthPasteRedirectCmd `cmd:"paste-redirect" help:"Complete a pending OAuth login from a pasted redirect"`
	PasteToken    AuthPasteTokenCmd    `cmd:"paste-token" aliases:"setup-token" help:"Save a pasted static token"`
	Status        AuthStatusCmd        `cmd:"status" help:"Show every saved profile and its expiry"`
	List          AuthListCmd          `cmd:"list" help:"List saved profile ids"`
	Use           AuthUseCmd           `cmd:"use" help:"Switch the active profile for a provider"`
	Refresh       AuthRefreshCmd       `cmd:"refresh" help:"Refresh a profile's access token from its refresh token"`
	Logout        AuthLogoutCmd        `cmd:"logout" help:"Remove a saved profile"`
}

// newAuthService loads the default secret store and the auth service on
// top of it, the common setup every auth subcommand needs.
func newAuthService() (*secrets.AuthService, error) {
	loadResult, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, err := secrets.NewDefault(loadResult.Config.Secrets.EncryptEnabled)
	if err != nil {
		return nil, err
	}
	return secrets.NewAuthService(store)
}

// authProfileID renders a profile's composite id as the CLI prints and
// accepts it: "provider:profile_name".
func authProfileID(profile secrets.AuthProfile) string {
	return fmt.Sprintf("%s:%s", profile.Provider, profile.ProfileName)
}

func sortedProfiles(authService *secrets.AuthService) []secrets.AuthProfile {
	profiles := authService.ListProfiles()
	sort.Slice(profiles, func(i, j int) bool {
		return authProfileID(profiles[i]) < authProfileID(profiles[j])
	})
	return profiles
}

// activeProfilesByProvider collects the active profile name for every
// provider that has at least one saved profile.
func activeProfilesByProvider(authService *secrets.AuthService, profiles []secrets.AuthProfile) map[string]string {
	active := make(map[string]string)
	seen := make(map[string]bool)
	for _, profile := range profiles {
		if seen[profile.Provider] {
			continue
		}
		seen[profile.Provider] = true
		if ap, ok := authService.ActiveProfile(profile.Provider); ok {
			active[profile.Provider] = ap.ProfileName
		}
	}
	return active
}

type AuthListCmd struct {
	JSON bool `help:"Emit a machine-readable report"`
}

type authListEntry struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Profile  string `json:"profile"`
	Active   bool   `json:"active"`
}

func (c *AuthListCmd) Run(ctx *Context) error {
	authService, err := newAuthService()
	if err != nil {
		return err
	}
	profiles := sortedProfiles(authService)
	active := activeProfilesByProvider(authService, profiles)

	if c.JSON {
		entries := make([]authListEntry, 0, len(profiles))
		for _, profile := range profiles {
			entries = append(entries, authListEntry{
				ID:       authProfileID(profile),
				Provider: profile.Provider,
				Profile:  profile.ProfileName,
				Active:   active[profile.Provider] == profile.ProfileName,
			})
		}
		return emitJSON(entries)
	}

	if len(profiles) == 0 {
		emitHuman([]string{"No auth profiles configured."})
		return nil
	}
	lines := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		marker := " "
		if active[profile.Provider] == profile.ProfileName {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %s", marker, authProfileID(profile)))
	}
	emitHuman(lines)
	return nil
}

type AuthStatusCmd struct {
	JSON bool `help:"Emit a machine-readable report"`
}

type authStatusEntry struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Profile  string `json:"profile"`
	Active   bool   `json:"active"`
	Kind     string `json:"kind"`
	Account  string `json:"account"`
	Expires  string `json:"expires"`
}

type authStatusReport struct {
	Profiles []authStatusEntry `json:"profiles"`
	Active   map[string]string `json:"active_profiles"`
}

func (c *AuthStatusCmd) Run(ctx *Context) error {
	authService, err := newAuthService()
	if err != nil {
		return err
	}
	profiles := sortedProfiles(authService)
	active := activeProfilesByProvider(authService, profiles)
	now := time.Now()

	if c.JSON {
		entries := make([]authStatusEntry, 0, len(profiles))
		for _, profile := range profiles {
			entries = append(entries, authStatusEntry{
				ID:       authProfileID(profile),
				Provider: profile.Provider,
				Profile:  profile.ProfileName,
				Active:   active[profile.Provider] == profile.ProfileName,
				Kind:     string(profile.Kind),
				Account:  secrets.Redact(accountOrUnknown(profile.AccountID), 4),
				Expires:  secrets.FormatExpiry(profile, now),
			})
		}
		return emitJSON(authStatusReport{Profiles: entries, Active: active})
	}

	if len(profiles) == 0 {
		emitHuman([]string{"No auth profiles configured."})
		return nil
	}

	lines := make([]string, 0, len(profiles)+len(active)+2)
	for _, profile := range profiles {
		marker := " "
		if active[profile.Provider] == profile.ProfileName {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %s kind=%s account=%s expires=%s",
			marker, authProfileID(profile), profile.Kind,
			secrets.Redact(accountOrUnknown(profile.AccountID), 4), secrets.FormatExpiry(profile, now)))
	}

	lines = append(lines, "", "Active profiles:")
	providers := make([]string, 0, len(active))
	for provider := range active {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	for _, provider := range providers {
		lines = append(lines, fmt.Sprintf("  %s: %s", provider, active[provider]))
	}
	emitHuman(lines)
	return nil
}

func accountOrUnknown(accountID string) string {
	if accountID == "" {
		return "unknown"
	}
	return accountID
}

type AuthUseCmd struct {
	Provider string `required:"" help:"Provider id"`
	Profile  string `required:"" help:"Profile name to make active"`
}

func (c *AuthUseCmd) Run(ctx *Context) error {
	provider, err := secrets.NormalizeProvider(c.Provider)
	if err != nil {
		return err
	}
	authService, err := newAuthService()
	if err != nil {
		return err
	}
	if err := authService.SetActiveProfile(provider, c.Profile); err != nil {
		return err
	}
	emitHuman([]string{fmt.Sprintf("active profile for %s: %s", provider, c.Profile)})
	return nil
}

type AuthLogoutCmd struct {
	Provider string `required:"" help:"Provider id"`
	Profile  string `default:"default" help:"Profile name to remove"`
}

func (c *AuthLogoutCmd) Run(ctx *Context) error {
	provider, err := secrets.NormalizeProvider(c.Provider)
	if err != nil {
		return err
	}
	authService, err := newAuthService()
	if err != nil {
		return err
	}
	removed, err := authService.RemoveProfile(provider, c.Profile)
	if err != nil {
		return err
	}
	if removed {
		emitHuman([]string{fmt.Sprintf("removed auth profile %s:%s", provider, c.Profile)})
	} else {
		emitHuman([]string{fmt.Sprintf("auth profile not found: %s:%s", provider, c.Profile)})
	}
	return nil
}

type AuthRefreshCmd struct {
	Provider string `required:"" help:"Provider id: openai-codex or gemini"`
	Profile  string `default:"default" help:"Profile name to refresh"`
}

func (c *AuthRefreshCmd) Run(ctx *Context) error {
	provider, err := secrets.NormalizeProvider(c.Provider)
	if err != nil {
		return err
	}
	if provider != "openai-codex" && provider != "gemini" {
		return fmt.Errorf("auth refresh supports --provider openai-codex or gemini")
	}

	authService, err := newAuthService()
	if err != nil {
		return err
	}
	profile, ok := authService.GetProfile(provider, c.Profile)
	if !ok {
		return fmt.Errorf("no auth profile found for %s:%s; run `zeroclaw auth login --provider %s`", provider, c.Profile, provider)
	}
	if profile.Kind != secrets.AuthKindOAuth || profile.TokenSet == nil {
		return fmt.Errorf("auth profile %s has no refresh token to use", authProfileID(profile))
	}

	refresher := ctx.TokenRefresher
	if refresher == nil {
		refresher = oauth.Refresher{}
	}
	refreshed, err := refresher.RefreshToken(ctxBackground(), provider, *profile.TokenSet)
	if err != nil {
		return err
	}

	active, hasActive := authService.ActiveProfile(provider)
	setActive := hasActive && active.ProfileName == c.Profile

	switch provider {
	case "openai-codex":
		if err := authService.StoreOpenAITokens(c.Profile, refreshed, profile.AccountID, setActive); err != nil {
			return err
		}
		emitHuman([]string{"OpenAI Codex token is valid (refresh completed if needed)."})
	case "gemini":
		if err := authService.StoreGeminiTokens(c.Profile, refreshed, profile.AccountID, setActive); err != nil {
			return err
		}
		emitHuman([]string{
			"Gemini token refreshed successfully",
			fmt.Sprintf("  Profile: gemini:%s", c.Profile),
		})
	}
	return nil
}

type AuthLoginCmd struct {
	Provider   string `required:"" help:"Provider id: openai-codex or gemini"`
	Profile    string `default:"default" help:"Profile name to save credentials under"`
	DeviceCode bool   `name:"device-code" help:"Use the OAuth device-code flow instead of the browser/loopback flow"`
}

func (c *AuthLoginCmd) Run(ctx *Context) error {
	provider, err := secrets.NormalizeProvider(c.Provider)
	if err != nil {
		return err
	}
	if provider != "openai-codex" && provider != "gemini" {
		return fmt.Errorf("auth login supports --provider openai-codex or gemini, got %q", c.Provider)
	}

	loadResult, err := config.Load()
	if err != nil {
		return err
	}
	store, err := secrets.NewDefault(loadResult.Config.Secrets.EncryptEnabled)
	if err != nil {
		return err
	}
	authService, err := secrets.NewAuthService(store)
	if err != nil {
		return err
	}

	if c.DeviceCode {
		tokenSet, err := c.runDeviceCode(provider)
		if err != nil {
			fmt.Printf("device-code flow unavailable: %v. Falling back to browser flow.\n", err)
		} else {
			return storeProviderTokens(authService, provider, c.Profile, tokenSet)
		}
	}

	pkce, err := oauth.GeneratePkceState()
	if err != nil {
		return err
	}
	authorizeURL, err := oauth.BuildAuthorizeURL(provider, pkce)
	if err != nil {
		return err
	}

	pending := secrets.PendingOAuthLogin{
		Provider:     provider,
		Profile:      c.Profile,
		CodeVerifier: pkce.CodeVerifier,
		State:        pkce.State,
		CreatedAt:    time.Now(),
	}
	if err := secrets.SavePendingOAuthLogin(store, pending); err != nil {
		return err
	}

	fmt.Println("Open this URL in your browser and authorize access:")
	fmt.Println(authorizeURL)
	fmt.Println()
	fmt.Printf("Waiting for callback at %s ...\n", oauth.LoopbackRedirectURL)

	code, err := oauth.ReceiveLoopbackCode(ctxBackground(), pkce.State)
	if err != nil {
		fmt.Printf("callback capture failed: %v\n", err)
		fmt.Printf("Run `zeroclaw auth paste-redirect --provider %s --profile %s`\n", provider, c.Profile)
		return nil
	}
	secrets.ClearPendingOAuthLogin(provider)

	tokenSet, err := oauth.ExchangeCode(ctxBackground(), provider, code, pkce)
	if err != nil {
		return err
	}
	return storeProviderTokens(authService, provider, c.Profile, tokenSet)
}

func (c *AuthLoginCmd) runDeviceCode(provider string) (secrets.TokenSet, error) {
	da, err := oauth.StartDeviceAuth(ctxBackground(), provider)
	if err != nil {
		return secrets.TokenSet{}, err
	}
	fmt.Printf("%s device-code login started.\n", provider)
	fmt.Printf("Visit: %s\n", da.VerificationURI)
	fmt.Printf("Code:  %s\n", da.UserCode)
	if da.VerificationURIComplete != "" {
		fmt.Printf("Fast link: %s\n", da.VerificationURIComplete)
	}
	return oauth.PollDeviceToken(ctxBackground(), provider, da)
}

func storeProviderTokens(authService *secrets.AuthService, provider, profile string, tokenSet secrets.TokenSet) error {
	var err error
	switch provider {
	case "openai-codex":
		err = authService.StoreOpenAITokens(profile, tokenSet, "", true)
	case "gemini":
		err = authService.StoreGeminiTokens(profile, tokenSet, "", true)
	default:
		return fmt.Errorf("no token storage rule for provider %q", provider)
	}
	if err != nil {
		return err
	}
	emitHuman([]string{
		fmt.Sprintf("saved profile %s", profile),
		fmt.Sprintf("active profile for %s: %s", provider, profile),
	})
	return nil
}

type AuthPasteRedirectCmd struct {
	Provider string `required:"" help:"Provider id: openai-codex or gemini"`
	Profile  string `default:"default" help:"Profile name the pending login was started under"`
	Input    string `help:"Redirect URL or bare code (prompted if omitted)"`
}

func (c *AuthPasteRedirectCmd) Run(ctx *Context) error {
	provider, err := secrets.NormalizeProvider(c.Provider)
	if err != nil {
		return err
	}
	if provider != "openai-codex" && provider != "gemini" {
		return fmt.Errorf("auth paste-redirect supports --provider openai-codex or gemini")
	}

	loadResult, err := config.Load()
	if err != nil {
		return err
	}
	store, err := secrets.NewDefault(loadResult.Config.Secrets.EncryptEnabled)
	if err != nil {
		return err
	}

	pending, err := secrets.LoadPendingOAuthLogin(store, provider)
	if err != nil {
		return err
	}
	if pending == nil {
		return fmt.Errorf("no pending oauth login found for %s; run `zeroclaw auth login --provider %s` first", provider, provider)
	}
	if pending.Profile != c.Profile {
		return fmt.Errorf("pending login profile mismatch: pending=%s, requested=%s", pending.Profile, c.Profile)
	}

	redirectInput := c.Input
	if redirectInput == "" {
		redirectInput, err = readLine("Paste redirect URL or OAuth code: ")
		if err != nil {
			return err
		}
	}

	code, err := oauth.ParseCodeFromRedirect(redirectInput, pending.State)
	if err != nil {
		return err
	}

	pkce := oauth.PkceState{CodeVerifier: pending.CodeVerifier, State: pending.State}
	tokenSet, err := oauth.ExchangeCode(ctxBackground(), provider, code, pkce)
	if err != nil {
		return err
	}

	authService, err := secrets.NewAuthService(store)
	if err != nil {
		return err
	}
	if err := storeProviderTokens(authService, provider, c.Profile, tokenSet); err != nil {
		return err
	}
	secrets.ClearPendingOAuthLogin(provider)
	return nil
}

type AuthPasteTokenCmd struct {
	Provider string `required:"" help:"Provider id"`
	Profile  string `default:"default" help:"Profile name to save the token under"`
	Token    string `help:"Token value (prompted if omitted)"`
	AuthKind string `name:"auth-kind" help:"Override the auto-detected auth kind metadata"`
}

func (c *AuthPasteTokenCmd) Run(ctx *Context) error {
	provider, err := secrets.NormalizeProvider(c.Provider)
	if err != nil {
		return err
	}

	token := strings.TrimSpace(c.Token)
	if token == "" {
		token, err = readSecret("Paste token: ")
		if err != nil {
			return err
		}
		token = strings.TrimSpace(token)
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	loadResult, err := config.Load()
	if err != nil {
		return err
	}
	store, err := secrets.NewDefault(loadResult.Config.Secrets.EncryptEnabled)
	if err != nil {
		return err
	}
	authService, err := secrets.NewAuthService(store)
	if err != nil {
		return err
	}

	metadata := map[string]string{"auth_kind": detectAuthKind(token, c.AuthKind)}
	if err := authService.StoreProviderToken(provider, c.Profile, token, metadata, true); err != nil {
		return err
	}
	emitHuman([]string{
		fmt.Sprintf("saved profile %s", c.Profile),
		fmt.Sprintf("active profile for %s: %s", provider, c.Profile),
	})
	return nil
}

// detectAuthKind classifies a pasted token for the auth_kind metadata field:
// an explicit override always wins; otherwise an sk-ant-prefixed value is an
// API key and anything else is treated as a bearer/OAuth-style token.
func detectAuthKind(token, override string) string {
	if override != "" {
		return override
	}
	if strings.HasPrefix(token, "sk-ant-") {
		return "api_key"
	}
	return "authorization"
}
