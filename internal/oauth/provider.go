// Package oauth drives the authorization-code-with-PKCE flow used by
// `auth login`: building an authorize URL, capturing the redirect on a
// local loopback listener (or accepting a pasted one), and exchanging the
// code for a token set.
package oauth

import (
	"fmt"

	"golang.org/x/oauth2"
)

// LoopbackRedirectURL is where the local listener in ReceiveLoopbackCode
// answers the provider's redirect.
const LoopbackRedirectURL = "http://localhost:1455/auth/callback"

// providers names the two providers the fabric authenticates against. The
// ClientID values are fixed placeholder ids; they are enough to exercise the
// PKCE and loopback mechanics this package is responsible for.
var providers = map[string]oauth2.Config{
	"openai-codex": {
		ClientID:    "zeroclaw-openai-codex",
		RedirectURL: LoopbackRedirectURL,
		Scopes:      []string{"openid", "profile", "offline_access"},
		Endpoint: oauth2.Endpoint{
			AuthURL:      "https://auth.openai.com/oauth/authorize",
			TokenURL:     "https://auth.openai.com/oauth/token",
			DeviceAuthURL: "https://auth.openai.com/oauth/device/code",
		},
	},
	"gemini": {
		ClientID:    "zeroclaw-gemini",
		RedirectURL: LoopbackRedirectURL,
		Scopes:      []string{"openid", "email", "https://www.googleapis.com/auth/generative-language"},
		Endpoint: oauth2.Endpoint{
			AuthURL:       "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:      "https://oauth2.googleapis.com/token",
			DeviceAuthURL: "https://oauth2.googleapis.com/device/code",
		},
	},
}

// ConfigFor returns the oauth2.Config for a normalized provider id.
func ConfigFor(provider string) (oauth2.Config, error) {
	cfg, ok := providers[provider]
	if !ok {
		return oauth2.Config{}, fmt.Errorf("no oauth configuration for provider %q", provider)
	}
	return cfg, nil
}
