package oauth

import (
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// PkceState is the per-login-attempt secret material: the verifier stays
// local (persisted encrypted as a PendingOAuthLogin), the state value
// round-trips through the provider to bind the eventual redirect back to
// this attempt.
type PkceState struct {
	CodeVerifier string
	State        string
}

// GeneratePkceState creates a fresh verifier and anti-CSRF state value.
func GeneratePkceState() (PkceState, error) {
	return PkceState{
		CodeVerifier: oauth2.GenerateVerifier(),
		State:        uuid.NewString(),
	}, nil
}

// BuildAuthorizeURL renders the provider authorization URL for pkce,
// requesting the S256 PKCE challenge derived from its verifier.
func BuildAuthorizeURL(provider string, pkce PkceState) (string, error) {
	cfg, err := ConfigFor(provider)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(pkce.State, oauth2.S256ChallengeOption(pkce.CodeVerifier)), nil
}
