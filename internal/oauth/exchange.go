package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/chumyin/zeroclaw/internal/secrets"
)

// ExchangeCode trades an authorization code for a token set, binding the
// exchange to the verifier generated alongside the authorize URL.
func ExchangeCode(ctx context.Context, provider, code string, pkce PkceState) (secrets.TokenSet, error) {
	cfg, err := ConfigFor(provider)
	if err != nil {
		return secrets.TokenSet{}, err
	}

	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(pkce.CodeVerifier))
	if err != nil {
		return secrets.TokenSet{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tokenSetFromOAuth2(token), nil
}

// RefreshToken exchanges a stored refresh token for a fresh token set.
func RefreshToken(ctx context.Context, provider string, existing secrets.TokenSet) (secrets.TokenSet, error) {
	if existing.RefreshToken == "" {
		return secrets.TokenSet{}, fmt.Errorf("no refresh token available for provider %q", provider)
	}
	cfg, err := ConfigFor(provider)
	if err != nil {
		return secrets.TokenSet{}, err
	}

	source := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: existing.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return secrets.TokenSet{}, fmt.Errorf("refresh oauth token: %w", err)
	}
	return tokenSetFromOAuth2(token), nil
}

// Refresher implements secrets.TokenRefresher against the real OAuth
// provider endpoints, via RefreshToken.
type Refresher struct{}

func (Refresher) RefreshToken(ctx context.Context, provider string, existing secrets.TokenSet) (secrets.TokenSet, error) {
	return RefreshToken(ctx, provider, existing)
}

// StartDeviceAuth begins the RFC 8628 device-authorization flow for
// provider, returning the verification URI and user code to display.
func StartDeviceAuth(ctx context.Context, provider string) (*oauth2.DeviceAuthResponse, error) {
	cfg, err := ConfigFor(provider)
	if err != nil {
		return nil, err
	}
	da, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("start device authorization: %w", err)
	}
	return da, nil
}

// PollDeviceToken blocks until the user completes a device-authorization
// flow started by StartDeviceAuth, or it expires.
func PollDeviceToken(ctx context.Context, provider string, da *oauth2.DeviceAuthResponse) (secrets.TokenSet, error) {
	cfg, err := ConfigFor(provider)
	if err != nil {
		return secrets.TokenSet{}, err
	}
	token, err := cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return secrets.TokenSet{}, fmt.Errorf("poll device access token: %w", err)
	}
	return tokenSetFromOAuth2(token), nil
}

func tokenSetFromOAuth2(token *oauth2.Token) secrets.TokenSet {
	set := secrets.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		set.ExpiresAt = &expiry
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		set.IDToken = idToken
	}
	return set
}
