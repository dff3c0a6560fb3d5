package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/chumyin/zeroclaw/internal/secrets"
)

func withTestProvider(t *testing.T, tokenHandler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(tokenHandler)
	t.Cleanup(server.Close)

	const name = "test-provider"
	providers[name] = oauth2.Config{
		ClientID:    "test-client",
		RedirectURL: LoopbackRedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  server.URL + "/authorize",
			TokenURL: server.URL + "/token",
		},
	}
	t.Cleanup(func() { delete(providers, name) })
	return name
}

func TestExchangeCodeSuccess(t *testing.T) {
	provider := withTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"access-xyz","refresh_token":"refresh-xyz","token_type":"bearer","expires_in":3600,"id_token":"id-xyz"}`)
	})

	pkce, err := GeneratePkceState()
	if err != nil {
		t.Fatalf("GeneratePkceState: %v", err)
	}

	tokenSet, err := ExchangeCode(context.Background(), provider, "auth-code", pkce)
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if tokenSet.AccessToken != "access-xyz" {
		t.Errorf("expected access token access-xyz, got %q", tokenSet.AccessToken)
	}
	if tokenSet.RefreshToken != "refresh-xyz" {
		t.Errorf("expected refresh token refresh-xyz, got %q", tokenSet.RefreshToken)
	}
	if tokenSet.IDToken != "id-xyz" {
		t.Errorf("expected id token id-xyz, got %q", tokenSet.IDToken)
	}
	if tokenSet.ExpiresAt == nil {
		t.Fatal("expected non-nil ExpiresAt")
	}
	if tokenSet.ExpiresAt.Before(time.Now()) {
		t.Errorf("expected ExpiresAt in the future, got %v", tokenSet.ExpiresAt)
	}
}

func TestExchangeCodeProviderRejects(t *testing.T) {
	provider := withTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	})

	pkce, err := GeneratePkceState()
	if err != nil {
		t.Fatalf("GeneratePkceState: %v", err)
	}

	if _, err := ExchangeCode(context.Background(), provider, "bad-code", pkce); err == nil {
		t.Fatal("expected error from rejected exchange")
	}
}

func TestExchangeCodeUnknownProvider(t *testing.T) {
	pkce, err := GeneratePkceState()
	if err != nil {
		t.Fatalf("GeneratePkceState: %v", err)
	}
	if _, err := ExchangeCode(context.Background(), "nonexistent", "code", pkce); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRefreshTokenSuccess(t *testing.T) {
	provider := withTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"refreshed-access","refresh_token":"refreshed-refresh","token_type":"bearer","expires_in":3600}`)
	})

	existing := secrets.TokenSet{RefreshToken: "old-refresh"}
	tokenSet, err := RefreshToken(context.Background(), provider, existing)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if tokenSet.AccessToken != "refreshed-access" {
		t.Errorf("expected refreshed-access, got %q", tokenSet.AccessToken)
	}
}

func TestRefreshTokenMissingRefreshToken(t *testing.T) {
	provider := withTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("token endpoint should not be called without a refresh token")
	})

	if _, err := RefreshToken(context.Background(), provider, secrets.TokenSet{}); err == nil {
		t.Fatal("expected error for missing refresh token")
	}
}
