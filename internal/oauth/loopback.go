package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	. "github.com/chumyin/zeroclaw/internal/logging"
)

// LoopbackTimeout bounds how long ReceiveLoopbackCode waits for the
// provider to redirect back before the caller is told to fall back to
// `auth paste-redirect`.
const LoopbackTimeout = 180 * time.Second

// TimeoutError marks the loopback listener's hard deadline expiring.
type TimeoutError struct{}

func (e *TimeoutError) Error() string {
	return "timed out waiting for OAuth redirect; run `zeroclaw auth paste-redirect` instead"
}

// ReceiveLoopbackCode starts a one-shot HTTP server on the fixed loopback
// port, waits for a request carrying the matching state, and returns its
// authorization code. It never serves more than one request and always
// shuts the listener down before returning.
func ReceiveLoopbackCode(ctx context.Context, expectedState string) (string, error) {
	return receiveLoopbackCode(ctx, expectedState, LoopbackTimeout, "127.0.0.1:1455", nil)
}

// receiveLoopbackCode is the testable core: addr and timeout are
// parameterized, and boundAddr (when non-nil) receives the listener's
// actual address once bound, so tests can target an ephemeral port.
func receiveLoopbackCode(ctx context.Context, expectedState string, timeout time.Duration, addr string, boundAddr chan<- string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if errParam := query.Get("error"); errParam != "" {
			errCh <- fmt.Errorf("provider returned error: %s", errParam)
			fmt.Fprintln(w, "Authorization failed. You may close this window.")
			return
		}
		if query.Get("state") != expectedState {
			errCh <- errors.New("redirect state mismatch")
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := query.Get("code")
		if code == "" {
			errCh <- errors.New("redirect missing authorization code")
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		codeCh <- code
		fmt.Fprintln(w, "Authorization complete. You may close this window and return to the terminal.")
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("bind loopback listener: %w", err)
	}
	if boundAddr != nil {
		boundAddr <- listener.Addr().String()
	}
	server := &http.Server{Handler: mux}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			L_warn("oauth: loopback listener stopped", "error", serveErr)
		}
	}()
	defer server.Close() //nolint:errcheck // best-effort shutdown

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", &TimeoutError{}
	}
}

// ParseCodeFromRedirect extracts the authorization code from either a full
// redirect URL or a bare code pasted by the user, validating the state
// parameter when the input is a URL.
func ParseCodeFromRedirect(input, expectedState string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", errors.New("redirect input is empty")
	}
	if !strings.Contains(trimmed, "://") {
		// Bare code, not a URL.
		return trimmed, nil
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}
	query := parsed.Query()
	if state := query.Get("state"); state != "" && state != expectedState {
		return "", errors.New("redirect state mismatch")
	}
	code := query.Get("code")
	if code == "" {
		return "", errors.New("redirect url is missing a code parameter")
	}
	return code, nil
}
