package estop

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // G505: SHA-1 is mandated by RFC 6238 TOTP, not used for anything security-sensitive beyond the standard
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

// No example-pack repo vendors a TOTP library (verified by grepping every
// go.mod/go.sum under the retrieved example repos); RFC 6238 is a small,
// stable, standard algorithm built directly on crypto/hmac and
// crypto/sha1, so it is implemented here rather than reaching past the
// standard library for it.

const (
	otpDigits       = 6
	otpPeriod       = 30 * time.Second
	otpSecretBytes  = 20
	otpWindowBefore = 1
	otpWindowAfter  = 1
)

// GenerateSecret returns a fresh base32-encoded TOTP secret, suitable for
// storage in a SecretStore and for rendering into an enrollment URI.
func GenerateSecret() (string, error) {
	raw := make([]byte, otpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate otp secret: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw), nil
}

// EnrollmentURI renders the otpauth:// URI a user scans into an
// authenticator app.
func EnrollmentURI(issuer, accountName, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", fmt.Sprintf("%d", otpDigits))
	v.Set("period", fmt.Sprintf("%d", int(otpPeriod.Seconds())))
	label := url.PathEscape(issuer + ":" + accountName)
	return fmt.Sprintf("otpauth://totp/%s?%s", label, v.Encode())
}

// code computes the TOTP code for secret at the given counter.
func code(secret string, counter uint64) (string, error) {
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(secret))
	if err != nil {
		return "", fmt.Errorf("decode otp secret: %w", err)
	}

	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	truncated := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	value := truncated % uint32(math.Pow10(otpDigits))
	return fmt.Sprintf("%0*d", otpDigits, value), nil
}

// Validator checks entered TOTP codes against a secret, tolerating one
// period of clock skew in either direction.
type Validator struct {
	secret string
	now    func() time.Time
}

// NewValidator builds a Validator for secret.
func NewValidator(secret string) *Validator {
	return &Validator{secret: secret, now: time.Now}
}

// Validate reports whether entered matches the secret at the current time
// step, or within the accepted skew window.
func (v *Validator) Validate(entered string) (bool, error) {
	entered = strings.TrimSpace(entered)
	if entered == "" {
		return false, nil
	}
	now := v.now
	if now == nil {
		now = time.Now
	}
	counter := uint64(now().Unix()) / uint64(otpPeriod.Seconds())

	for step := -otpWindowBefore; step <= otpWindowAfter; step++ {
		c := counter
		if step < 0 {
			if c < uint64(-step) {
				continue
			}
			c -= uint64(-step)
		} else {
			c += uint64(step)
		}
		expected, err := code(v.secret, c)
		if err != nil {
			return false, err
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(entered)) == 1 {
			return true, nil
		}
	}
	return false, nil
}
