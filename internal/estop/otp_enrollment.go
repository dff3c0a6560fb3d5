package estop

import (
	"fmt"
	"os"

	"github.com/chumyin/zeroclaw/internal/paths"
	"github.com/chumyin/zeroclaw/internal/sandbox"
	"github.com/chumyin/zeroclaw/internal/secrets"
)

// otpSecretPath is where the encrypted TOTP seed is persisted, alongside
// the other security state rather than under auth/ since it gates estop
// resume, not provider login.
func otpSecretPath() (string, error) {
	return paths.DataPath("security/otp.secret")
}

// InitOTPValidator lazily loads or creates the TOTP seed backing estop's
// OTP gate. enrollmentURI is non-empty only the first time a seed is
// generated, so the caller can print the one-time enrollment announcement
// and QR-able URI exactly once.
func InitOTPValidator(store *secrets.Store) (validator *Validator, enrollmentURI string, err error) {
	path, err := otpSecretPath()
	if err != nil {
		return nil, "", err
	}

	data, readErr := os.ReadFile(path)
	if readErr == nil {
		secret, decErr := store.Decrypt(string(data))
		if decErr != nil {
			return nil, "", fmt.Errorf("decrypt otp secret: %w", decErr)
		}
		return NewValidator(secret), "", nil
	}
	if !os.IsNotExist(readErr) {
		return nil, "", fmt.Errorf("read otp secret: %w", readErr)
	}

	secret, err := GenerateSecret()
	if err != nil {
		return nil, "", fmt.Errorf("generate otp secret: %w", err)
	}
	encrypted, err := store.Encrypt(secret)
	if err != nil {
		return nil, "", fmt.Errorf("encrypt otp secret: %w", err)
	}
	if err := paths.EnsureParentDir(path); err != nil {
		return nil, "", err
	}
	if err := sandbox.AtomicWriteFile(path, []byte(encrypted), 0600); err != nil {
		return nil, "", fmt.Errorf("write otp secret: %w", err)
	}

	return NewValidator(secret), EnrollmentURI("ZeroClaw", "estop", secret), nil
}
