package estop

import (
	"fmt"
	"sync"

	"github.com/chumyin/zeroclaw/internal/events"
)

// OtpRequiredError is returned by Resume when a validator was supplied (OTP
// is required) but no code was.
type OtpRequiredError struct{}

func (e *OtpRequiredError) Error() string { return "OTP code is required to resume from estop" }

// OtpInvalidError is returned by Resume when the supplied code fails
// validation. The state is left unchanged.
type OtpInvalidError struct{}

func (e *OtpInvalidError) Error() string { return "OTP code is invalid" }

// Manager guards EstopState with a mutex and persists every transition.
// Callers enforcing tool actions should call Status(), not reach into the
// zero-value EstopState directly, so they always see a consistent snapshot.
type Manager struct {
	mu    sync.RWMutex
	state EstopState

	// Bus is an explicitly-constructed, caller-supplied handle (see
	// Context in cmd/zeroclaw): nil by default, so Engage/Resume publish
	// nothing unless the caller opts in by assigning it.
	Bus *events.Bus
}

// LoadManager reads the persisted state into a fresh Manager.
func LoadManager() (*Manager, error) {
	state, err := Load()
	if err != nil {
		return nil, err
	}
	return &Manager{state: state}, nil
}

// Status returns a snapshot of the current state.
func (m *Manager) Status() EstopState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Engage applies level and persists the result. engage never requires OTP.
func (m *Manager) Engage(level EngageLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := Engage(m.state, level, Now())
	if err := Save(next); err != nil {
		return fmt.Errorf("persist estop engage: %w", err)
	}
	m.state = next
	if m.Bus != nil {
		m.Bus.PublishWithSource("estop.engaged", next, "cli")
	}
	return nil
}

// Resume applies selector and persists the result. If validator is
// non-nil, the supplied code must validate first; a missing code with a
// non-nil validator is an OtpRequiredError, and a non-validating code is an
// OtpInvalidError. The state is left unchanged on either OTP failure.
func (m *Manager) Resume(selector ResumeSelector, code string, validator *Validator) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if validator != nil {
		if code == "" {
			return &OtpRequiredError{}
		}
		ok, err := validator.Validate(code)
		if err != nil {
			return fmt.Errorf("validate otp: %w", err)
		}
		if !ok {
			return &OtpInvalidError{}
		}
	}

	next := Resume(m.state, selector, Now())
	if err := Save(next); err != nil {
		return fmt.Errorf("persist estop resume: %w", err)
	}
	m.state = next
	if m.Bus != nil {
		m.Bus.PublishWithSource("estop.resumed", next, "cli")
	}
	return nil
}
