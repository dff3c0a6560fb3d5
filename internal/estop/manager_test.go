package estop

import "testing"

func TestManagerEngageAndResume(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())

	m, err := LoadManager()
	if err != nil {
		t.Fatal(err)
	}
	if m.Status().IsEngaged() {
		t.Fatal("fresh manager should start disengaged")
	}

	if err := m.Engage(EngageLevel{KillAll: true}); err != nil {
		t.Fatal(err)
	}
	if !m.Status().KillAll {
		t.Error("expected kill_all engaged after Engage")
	}

	if err := m.Resume(ResumeSelector{KillAll: true}, "", nil); err != nil {
		t.Fatal(err)
	}
	if m.Status().IsEngaged() {
		t.Error("expected disengaged after resume")
	}
}

func TestManagerEngagePersists(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())

	m, err := LoadManager()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Engage(EngageLevel{Tools: []string{"shell"}}); err != nil {
		t.Fatal(err)
	}

	reloaded, err := LoadManager()
	if err != nil {
		t.Fatal(err)
	}
	if !ToolFrozen(reloaded.Status().FrozenTools, "shell") {
		t.Error("expected persisted state to survive a reload")
	}
}

func TestManagerResumeRequiresOtpWhenValidatorPresent(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	m, err := LoadManager()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Engage(EngageLevel{KillAll: true}); err != nil {
		t.Fatal(err)
	}

	validator := NewValidator("JBSWY3DPEHPK3PXP")
	err = m.Resume(ResumeSelector{KillAll: true}, "", validator)
	if _, ok := err.(*OtpRequiredError); !ok {
		t.Fatalf("expected OtpRequiredError, got %v", err)
	}
	if !m.Status().IsEngaged() {
		t.Error("state should be unchanged after a failed OTP gate")
	}
}

func TestManagerResumeRejectsInvalidOtp(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	m, err := LoadManager()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Engage(EngageLevel{KillAll: true}); err != nil {
		t.Fatal(err)
	}

	validator := NewValidator("JBSWY3DPEHPK3PXP")
	err = m.Resume(ResumeSelector{KillAll: true}, "000000", validator)
	if _, ok := err.(*OtpInvalidError); !ok {
		t.Fatalf("expected OtpInvalidError, got %v", err)
	}
	if !m.Status().IsEngaged() {
		t.Error("state should be unchanged after an invalid OTP code")
	}
}

func TestManagerResumeAcceptsValidOtp(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())
	m, err := LoadManager()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Engage(EngageLevel{KillAll: true}); err != nil {
		t.Fatal(err)
	}

	secret := "JBSWY3DPEHPK3PXP"
	validator := NewValidator(secret)
	counter := uint64(Now().Unix()) / uint64(otpPeriod.Seconds())
	validCode, err := code(secret, counter)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Resume(ResumeSelector{KillAll: true}, validCode, validator); err != nil {
		t.Fatalf("expected valid otp to resume, got %v", err)
	}
	if m.Status().IsEngaged() {
		t.Error("expected disengaged after a valid-otp resume")
	}
}
