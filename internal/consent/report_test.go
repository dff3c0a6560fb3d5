package consent

import "testing"

func TestShellQuoteBasic(t *testing.T) {
	if got, want := ShellQuote("hello world"), "'hello world'"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestShellQuoteEscapesEmbeddedQuote(t *testing.T) {
	got := ShellQuote("it's a test")
	want := `'it'"'"'s a test'`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNewGeneratedCommandNoReasons(t *testing.T) {
	cmd := NewGeneratedCommand("preset.apply", "apply it", "zeroclaw preset apply", nil)
	if cmd.RequiresExplicitConsent {
		t.Error("expected requires_explicit_consent=false with no reasons")
	}
	if cmd.ConsentReasons != nil || cmd.ConsentReasonKeys != nil {
		t.Errorf("expected nil reason fields, got %v %v", cmd.ConsentReasons, cmd.ConsentReasonKeys)
	}
}

func TestNewGeneratedCommandWithReasons(t *testing.T) {
	cmd := NewGeneratedCommand("preset.apply", "apply it", "zeroclaw preset apply", []ConsentReasonCode{ReasonRiskyPack})
	if !cmd.RequiresExplicitConsent {
		t.Error("expected requires_explicit_consent=true")
	}
	if len(cmd.ConsentReasons) != 1 || cmd.ConsentReasons[0] != "risky_pack" {
		t.Errorf("got %v", cmd.ConsentReasons)
	}
	if len(cmd.ConsentReasonKeys) != 1 || cmd.ConsentReasonKeys[0] != "consent.reason.risky_pack" {
		t.Errorf("got %v", cmd.ConsentReasonKeys)
	}
}

func TestBuildCommandLine(t *testing.T) {
	got := BuildCommandLine("zeroclaw", "preset", "apply", "--dry-run")
	want := "zeroclaw preset apply --dry-run"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
