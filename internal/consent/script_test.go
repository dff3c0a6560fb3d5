package consent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildOrchestrationScriptStructure(t *testing.T) {
	commands := []GeneratedNextCommand{
		NewGeneratedCommand("preset.apply_dry_run", "preview", "zeroclaw preset apply --dry-run", nil),
		NewGeneratedCommand("preset.apply", "apply", "zeroclaw preset apply", []ConsentReasonCode{ReasonRiskyPack}),
	}
	script := BuildOrchestrationScript("zeroclaw preset intent 'automate things' --json", commands)

	if !strings.HasPrefix(script, "#!/usr/bin/env bash\n") {
		t.Error("script must start with a bash shebang")
	}
	if !strings.Contains(script, "set -euo pipefail") {
		t.Error("script must set -euo pipefail")
	}
	if !strings.Contains(script, "confirm() {") {
		t.Error("script must define confirm()")
	}
	if !strings.Contains(script, "zeroclaw preset apply --dry-run") {
		t.Error("unconditional command should appear directly")
	}
	if !strings.Contains(script, "if confirm \"Run preset.apply (reasons: risky_pack)?\"; then") {
		t.Error("consent-gated command should be wrapped in a confirm block")
	}
}

func TestEmitOrchestrationScriptPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "script.sh")

	commands := []GeneratedNextCommand{
		NewGeneratedCommand("preset.apply", "apply", "zeroclaw preset apply", nil),
	}
	if err := EmitOrchestrationScript(path, "zeroclaw preset intent 'x'", commands); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("got perm %o, want 0755", info.Mode().Perm())
	}
}
