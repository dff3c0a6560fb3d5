package consent

import (
	"strings"
	"testing"

	"github.com/chumyin/zeroclaw/internal/presets"
)

func TestBuildPresetIntentCommand(t *testing.T) {
	cmd := BuildPresetIntentCommand("do automation stuff", []string{"/tmp/rules.json"}, true, false, true, true, false)
	if !strings.HasPrefix(cmd, "zeroclaw preset intent 'do automation stuff'") {
		t.Errorf("got %q", cmd)
	}
	for _, want := range []string{"--capabilities-file '/tmp/rules.json'", "--apply", "--yes-risky", "--rebuild"} {
		if !strings.Contains(cmd, want) {
			t.Errorf("expected %q in command %q", want, cmd)
		}
	}
	if strings.Contains(cmd, "--dry-run") || strings.Contains(cmd, "--yes-rebuild") {
		t.Errorf("unset flags should be absent: %q", cmd)
	}
}

func TestBuildSecurityApplyCommand(t *testing.T) {
	withConsent := BuildSecurityApplyCommand("flexible", true)
	if !strings.HasSuffix(withConsent, "--yes-risk") {
		t.Errorf("got %q, expected trailing --yes-risk", withConsent)
	}
	without := BuildSecurityApplyCommand("strict", false)
	if strings.Contains(without, "--yes-risk") {
		t.Errorf("got %q, should not include --yes-risk", without)
	}
}

func TestBuildPresetIntentOrchestrationReport(t *testing.T) {
	plan := presets.IntentPlan{Intent: "automate browser scraping"}
	selection, _ := presets.FromPresetID("automation")

	report := BuildPresetIntentOrchestrationReport(
		"automate browser scraping",
		[]string{"builtin"},
		plan,
		selection,
		[]string{"workspace-exec"},
		"balanced",
		true,
	)

	if report.ReportType != "preset.intent_orchestration" {
		t.Errorf("got report_type %q", report.ReportType)
	}
	if report.SchemaVersion != 1 {
		t.Errorf("got schema_version %d", report.SchemaVersion)
	}
	if len(report.NextCommands) != 3 {
		t.Fatalf("got %d next_commands, want 3", len(report.NextCommands))
	}

	var applyCmd *GeneratedNextCommand
	for i := range report.NextCommands {
		if report.NextCommands[i].ID == "preset.apply" {
			applyCmd = &report.NextCommands[i]
		}
	}
	if applyCmd == nil {
		t.Fatal("expected a preset.apply entry")
	}
	if !applyCmd.RequiresExplicitConsent {
		t.Error("preset.apply should require consent given a risky pack")
	}
	if len(applyCmd.ConsentReasonKeys) == 0 {
		t.Error("consent-gated entries must carry non-empty consent_reason_keys")
	}
}

func TestBuildPresetIntentOrchestrationReportNoRisk(t *testing.T) {
	plan := presets.IntentPlan{Intent: "read files"}
	selection, _ := presets.FromPresetID("minimal")

	report := BuildPresetIntentOrchestrationReport("read files", []string{"builtin"}, plan, selection, nil, "strict", false)

	for _, cmd := range report.NextCommands {
		if cmd.ID == "preset.apply" && cmd.RequiresExplicitConsent {
			t.Error("preset.apply should not require consent with no risky packs")
		}
	}
}
