package consent

import "github.com/chumyin/zeroclaw/internal/presets"

// PresetIntentOrchestrationReport is the preset.intent_orchestration report
// payload: an intent plan plus prefilled follow-up commands.
type PresetIntentOrchestrationReport struct {
	Envelope
	Intent               string                           `json:"intent"`
	CapabilitySources    []string                         `json:"capability_sources"`
	Plan                 presets.IntentPlan               `json:"plan"`
	PlannedSelection     presets.WorkspacePresetSelection `json:"planned_selection"`
	RiskyPacks           []string                         `json:"risky_packs"`
	SecurityApplyCommand string                           `json:"security_apply_command"`
	NextCommands         []GeneratedNextCommand           `json:"next_commands"`
}

// BuildPresetIntentCommand renders the shell-escaped "preset intent"
// invocation for a generated next command.
func BuildPresetIntentCommand(text string, capabilitiesFiles []string, apply, dryRun, yesRisky, rebuild, yesRebuild bool) string {
	parts := []string{"zeroclaw", "preset", "intent", ShellQuote(text)}
	for _, f := range capabilitiesFiles {
		parts = append(parts, "--capabilities-file", ShellQuote(f))
	}
	if apply {
		parts = append(parts, "--apply")
	}
	if dryRun {
		parts = append(parts, "--dry-run")
	}
	if yesRisky {
		parts = append(parts, "--yes-risky")
	}
	if rebuild {
		parts = append(parts, "--rebuild")
	}
	if yesRebuild {
		parts = append(parts, "--yes-rebuild")
	}
	return BuildCommandLine(parts...)
}

// BuildSecurityApplyCommand renders the "security profile set" invocation,
// appending --yes-risk only when the recommendation requires explicit
// consent.
func BuildSecurityApplyCommand(profileID string, requiresExplicitConsent bool) string {
	if requiresExplicitConsent {
		return BuildCommandLine("zeroclaw", "security", "profile", "set", profileID, "--yes-risk")
	}
	return BuildCommandLine("zeroclaw", "security", "profile", "set", profileID)
}

// BuildPresetIntentOrchestrationReport assembles the full report: the plan,
// the planned selection, and a next_commands list covering a dry-run
// preview, the real apply, and the security profile follow-up.
func BuildPresetIntentOrchestrationReport(
	intent string,
	capabilitySources []string,
	plan presets.IntentPlan,
	plannedSelection presets.WorkspacePresetSelection,
	riskyPacks []string,
	securityProfileID string,
	securityRequiresConsent bool,
) PresetIntentOrchestrationReport {
	applyConsent := PresetApplyConsentReasons(riskyPacks, false, false, false, false)
	dryRunConsent := PresetApplyConsentReasons(riskyPacks, true, false, false, false)

	previewCmd := NewGeneratedCommand(
		"preset.apply_dry_run",
		"Preview applying the planned selection without writing it",
		BuildCommandLine("zeroclaw", "preset", "apply", "--preset", plannedSelection.PresetID, "--dry-run"),
		dryRunConsent,
	)
	applyCmd := NewGeneratedCommand(
		"preset.apply",
		"Apply the planned selection",
		BuildCommandLine("zeroclaw", "preset", "apply", "--preset", plannedSelection.PresetID),
		applyConsent,
	)
	securityCmd := NewGeneratedCommand(
		"security.profile_set",
		"Apply the recommended security profile",
		BuildSecurityApplyCommand(securityProfileID, securityRequiresConsent),
		func() []ConsentReasonCode {
			if securityRequiresConsent {
				return []ConsentReasonCode{ReasonSecurityNonStrict}
			}
			return nil
		}(),
	)

	return PresetIntentOrchestrationReport{
		Envelope:             Envelope{SchemaVersion: 1, ReportType: "preset.intent_orchestration"},
		Intent:               intent,
		CapabilitySources:    capabilitySources,
		Plan:                 plan,
		PlannedSelection:     plannedSelection,
		RiskyPacks:           riskyPacks,
		SecurityApplyCommand: BuildSecurityApplyCommand(securityProfileID, securityRequiresConsent),
		NextCommands:         []GeneratedNextCommand{previewCmd, applyCmd, securityCmd},
	}
}
