package security

import (
	"fmt"
	"strconv"

	"github.com/chumyin/zeroclaw/internal/config"
)

// RollbackCommand is always the same fixed command: resetting to strict is
// the one rollback path the fabric guarantees to always be safe.
const RollbackCommand = "zeroclaw security profile set strict"

// Snapshot is the JSON-shaped view of an AutonomyConfig used in change
// reports, carrying the derived fields (label, usd string, approval mode)
// alongside the raw ones.
type Snapshot struct {
	ProfileID                    string `json:"profile_id"`
	Label                        string `json:"label"`
	Level                        string `json:"level"`
	WorkspaceOnly                bool   `json:"workspace_only"`
	RequireApprovalForMediumRisk bool   `json:"require_approval_for_medium_risk"`
	BlockHighRiskCommands        bool   `json:"block_high_risk_commands"`
	AllowNonCliAutoApproval      bool   `json:"allow_non_cli_auto_approval"`
	NonCliApprovalMode           string `json:"non_cli_approval_mode"`
	MaxActionsPerHour            uint32 `json:"max_actions_per_hour"`
	MaxCostPerDayCents           uint32 `json:"max_cost_per_day_cents"`
	MaxCostPerDayUSD             string `json:"max_cost_per_day_usd"`
}

// BuildSnapshot renders an AutonomyConfig into its JSON-facing form.
// profileIDOverride, when non-empty, is used verbatim instead of
// re-deriving the id from the config (used for a target profile that was
// just computed from an id the caller already knows).
func BuildSnapshot(autonomy config.AutonomyConfig, profileIDOverride ProfileID) Snapshot {
	id := profileIDOverride
	if id == "" {
		id = ProfileIDFromAutonomy(autonomy)
	}
	return Snapshot{
		ProfileID:                    string(id),
		Label:                        Label(id),
		Level:                        autonomy.Level,
		WorkspaceOnly:                autonomy.WorkspaceOnly,
		RequireApprovalForMediumRisk: autonomy.RequireApprovalForMediumRisk,
		BlockHighRiskCommands:        autonomy.BlockHighRiskCommands,
		AllowNonCliAutoApproval:      autonomy.AllowNonCliAutoApproval,
		NonCliApprovalMode:           NonCliApprovalMode(autonomy.AllowNonCliAutoApproval),
		MaxActionsPerHour:            autonomy.MaxActionsPerHour,
		MaxCostPerDayCents:           autonomy.MaxCostPerDayCents,
		MaxCostPerDayUSD:             CentsToUSDString(autonomy.MaxCostPerDayCents),
	}
}

// SummaryLines renders the three-line human summary of an autonomy snapshot
// printed by `security profile show`: profile label, guardrail booleans,
// and the two numeric limits with cents rendered as a dollar string.
func SummaryLines(snapshot Snapshot) []string {
	return []string{
		fmt.Sprintf("Security profile: %s", snapshot.Label),
		fmt.Sprintf("Guardrails: workspace_only=%t, medium_approval=%t, high_risk_block=%t, non_cli_approval=%s",
			snapshot.WorkspaceOnly, snapshot.RequireApprovalForMediumRisk, snapshot.BlockHighRiskCommands, snapshot.NonCliApprovalMode),
		fmt.Sprintf("Limits: max_actions_per_hour=%d, max_cost_per_day=$%s",
			snapshot.MaxActionsPerHour, snapshot.MaxCostPerDayUSD),
	}
}

// FieldChange is one changed field in a ChangeReport's delta.
type FieldChange struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// ChangeReport is the full payload for `security profile set`, printed as
// JSON in machine mode or as a human summary otherwise.
type ChangeReport struct {
	Current                     Snapshot      `json:"current"`
	Target                      Snapshot      `json:"target"`
	Changes                     []FieldChange `json:"changes"`
	RequiresExplicitRiskConsent bool          `json:"requires_explicit_risk_consent"`
	RiskConsentReasons          []string      `json:"risk_consent_reasons,omitempty"`
	DryRun                      bool          `json:"dry_run"`
	RollbackCommand             string        `json:"rollback_command"`
}

// BuildChangeReport computes the field-level delta between the current and
// target AutonomyConfig. allow_non_cli_auto_approval and
// max_cost_per_day_cents each pair with a derived field
// (non_cli_approval_mode, max_cost_per_day_usd) that always changes
// alongside them.
func BuildChangeReport(current, target config.AutonomyConfig, targetProfileID ProfileID, riskReasons []string, dryRun bool) ChangeReport {
	currentSnap := BuildSnapshot(current, "")
	targetSnap := BuildSnapshot(target, targetProfileID)

	var changes []FieldChange
	addIfDiff := func(field, from, to string) {
		if from != to {
			changes = append(changes, FieldChange{Field: field, From: from, To: to})
		}
	}

	addIfDiff("profile_id", currentSnap.ProfileID, targetSnap.ProfileID)
	addIfDiff("level", currentSnap.Level, targetSnap.Level)
	addIfDiff("workspace_only", strconv.FormatBool(current.WorkspaceOnly), strconv.FormatBool(target.WorkspaceOnly))
	addIfDiff("require_approval_for_medium_risk",
		strconv.FormatBool(current.RequireApprovalForMediumRisk), strconv.FormatBool(target.RequireApprovalForMediumRisk))
	addIfDiff("block_high_risk_commands",
		strconv.FormatBool(current.BlockHighRiskCommands), strconv.FormatBool(target.BlockHighRiskCommands))

	if current.AllowNonCliAutoApproval != target.AllowNonCliAutoApproval {
		addIfDiff("allow_non_cli_auto_approval",
			strconv.FormatBool(current.AllowNonCliAutoApproval), strconv.FormatBool(target.AllowNonCliAutoApproval))
		addIfDiff("non_cli_approval_mode", currentSnap.NonCliApprovalMode, targetSnap.NonCliApprovalMode)
	}

	addIfDiff("max_actions_per_hour",
		fmt.Sprintf("%d", current.MaxActionsPerHour), fmt.Sprintf("%d", target.MaxActionsPerHour))

	if current.MaxCostPerDayCents != target.MaxCostPerDayCents {
		addIfDiff("max_cost_per_day_cents",
			fmt.Sprintf("%d", current.MaxCostPerDayCents), fmt.Sprintf("%d", target.MaxCostPerDayCents))
		addIfDiff("max_cost_per_day_usd", currentSnap.MaxCostPerDayUSD, targetSnap.MaxCostPerDayUSD)
	}

	return ChangeReport{
		Current:                     currentSnap,
		Target:                      targetSnap,
		Changes:                     changes,
		RequiresExplicitRiskConsent: riskReasons != nil && len(riskReasons) > 0,
		RiskConsentReasons:          riskReasons,
		DryRun:                      dryRun,
		RollbackCommand:             RollbackCommand,
	}
}
