package main

import (
	"fmt"

	"github.com/chumyin/zeroclaw/internal/config"
	"github.com/chumyin/zeroclaw/internal/consent"
	"github.com/chumyin/zeroclaw/internal/presets"
	"github.com/chumyin/zeroclaw/internal/security"
)

// SecurityCmd groups every `security *` subcommand. Show is duplicated at
// this level as a shorthand for `security profile show`.
type SecurityCmd struct {
	Profile SecurityProfileCmd     `cmd:"profile" help:"Manage the autonomy/security profile"`
	Show    SecurityProfileShowCmd `cmd:"show" help:"Show the current security profile (shorthand for security profile show)"`
}

type SecurityProfileCmd struct {
	Set       SecurityProfileSetCmd       `cmd:"set" help:"Apply a security profile"`
	Recommend SecurityProfileRecommendCmd `cmd:"recommend" help:"Recommend a security profile from intent and packs"`
	Show      SecurityProfileShowCmd      `cmd:"show" help:"Print the current security profile summary"`
}

// SecurityProfileShowCmd prints the current autonomy config's profile
// summary: label, guardrail booleans, and spend/rate limits.
type SecurityProfileShowCmd struct {
	JSON bool `help:"Emit a machine-readable snapshot"`
}

func (c *SecurityProfileShowCmd) Run(ctx *Context) error {
	loadResult, err := config.Load()
	if err != nil {
		return err
	}
	snapshot := security.BuildSnapshot(loadResult.Config.Autonomy, "")
	if c.JSON {
		return emitJSON(snapshot)
	}
	emitHuman(security.SummaryLines(snapshot))
	return nil
}

type SecurityProfileSetCmd struct {
	Level            string `arg:"" help:"Profile id: strict, balanced, flexible, or full"`
	NonCliApproval   string `name:"non-cli-approval" enum:",manual,auto" help:"Override the non-CLI auto-approval mode"`
	DryRun           bool   `help:"Preview without writing"`
	YesRisk          bool   `name:"yes-risk" help:"Acknowledge a non-strict profile change"`
	JSON             bool   `help:"Emit a machine-readable report (requires --dry-run)"`
	ExportDiff       string `name:"export-diff" help:"Write the change report to a file regardless of --json"`
}

func (c *SecurityProfileSetCmd) Run(ctx *Context) error {
	if err := requireDryRunForJSON("security profile set", c.JSON, c.DryRun); err != nil {
		return err
	}

	targetID := security.ProfileID(c.Level)
	if !targetID.Valid() {
		return fmt.Errorf("unknown security profile id %q", c.Level)
	}

	loadResult, err := config.Load()
	if err != nil {
		return err
	}
	currentAutonomy := loadResult.Config.Autonomy

	target, err := security.AutonomyConfigForProfileID(targetID)
	if err != nil {
		return err
	}
	if c.NonCliApproval != "" {
		target.AllowNonCliAutoApproval = c.NonCliApproval == "auto"
	}

	var riskReasons []string
	if targetID.IsNonStrict() {
		riskReasons = append(riskReasons, "target profile relaxes autonomy below strict")
	}
	riskCodes := consent.SecurityApplyConsentReasons(targetID.IsNonStrict())

	report := security.BuildChangeReport(currentAutonomy, target, targetID, consent.RiskReasonKeys(riskCodes), c.DryRun)

	if c.ExportDiff != "" {
		if err := writeJSONFile(c.ExportDiff, report); err != nil {
			return err
		}
	}

	if len(riskCodes) > 0 && !c.DryRun && !c.YesRisk {
		return fmt.Errorf("security profile set requires explicit consent: %v", consent.RiskReasonKeys(riskCodes))
	}

	if c.DryRun {
		if c.JSON {
			return emitJSON(report)
		}
		emitHuman(renderChangeReport(report))
		return nil
	}

	loadResult.Config.Autonomy = target
	if err := loadResult.Config.Save(); err != nil {
		return err
	}
	emitHuman([]string{fmt.Sprintf("security profile set to %s", security.Label(targetID))})
	return nil
}

func renderChangeReport(report security.ChangeReport) []string {
	lines := []string{fmt.Sprintf("%s -> %s", report.Current.Label, report.Target.Label)}
	for _, change := range report.Changes {
		lines = append(lines, fmt.Sprintf("  %-32s %s -> %s", change.Field, change.From, change.To))
	}
	if report.RequiresExplicitRiskConsent {
		lines = append(lines, fmt.Sprintf("requires explicit consent: %v", report.RiskConsentReasons))
	}
	lines = append(lines, "rollback: "+report.RollbackCommand)
	return lines
}

type SecurityProfileRecommendCmd struct {
	Text             string   `arg:"" optional:"" help:"Free-text description of the intended capability"`
	CapabilitiesFile []string `name:"capabilities-file" help:"External capability rules file (repeatable)"`
	FromPreset       string   `name:"from-preset" help:"Base preset id instead of the workspace's current selection"`
	Pack             []string `help:"Pack id to add for recommendation purposes (repeatable)"`
	RemovePack       []string `name:"remove-pack" help:"Pack id to remove for recommendation purposes (repeatable)"`
	JSON             bool     `help:"Emit a machine-readable report"`
}

type recommendationReport struct {
	consent.Envelope
	security.Recommendation
	RiskConsentReasonKeys []string `json:"risk_consent_reason_keys,omitempty"`
}

func (c *SecurityProfileRecommendCmd) Run(ctx *Context) error {
	base, err := presets.LoadWorkspaceSelection()
	if err != nil {
		return err
	}
	if c.FromPreset != "" {
		base, err = presets.FromPresetID(c.FromPreset)
		if err != nil {
			return err
		}
	}

	var selection presets.WorkspacePresetSelection
	if len(c.Pack) > 0 || len(c.RemovePack) > 0 {
		selection, err = presets.ComposeSelection(base, c.Pack, c.RemovePack)
		if err != nil {
			return err
		}
	} else {
		selection = base
	}

	var intentPtr *string
	if c.Text != "" {
		intentPtr = &c.Text
	}

	recommendation := security.RecommendSecurityProfile(intentPtr, selection.Packs)
	riskCodes := consent.SecurityApplyConsentReasons(recommendation.RequiresExplicitConsent)

	report := recommendationReport{
		Envelope:              consent.Envelope{SchemaVersion: 1, ReportType: "security.profile_recommendation"},
		Recommendation:        recommendation,
		RiskConsentReasonKeys: consent.RiskReasonKeys(riskCodes),
	}

	if c.JSON {
		return emitJSON(report)
	}
	emitHuman([]string{
		fmt.Sprintf("recommended profile: %s (%s risk)", recommendation.Label, recommendation.RiskTier),
		fmt.Sprintf("reasons: %v", recommendation.Reasons),
	})
	return nil
}
