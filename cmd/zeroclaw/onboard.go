package main

import (
	"fmt"
	"os"

	"github.com/chumyin/zeroclaw/internal/config"
	"github.com/chumyin/zeroclaw/internal/consent"
	"github.com/chumyin/zeroclaw/internal/presets"
	"github.com/chumyin/zeroclaw/internal/security"
)

// OnboardCmd runs quick setup by default. --interactive prompts on stdin for
// the preset and security profile and then runs quick setup with the answers;
// --channels-only is accepted for CLI-surface compatibility and always fails,
// since this build has no channel subsystem to repair.
type OnboardCmd struct {
	Interactive     bool     `help:"Prompt for the preset and security profile, then run quick setup"`
	ChannelsOnly    bool     `name:"channels-only" help:"Repair channel configuration only (not supported by this build)"`
	Intent          string   `help:"Free-text description of the intended capability"`
	Preset          string   `help:"Base preset id to apply"`
	Pack            []string `help:"Pack id to add (repeatable)"`
	SecurityProfile string   `name:"security-profile" default:"strict" help:"Security profile id for quick onboarding"`
	YesSecurityRisk bool     `name:"yes-security-risk" help:"Acknowledge a non-strict profile or risky pack selection"`
	DryRun          bool     `help:"Preview without writing"`
	JSON            bool     `help:"Emit a machine-readable report (requires --dry-run)"`
	Rebuild         bool     `help:"Trigger a rebuild after onboarding"`
	YesRebuild      bool     `name:"yes-rebuild" help:"Acknowledge the rebuild"`
	Force           bool     `help:"Overwrite an existing config"`
}

// onboardQuickDryRunReport is the onboard.quick_dry_run payload.
type onboardQuickDryRunReport struct {
	consent.Envelope
	Mode              string                            `json:"mode"`
	Intent            string                            `json:"intent,omitempty"`
	Selection         presets.WorkspacePresetSelection `json:"selection"`
	RiskyPacks        []string                          `json:"risky_packs,omitempty"`
	SecurityProfile   string                            `json:"security_profile"`
	ConsentReasons    []string                          `json:"consent_reasons,omitempty"`
	ConsentReasonKeys []string                          `json:"consent_reason_keys,omitempty"`
	Rebuild           *presets.RebuildPlan              `json:"rebuild,omitempty"`
}

func (c *OnboardCmd) Run(ctx *Context) error {
	if c.Interactive && c.ChannelsOnly {
		return fmt.Errorf("use either --interactive or --channels-only, not both")
	}
	if c.ChannelsOnly {
		if c.Preset != "" || len(c.Pack) > 0 || c.Intent != "" || c.Force {
			return fmt.Errorf("--channels-only does not accept --preset, --pack, --intent, or --force")
		}
		return fmt.Errorf("--channels-only has no channel subsystem to repair in this build")
	}
	if c.Interactive {
		return c.runInteractive(ctx)
	}
	return c.runQuick(ctx)
}

func (c *OnboardCmd) runQuick(ctx *Context) error {
	if err := requireDryRunForJSON("onboard", c.JSON, c.DryRun); err != nil {
		return err
	}

	existingLoad, err := config.Load()
	if err != nil {
		return err
	}
	if !existingLoad.Bootstrapped && !c.Force && !c.DryRun {
		return fmt.Errorf("onboard found an existing config at %s; pass --force to overwrite", existingLoad.SourcePath)
	}

	base, err := presets.DefaultSelection()
	if err != nil {
		return err
	}
	if c.Preset != "" {
		base, err = presets.FromPresetID(c.Preset)
		if err != nil {
			return err
		}
	}

	selection := base
	if len(c.Pack) > 0 {
		selection, err = presets.ComposeSelection(base, c.Pack, nil)
		if err != nil {
			return err
		}
	}

	if c.Intent != "" {
		resolved, err := presets.ResolveIntentCapabilities(nil)
		if err != nil {
			return err
		}
		plan := presets.PlanFromIntentWithRules(c.Intent, &selection, resolved.Rules)
		selection, err = presets.SelectionFromPlan(plan, &selection)
		if err != nil {
			return err
		}
	}

	riskyPacks := presets.RiskyPackIDs(selection)

	profileID := security.ProfileID(c.SecurityProfile)
	if !profileID.Valid() {
		return fmt.Errorf("unknown security profile id %q", c.SecurityProfile)
	}
	autonomy, err := security.AutonomyConfigForProfileID(profileID)
	if err != nil {
		return err
	}

	var reasons []consent.ConsentReasonCode
	if len(riskyPacks) > 0 {
		reasons = append(reasons, consent.ReasonRiskyPack)
	}
	if c.Rebuild {
		reasons = append(reasons, consent.ReasonRebuild)
	}
	riskReasons := consent.SecurityApplyConsentReasons(profileID.IsNonStrict())

	reasonKeys := consent.ReasonKeys(reasons)
	reasonKeys = append(reasonKeys, consent.RiskReasonKeys(riskReasons)...)

	var rebuildPlan *presets.RebuildPlan
	if c.Rebuild {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		plan, err := presets.RebuildPlanForSelection(selection, cwd)
		if err != nil {
			return err
		}
		rebuildPlan = &plan
	}

	if len(reasonKeys) > 0 && !c.DryRun && !c.YesSecurityRisk {
		return fmt.Errorf("onboard requires explicit consent: %v", reasonKeys)
	}

	if c.DryRun {
		report := onboardQuickDryRunReport{
			Envelope:          consent.Envelope{SchemaVersion: 1, ReportType: "onboard.quick_dry_run"},
			Mode:              "quick_dry_run",
			Intent:            c.Intent,
			Selection:         selection,
			RiskyPacks:        riskyPacks,
			SecurityProfile:   string(profileID),
			ConsentReasons:    append(stringifyReasons(reasons), stringifyRiskReasons(riskReasons)...),
			ConsentReasonKeys: reasonKeys,
			Rebuild:           rebuildPlan,
		}
		if c.JSON {
			return emitJSON(report)
		}
		emitHuman([]string{
			fmt.Sprintf("would onboard with preset %q, security profile %q", selection.PresetID, profileID),
			fmt.Sprintf("packs: %v", selection.Packs),
		})
		return nil
	}

	cfg := existingLoad.Config
	cfg.Autonomy = autonomy
	if err := cfg.Save(); err != nil {
		return err
	}
	if err := presets.SaveWorkspaceSelection(selection); err != nil {
		return err
	}
	presets.PublishSelectionChange(ctx.Bus, "selection.applied", selection)
	emitHuman([]string{
		fmt.Sprintf("onboarded with preset %q, security profile %q", selection.PresetID, security.Label(profileID)),
	})

	if c.Rebuild {
		if err := presets.ExecuteRebuildPlan(ctxBackground(), *rebuildPlan); err != nil {
			return err
		}
		presets.PublishSelectionChange(ctx.Bus, "selection.rebuilt", selection)
		emitHuman([]string{"rebuild succeeded"})
	}

	if os.Getenv("ZEROCLAW_AUTOSTART_CHANNELS") == "1" {
		emitHuman([]string{"ZEROCLAW_AUTOSTART_CHANNELS=1 set, but this build has no channel collaborator to start"})
	}
	return nil
}

// runInteractive draws no UI; it asks the same quick-setup questions over
// stdin/stderr that a form-based wizard would.
func (c *OnboardCmd) runInteractive(ctx *Context) error {
	if c.DryRun || c.JSON {
		return fmt.Errorf("--interactive does not accept --dry-run or --json")
	}

	preset, err := readLine(fmt.Sprintf("preset [%s]: ", presets.DefaultPresetID))
	if err != nil {
		return err
	}
	if preset != "" {
		c.Preset = preset
	}

	profile, err := readLine("security profile [strict]: ")
	if err != nil {
		return err
	}
	if profile != "" {
		c.SecurityProfile = profile
	}

	c.YesSecurityRisk = true
	return c.runQuick(ctx)
}

func stringifyRiskReasons(reasons []consent.SecurityRiskConsentReasonCode) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}
