package main

import (
	"fmt"
	"os"

	"github.com/chumyin/zeroclaw/internal/consent"
	"github.com/chumyin/zeroclaw/internal/presets"
	"github.com/chumyin/zeroclaw/internal/security"
)

// PresetCmd groups every `preset *` subcommand.
type PresetCmd struct {
	List     PresetListCmd     `cmd:"list" help:"List every available preset"`
	Show     PresetShowCmd     `cmd:"show" help:"Show one preset's packs and description"`
	Current  PresetCurrentCmd  `cmd:"current" help:"Show the workspace's current selection"`
	Apply    PresetApplyCmd    `cmd:"apply" help:"Apply a preset and/or pack changes to the workspace"`
	Intent   PresetIntentCmd   `cmd:"intent" help:"Derive a pack selection from free-text intent"`
	Export   PresetExportCmd   `cmd:"export" help:"Export the current or a named preset to a payload file"`
	Import   PresetImportCmd   `cmd:"import" help:"Import a preset payload file into the workspace"`
	Validate PresetValidateCmd `cmd:"validate" help:"Validate one or more preset payload files"`
}

type PresetListCmd struct{}

func (c *PresetListCmd) Run(ctx *Context) error {
	for _, p := range presets.ListPresets() {
		fmt.Printf("%-12s %s\n", p.ID, p.Description)
	}
	return nil
}

type PresetShowCmd struct {
	ID string `arg:"" help:"Preset id"`
}

func (c *PresetShowCmd) Run(ctx *Context) error {
	preset, err := presets.PresetByID(c.ID)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", preset.ID, preset.Description)
	fmt.Println("packs:")
	for _, packID := range preset.Packs {
		pack, err := presets.PackByID(packID)
		if err != nil {
			return err
		}
		risky := ""
		if pack.RequiresConfirmation {
			risky = " (requires confirmation)"
		}
		fmt.Printf("  %-16s %s%s\n", pack.ID, pack.Description, risky)
	}
	return nil
}

type PresetCurrentCmd struct{}

func (c *PresetCurrentCmd) Run(ctx *Context) error {
	selection, err := presets.LoadWorkspaceSelection()
	if err != nil {
		return err
	}
	fmt.Printf("preset: %s\n", selection.PresetID)
	fmt.Printf("packs:  %v\n", selection.Packs)
	if len(selection.AddedPacks) > 0 {
		fmt.Printf("added:  %v\n", selection.AddedPacks)
	}
	return nil
}

type PresetApplyCmd struct {
	Preset     string   `help:"Base preset id to apply"`
	Pack       []string `help:"Pack id to add (repeatable)"`
	RemovePack []string `help:"Pack id to remove (repeatable)"`
	DryRun     bool     `help:"Preview without writing"`
	YesRisky   bool     `name:"yes-risky" help:"Acknowledge risky packs in the resulting selection"`
	Rebuild    bool     `help:"Trigger a rebuild after applying"`
	YesRebuild bool     `name:"yes-rebuild" help:"Acknowledge the rebuild"`
	JSON       bool     `help:"Emit a machine-readable report (requires --dry-run)"`
}

// applyDryRunReport is the preset.apply_dry_run payload.
type applyDryRunReport struct {
	consent.Envelope
	Selection         presets.WorkspacePresetSelection `json:"selection"`
	Diff              presets.SelectionDiff            `json:"diff"`
	RiskyPacks        []string                          `json:"risky_packs"`
	ConsentReasons    []string                          `json:"consent_reasons,omitempty"`
	ConsentReasonKeys []string                          `json:"consent_reason_keys,omitempty"`
	Rebuild           *presets.RebuildPlan              `json:"rebuild,omitempty"`
}

func (c *PresetApplyCmd) Run(ctx *Context) error {
	if err := requireDryRunForJSON("preset apply", c.JSON, c.DryRun); err != nil {
		return err
	}

	current, err := presets.LoadWorkspaceSelection()
	if err != nil {
		return err
	}

	base := current
	if c.Preset != "" {
		base, err = presets.FromPresetID(c.Preset)
		if err != nil {
			return err
		}
	}

	next, err := presets.ComposeSelection(base, c.Pack, c.RemovePack)
	if err != nil {
		return err
	}

	risky := presets.RiskyPackIDs(next)
	reasons := consent.PresetApplyConsentReasons(risky, c.DryRun, c.YesRisky, c.Rebuild, c.YesRebuild)

	var rebuildPlan *presets.RebuildPlan
	if c.Rebuild {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		plan, err := presets.RebuildPlanForSelection(next, cwd)
		if err != nil {
			return err
		}
		rebuildPlan = &plan
	}

	if len(reasons) > 0 && !c.DryRun {
		return fmt.Errorf("preset apply requires explicit consent: %v", consent.ReasonKeys(reasons))
	}

	diff := presets.SelectionDiffOf(&current, next)

	if c.DryRun {
		report := applyDryRunReport{
			Envelope:          consent.Envelope{SchemaVersion: 1, ReportType: "preset.apply_dry_run"},
			Selection:         next,
			Diff:              diff,
			RiskyPacks:        risky,
			ConsentReasons:    stringifyReasons(reasons),
			ConsentReasonKeys: consent.ReasonKeys(reasons),
			Rebuild:           rebuildPlan,
		}
		if c.JSON {
			return emitJSON(report)
		}
		emitHuman([]string{
			fmt.Sprintf("would apply preset %q", next.PresetID),
			fmt.Sprintf("added packs:   %v", diff.AddedPacks),
			fmt.Sprintf("removed packs: %v", diff.RemovedPacks),
		})
		return nil
	}

	if err := presets.SaveWorkspaceSelection(next); err != nil {
		return err
	}
	presets.PublishSelectionChange(ctx.Bus, "selection.applied", next)
	emitHuman([]string{fmt.Sprintf("applied preset %q", next.PresetID)})

	if c.Rebuild {
		if err := presets.ExecuteRebuildPlan(ctxBackground(), *rebuildPlan); err != nil {
			return err
		}
		presets.PublishSelectionChange(ctx.Bus, "selection.rebuilt", next)
		emitHuman([]string{"rebuild succeeded"})
	}
	return nil
}

type PresetIntentCmd struct {
	Text             string   `arg:"" help:"Free-text description of the intended capability"`
	CapabilitiesFile []string `name:"capabilities-file" help:"External capability rules file (repeatable)"`
	Apply            bool     `help:"Apply the planned selection immediately"`
	DryRun           bool     `help:"Preview without writing"`
	YesRisky         bool     `name:"yes-risky" help:"Acknowledge risky packs"`
	Rebuild          bool     `help:"Trigger a rebuild after applying"`
	YesRebuild       bool     `name:"yes-rebuild" help:"Acknowledge the rebuild"`
	JSON             bool     `help:"Emit a machine-readable report"`
	EmitShell        string   `name:"emit-shell" help:"Write the generated next-commands as a Bash script"`
}

func (c *PresetIntentCmd) Run(ctx *Context) error {
	if c.Apply {
		if err := requireDryRunForJSON("preset intent --apply", c.JSON, c.DryRun); err != nil {
			return err
		}
	}

	current, err := presets.LoadWorkspaceSelection()
	if err != nil {
		return err
	}

	resolved, err := presets.ResolveIntentCapabilities(c.CapabilitiesFile)
	if err != nil {
		return err
	}

	plan := presets.PlanFromIntentWithRules(c.Text, &current, resolved.Rules)
	planned, err := presets.SelectionFromPlan(plan, &current)
	if err != nil {
		return err
	}
	risky := presets.RiskyPackIDs(planned)

	recommendation := security.RecommendSecurityProfile(&c.Text, planned.Packs)
	report := consent.BuildPresetIntentOrchestrationReport(
		c.Text, resolved.Sources, plan, planned, risky,
		string(recommendation.ProfileID), recommendation.RequiresExplicitConsent,
	)

	if c.EmitShell != "" {
		if err := consent.EmitOrchestrationScript(c.EmitShell, "preset intent", report.NextCommands); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote orchestration script to %s\n", c.EmitShell)
	}

	if c.JSON {
		if err := emitJSON(report); err != nil {
			return err
		}
	} else {
		emitHuman([]string{
			fmt.Sprintf("planned preset: %s (confidence %.2f)", planned.PresetID, plan.Confidence),
			fmt.Sprintf("add packs:      %v", plan.AddPacks),
			fmt.Sprintf("remove packs:   %v", plan.RemovePacks),
		})
	}

	if !c.Apply {
		return nil
	}

	reasons := consent.PresetApplyConsentReasons(risky, c.DryRun, c.YesRisky, c.Rebuild, c.YesRebuild)
	if len(reasons) > 0 && !c.DryRun {
		return fmt.Errorf("preset intent --apply requires explicit consent: %v", consent.ReasonKeys(reasons))
	}
	if c.DryRun {
		return nil
	}
	if err := presets.SaveWorkspaceSelection(planned); err != nil {
		return err
	}
	presets.PublishSelectionChange(ctx.Bus, "selection.applied", planned)
	if c.Rebuild {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		rebuildPlan, err := presets.RebuildPlanForSelection(planned, cwd)
		if err != nil {
			return err
		}
		if err := presets.ExecuteRebuildPlan(ctxBackground(), rebuildPlan); err != nil {
			return err
		}
		presets.PublishSelectionChange(ctx.Bus, "selection.rebuilt", planned)
	}
	return nil
}

type PresetExportCmd struct {
	Path   string `arg:"" help:"Destination file path"`
	Preset string `help:"Preset id to export (defaults to the workspace's current selection)"`
	JSON   bool   `help:"Emit a machine-readable report"`
}

type exportReport struct {
	consent.Envelope
	SourceKind       string `json:"source_kind"`
	RequestedPreset  string `json:"requested_preset,omitempty"`
	PayloadSHA256    string `json:"payload_sha256"`
	BytesWritten     int    `json:"bytes_written"`
	Path             string `json:"path"`
}

func (c *PresetExportCmd) Run(ctx *Context) error {
	var selection presets.WorkspacePresetSelection
	sourceKind := "workspace_selection"
	if c.Preset != "" {
		preset, err := presets.FromPresetID(c.Preset)
		if err != nil {
			return err
		}
		selection = preset
		sourceKind = "official_preset"
	} else {
		loaded, err := presets.LoadWorkspaceSelection()
		if err != nil {
			return err
		}
		selection = loaded
	}

	doc := presets.SelectionToDocument(selection)
	result, err := presets.ExportDocumentToPath(c.Path, doc)
	if err != nil {
		return err
	}

	report := exportReport{
		Envelope:        consent.Envelope{SchemaVersion: 1, ReportType: "preset.export"},
		SourceKind:      sourceKind,
		RequestedPreset: c.Preset,
		PayloadSHA256:   result.PayloadSHA256,
		BytesWritten:    result.BytesWritten,
		Path:            c.Path,
	}
	if c.JSON {
		return emitJSON(report)
	}
	emitHuman([]string{fmt.Sprintf("exported %s to %s (sha256 %s)", sourceKind, c.Path, result.PayloadSHA256)})
	return nil
}

type PresetImportCmd struct {
	Path       string `arg:"" help:"Preset payload file path"`
	Mode       string `enum:"overwrite,merge,fill" default:"overwrite" help:"Import mode"`
	DryRun     bool   `help:"Preview without writing"`
	YesRisky   bool   `name:"yes-risky" help:"Acknowledge risky packs"`
	Rebuild    bool   `help:"Trigger a rebuild after importing"`
	YesRebuild bool   `name:"yes-rebuild" help:"Acknowledge the rebuild"`
	JSON       bool   `help:"Emit a machine-readable report (requires --dry-run)"`
}

type importDryRunReport struct {
	consent.Envelope
	Selection         presets.WorkspacePresetSelection `json:"selection"`
	Diff              presets.SelectionDiff            `json:"diff"`
	RiskyPacks        []string                          `json:"risky_packs"`
	ConsentReasons    []string                          `json:"consent_reasons,omitempty"`
	ConsentReasonKeys []string                          `json:"consent_reason_keys,omitempty"`
}

func (c *PresetImportCmd) Run(ctx *Context) error {
	if err := requireDryRunForJSON("preset import", c.JSON, c.DryRun); err != nil {
		return err
	}

	current, err := presets.LoadWorkspaceSelection()
	if err != nil {
		return err
	}

	imported, err := presets.ImportSelectionFromPath(c.Path, presets.ImportMode(c.Mode), &current)
	if err != nil {
		return err
	}

	risky := presets.RiskyPackIDs(imported)
	reasons := consent.PresetApplyConsentReasons(risky, c.DryRun, c.YesRisky, c.Rebuild, c.YesRebuild)
	if len(reasons) > 0 && !c.DryRun {
		return fmt.Errorf("preset import requires explicit consent: %v", consent.ReasonKeys(reasons))
	}

	diff := presets.SelectionDiffOf(&current, imported)

	if c.DryRun {
		report := importDryRunReport{
			Envelope:          consent.Envelope{SchemaVersion: 1, ReportType: "preset.import_dry_run"},
			Selection:         imported,
			Diff:              diff,
			RiskyPacks:        risky,
			ConsentReasons:    stringifyReasons(reasons),
			ConsentReasonKeys: consent.ReasonKeys(reasons),
		}
		if c.JSON {
			return emitJSON(report)
		}
		emitHuman([]string{fmt.Sprintf("would import %q (mode %s)", imported.PresetID, c.Mode)})
		return nil
	}

	if err := presets.SaveWorkspaceSelection(imported); err != nil {
		return err
	}
	presets.PublishSelectionChange(ctx.Bus, "selection.applied", imported)
	emitHuman([]string{fmt.Sprintf("imported %q (mode %s)", imported.PresetID, c.Mode)})

	if c.Rebuild {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		plan, err := presets.RebuildPlanForSelection(imported, cwd)
		if err != nil {
			return err
		}
		if err := presets.ExecuteRebuildPlan(ctxBackground(), plan); err != nil {
			return err
		}
		presets.PublishSelectionChange(ctx.Bus, "selection.rebuilt", imported)
	}
	return nil
}

type PresetValidateCmd struct {
	Paths             []string `arg:"" help:"Preset payload files to validate"`
	AllowUnknownPacks bool     `name:"allow-unknown-packs" help:"Do not fail on unrecognized pack ids"`
	JSON              bool     `help:"Emit a machine-readable report"`
}

func (c *PresetValidateCmd) Run(ctx *Context) error {
	report := presets.ValidatePresetPaths(c.Paths, c.AllowUnknownPacks)
	if c.JSON {
		if err := emitJSON(report); err != nil {
			return err
		}
	} else {
		for _, file := range report.Files {
			status := "ok"
			if !file.OK {
				status = "FAILED"
			}
			fmt.Printf("%-40s %s\n", file.Path, status)
			for _, e := range file.Errors {
				fmt.Printf("  - %s\n", e)
			}
		}
	}
	if report.FilesFailed > 0 {
		return fmt.Errorf("validation failed for %d of %d files", report.FilesFailed, report.FilesChecked)
	}
	return nil
}

func stringifyReasons(reasons []consent.ConsentReasonCode) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}
