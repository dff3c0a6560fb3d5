package presets

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	. "github.com/chumyin/zeroclaw/internal/logging"
)

// DefaultBuildCommand is the builder invoked by RebuildPlan when the caller
// doesn't override it.
var DefaultBuildCommand = []string{"go", "build", "-o", "zeroclaw", "./cmd/zeroclaw"}

// RebuildPlan is the derived build invocation for a pack selection: which
// build tags the selection requires and where the module manifest lives.
type RebuildPlan struct {
	FeatureSet  []string `json:"feature_set"`
	ManifestDir string   `json:"manifest_dir"`
	Command     string   `json:"command"`
	Args        []string `json:"args"`
}

// RebuildFailedError reports a non-zero builder exit, with enough context
// to reproduce the failure by hand.
type RebuildFailedError struct {
	Command     string
	Args        []string
	ManifestDir string
	ExitCode    int
	Stderr      string
}

func (e *RebuildFailedError) Error() string {
	return fmt.Sprintf("rebuild failed (exit %d) running %q in %s: %s",
		e.ExitCode, append([]string{e.Command}, e.Args...), e.ManifestDir, e.Stderr)
}

// RebuildPlanForSelection derives a RebuildPlan: the feature set is the
// sorted union of every selected pack's BuildFeatures, and the manifest
// directory is found by walking upward from cwd looking for go.mod.
func RebuildPlanForSelection(selection WorkspacePresetSelection, cwd string) (RebuildPlan, error) {
	featureSet := map[string]bool{}
	for _, packID := range selection.Packs {
		pack, err := PackByID(packID)
		if err != nil {
			return RebuildPlan{}, err
		}
		for _, f := range pack.BuildFeatures {
			featureSet[f] = true
		}
	}
	features := make([]string, 0, len(featureSet))
	for f := range featureSet {
		features = append(features, f)
	}
	sort.Strings(features)

	manifestDir, err := findManifestDir(cwd)
	if err != nil {
		return RebuildPlan{}, err
	}

	command := DefaultBuildCommand[0]
	args := append([]string(nil), DefaultBuildCommand[1:]...)
	if len(features) > 0 {
		args = append(args, "-tags", joinComma(features))
	}

	return RebuildPlan{
		FeatureSet:  features,
		ManifestDir: manifestDir,
		Command:     command,
		Args:        args,
	}, nil
}

// findManifestDir walks upward from start looking for a directory
// containing go.mod, stopping at the filesystem root.
func findManifestDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve manifest search root: %w", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod found above %s", start)
		}
		dir = parent
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

// ExecuteRebuildPlan runs the builder synchronously in plan.ManifestDir.
// Callers on the dispatcher's event loop must offload this to a worker
// goroutine; it blocks for the lifetime of the build.
func ExecuteRebuildPlan(ctx context.Context, plan RebuildPlan) error {
	L_info("rebuild: starting", "command", plan.Command, "args", plan.Args, "dir", plan.ManifestDir)

	cmd := exec.CommandContext(ctx, plan.Command, plan.Args...) //nolint:gosec // G204: command/args come from the fixed DefaultBuildCommand plus sorted known feature tags, never raw user input
	cmd.Dir = plan.ManifestDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		L_error("rebuild: failed", "exit_code", exitCode, "output", string(output))
		return &RebuildFailedError{
			Command:     plan.Command,
			Args:        plan.Args,
			ManifestDir: plan.ManifestDir,
			ExitCode:    exitCode,
			Stderr:      string(output),
		}
	}

	L_info("rebuild: succeeded", "dir", plan.ManifestDir)
	return nil
}
