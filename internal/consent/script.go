package consent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chumyin/zeroclaw/internal/sandbox"
)

const scriptHeader = `#!/usr/bin/env bash
set -euo pipefail

`

const confirmFunction = `confirm() {
  local prompt="$1"
  local reply
  read -r -p "$prompt [y/N]: " reply
  case "$reply" in
    [yY]|[yY][eE][sS]) return 0 ;;
    *) return 1 ;;
  esac
}

`

// BuildOrchestrationScript renders commands into a Bash script: every
// consent-gated command is wrapped in an interactive confirm() block, every
// unconditional command runs directly. generatedBy documents the command
// that produced the script in a leading comment.
func BuildOrchestrationScript(generatedBy string, commands []GeneratedNextCommand) string {
	var b strings.Builder
	b.WriteString(scriptHeader)
	fmt.Fprintf(&b, "# Generated by: %s\n", generatedBy)
	b.WriteString("# This script is generated only. It is not executed automatically.\n\n")
	b.WriteString(confirmFunction)

	for _, cmd := range commands {
		fmt.Fprintf(&b, "# %s: %s\n", cmd.ID, cmd.Description)
		if cmd.RequiresExplicitConsent {
			reasonLabel := "manual_confirmation"
			if len(cmd.ConsentReasons) > 0 {
				reasonLabel = strings.Join(cmd.ConsentReasons, ",")
			}
			fmt.Fprintf(&b, "if confirm \"Run %s (reasons: %s)?\"; then\n", cmd.ID, reasonLabel)
			fmt.Fprintf(&b, "  %s\n", cmd.Command)
			b.WriteString("else\n")
			fmt.Fprintf(&b, "  echo \"Skipped %s\"\n", cmd.ID)
			b.WriteString("fi\n")
		} else {
			b.WriteString(cmd.Command + "\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// EmitOrchestrationScript writes the rendered script to path at mode 0755,
// creating parent directories as needed.
func EmitOrchestrationScript(path, generatedBy string, commands []GeneratedNextCommand) error {
	if parent := filepath.Dir(path); parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return fmt.Errorf("create script dir %s: %w", parent, err)
		}
	}
	script := BuildOrchestrationScript(generatedBy, commands)
	if err := sandbox.AtomicWriteFile(path, []byte(script), 0755); err != nil {
		return fmt.Errorf("write script %s: %w", path, err)
	}
	return nil
}
