package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/chumyin/zeroclaw/internal/events"
	. "github.com/chumyin/zeroclaw/internal/logging"
	"github.com/chumyin/zeroclaw/internal/oauth"
	"github.com/chumyin/zeroclaw/internal/secrets"
)

// CLI defines the root command-line interface for the control-plane
// safety fabric: preset composition, security profile changes, the
// emergency-stop switch, and per-provider auth, plus the quick onboarding
// wizard that composes all four on first run.
type CLI struct {
	Debug     bool   `help:"Enable debug logging" short:"d"`
	Trace     bool   `help:"Enable trace logging" short:"t"`
	ConfigDir string `name:"config-dir" help:"Override the config directory for this invocation (overrides ZEROCLAW_CONFIG_DIR)"`

	Onboard  OnboardCmd  `cmd:"" help:"Run the onboarding wizard"`
	Preset   PresetCmd   `cmd:"" help:"Manage workspace presets and packs"`
	Security SecurityCmd `cmd:"" help:"Manage the security profile"`
	Estop    EstopCmd    `cmd:"" help:"Engage, inspect, or resume from the emergency stop"`
	Auth     AuthCmd     `cmd:"" help:"Manage provider authentication"`
}

// Context is threaded through every command's Run method.
type Context struct {
	Debug          bool
	Trace          bool
	ConfigDir      string
	Bus            *events.Bus
	TokenRefresher secrets.TokenRefresher
}

func main() {
	cli := CLI{}
	parsedCtx := kong.Parse(&cli,
		kong.Name("zeroclaw"),
		kong.Description("ZeroClaw control-plane safety fabric"),
		kong.UsageOnError(),
	)

	if cli.ConfigDir != "" {
		if strings.TrimSpace(cli.ConfigDir) == "" {
			fmt.Fprintln(os.Stderr, "--config-dir cannot be empty")
			os.Exit(1)
		}
		os.Setenv("ZEROCLAW_CONFIG_DIR", cli.ConfigDir)
	}

	level := LevelInfo
	if cli.Trace {
		level = LevelTrace
	} else if cli.Debug {
		level = LevelDebug
	}
	Init(&Config{Level: level, TimeFormat: "15:04:05", ShowCaller: true})

	err := parsedCtx.Run(&Context{
		Debug:          cli.Debug,
		Trace:          cli.Trace,
		ConfigDir:      cli.ConfigDir,
		Bus:            events.NewBus(),
		TokenRefresher: oauth.Refresher{},
	})
	if err != nil {
		errMsg := err.Error()
		if isCleanUserError(errMsg) {
			fmt.Fprintln(os.Stderr, errMsg)
			os.Exit(1)
		}
		L_fatal("command failed", "error", err)
	}
}

// isCleanUserError reports whether err is an expected user-facing outcome
// (consent refusal, validation failure, mode conflict) that should print
// without log-line formatting, versus an unexpected internal failure that
// still goes through L_fatal.
func isCleanUserError(msg string) bool {
	markers := []string{
		"requires --dry-run",
		"requires explicit consent",
		"unknown preset",
		"unknown pack",
		"validation failed",
		"--level",
		"--domain",
		"--tool",
		"OTP code is required",
		"OTP code is invalid",
		"rebuild failed",
		"timed out waiting for OAuth redirect",
		"no pending oauth login",
		"unknown security profile",
		"unknown import mode",
		"unknown provider",
		"no oauth configuration",
		"pending login profile mismatch",
		"token cannot be empty",
		"does not accept",
		"found an existing config",
		"requires otp",
		"is not enabled for this workspace",
		"not both",
		"no channel subsystem",
		"no auth profile",
		"has no refresh token",
		"auth refresh supports",
		"auth paste-redirect supports",
	}
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// readSecret reads a secret value from stdin without echoing when attached
// to a terminal, falling back to a plain line read otherwise (piped input,
// CI, scripted tests).
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		bytes, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(bytes), nil
	}
	var value string
	if _, err := fmt.Scanln(&value); err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return value, nil
}
