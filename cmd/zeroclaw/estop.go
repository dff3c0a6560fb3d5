package main

import (
	"fmt"
	"os"

	"github.com/chumyin/zeroclaw/internal/config"
	"github.com/chumyin/zeroclaw/internal/estop"
	"github.com/chumyin/zeroclaw/internal/secrets"
)

// EstopCmd groups the bare `estop` (engage) invocation with its `status`
// and `resume` subcommands via a nested struct tagged
// `cmd:"" default:"withargs"`.
type EstopCmd struct {
	Engage EstopEngageCmd `cmd:"" default:"withargs" help:"Engage the emergency stop"`
	Status EstopStatusCmd `cmd:"status" help:"Show the current estop state"`
	Resume EstopResumeCmd `cmd:"resume" help:"Resume from the emergency stop"`
}

type EstopEngageCmd struct {
	Level  string   `enum:",kill-all,network-kill,domain-block,tool-freeze" help:"Engagement level (default kill-all)"`
	Domain []string `help:"Domain pattern to block (repeatable, with --level domain-block)"`
	Tool   []string `help:"Tool name to freeze (repeatable, with --level tool-freeze)"`
}

func (c *EstopEngageCmd) Run(ctx *Context) error {
	level, err := estop.BuildEngageLevel(estop.EstopLevelArg(c.Level), c.Domain, c.Tool)
	if err != nil {
		return err
	}
	manager, err := estop.LoadManager()
	if err != nil {
		return err
	}
	manager.Bus = ctx.Bus
	if err := manager.Engage(level); err != nil {
		return err
	}
	emitHuman(estop.FormatStatusLines(manager.Status()))
	return nil
}

type EstopStatusCmd struct {
	JSON bool `help:"Emit a machine-readable report"`
}

func (c *EstopStatusCmd) Run(ctx *Context) error {
	manager, err := estop.LoadManager()
	if err != nil {
		return err
	}
	state := manager.Status()
	if c.JSON {
		return emitJSON(estop.BuildStatusReport(state))
	}
	emitHuman(estop.FormatStatusLines(state))
	return nil
}

type EstopResumeCmd struct {
	Network bool     `help:"Resume network-kill only"`
	Domain  []string `help:"Domain patterns to unblock (repeatable)"`
	Tool    []string `help:"Tool names to unfreeze (repeatable)"`
	Otp     string   `help:"TOTP code, required when require_otp_to_resume is set"`
}

func (c *EstopResumeCmd) Run(ctx *Context) error {
	selector, err := estop.BuildResumeSelector(c.Network, c.Domain, c.Tool)
	if err != nil {
		return err
	}

	manager, err := estop.LoadManager()
	if err != nil {
		return err
	}
	manager.Bus = ctx.Bus

	var validator *estop.Validator
	loadResult, err := config.Load()
	if err != nil {
		return err
	}
	if loadResult.Config.Estop.RequireOTPToResume {
		if !loadResult.Config.Estop.OTPEnabled {
			return fmt.Errorf("require_otp_to_resume is set but otp is not enabled for this workspace")
		}
		validator, err = validatorForResume(loadResult.Config.Secrets.EncryptEnabled)
		if err != nil {
			return err
		}
	}

	if err := manager.Resume(selector, c.Otp, validator); err != nil {
		return err
	}
	emitHuman(estop.FormatStatusLines(manager.Status()))
	return nil
}

// validatorForResume loads (or, on first use, generates and persists) the
// TOTP seed backing estop's OTP gate. enrollmentURI is only set the first
// time a seed is generated, so this prints the one-time enrollment
// announcement the original CLI shows on first startup.
func validatorForResume(encryptEnabled bool) (*estop.Validator, error) {
	store, err := secrets.NewDefault(encryptEnabled)
	if err != nil {
		return nil, err
	}
	validator, enrollmentURI, err := estop.InitOTPValidator(store)
	if err != nil {
		return nil, err
	}
	if enrollmentURI != "" {
		fmt.Fprintln(os.Stderr, "Initialized OTP secret for ZeroClaw.")
		fmt.Fprintln(os.Stderr, "Enrollment URI:", enrollmentURI)
	}
	return validator, nil
}
