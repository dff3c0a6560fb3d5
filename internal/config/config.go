// Package config loads and persists the control-plane fabric's own
// configuration: autonomy policy, estop/secret store paths, and the few
// top-level settings the dispatcher needs before any subsystem handler runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"

	. "github.com/chumyin/zeroclaw/internal/logging"
	"github.com/chumyin/zeroclaw/internal/paths"
)

// LoadResult reports where the active config came from.
type LoadResult struct {
	Config       *Config
	SourcePath   string // empty if no config file existed yet
	Bootstrapped bool   // true if this Load created a fresh config
}

// Config is the fabric's persisted configuration document
// (config.{toml|json} under the config directory).
type Config struct {
	SchemaVersion int            `json:"schema_version"`
	Autonomy      AutonomyConfig `json:"autonomy"`
	Estop         EstopConfig    `json:"estop"`
	Secrets       SecretsConfig  `json:"secrets"`

	// configPath is where this document was loaded from / will be saved to.
	// Not persisted.
	configPath string `json:"-"`
}

// AutonomyConfig is the persisted policy document gating tool execution.
// internal/security reads and mutates this type directly; this package only
// owns its on-disk representation and the selective-merge-on-load behavior.
type AutonomyConfig struct {
	Level                        string   `json:"level"`
	WorkspaceOnly                bool     `json:"workspace_only"`
	AllowedRoots                 []string `json:"allowed_roots"`
	AllowedCommands              []string `json:"allowed_commands"`
	RequireApprovalForMediumRisk bool     `json:"require_approval_for_medium_risk"`
	BlockHighRiskCommands        bool     `json:"block_high_risk_commands"`
	AllowNonCliAutoApproval      bool     `json:"allow_non_cli_auto_approval"`
	MaxActionsPerHour            uint32   `json:"max_actions_per_hour"`
	MaxCostPerDayCents           uint32   `json:"max_cost_per_day_cents"`
}

// EstopConfig holds the tunables the estop subsystem reads from config:
// whether the OTP subsystem is enabled at all, and whether resuming a
// category requires a valid TOTP code (which only takes effect when OTP is
// enabled).
type EstopConfig struct {
	OTPEnabled         bool `json:"otp_enabled"`
	RequireOTPToResume bool `json:"require_otp_to_resume"`
}

// SecretsConfig controls whether SecretStore actually encrypts values.
// EncryptEnabled defaults true; false is only meant for test fixtures.
type SecretsConfig struct {
	EncryptEnabled bool `json:"encrypt_enabled"`
}

func defaultConfig() *Config {
	return &Config{
		SchemaVersion: 1,
		Autonomy: AutonomyConfig{
			Level:                        "read_only",
			WorkspaceOnly:                true,
			RequireApprovalForMediumRisk: true,
			BlockHighRiskCommands:        true,
			AllowNonCliAutoApproval:      false,
			MaxActionsPerHour:            20,
			MaxCostPerDayCents:           500,
		},
		Estop:   EstopConfig{OTPEnabled: false, RequireOTPToResume: false},
		Secrets: SecretsConfig{EncryptEnabled: true},
	}
}

// Load reads the active config document. Priority: local ./zeroclaw.json,
// then <config-dir>/config.json. Absence of both is not an error: Load
// returns defaults and Bootstrapped=true, splitting bootstrap from normal
// mode (first run writes a fresh file; subsequent runs only ever
// read/merge the one file they find).
func Load() (*LoadResult, error) {
	cfg := defaultConfig()

	activePath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	if activePath == "" {
		defaultPath, err := paths.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("resolve default config path: %w", err)
		}
		cfg.configPath = defaultPath
		L_debug("config: no existing config found, using defaults", "path", defaultPath)
		return &LoadResult{Config: cfg, SourcePath: "", Bootstrapped: true}, nil
	}

	if strings.HasSuffix(activePath, ".toml") {
		if err := mergeTOMLConfig(cfg, activePath); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", activePath, err)
		}
	} else {
		data, err := os.ReadFile(activePath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", activePath, err)
		}
		if err := mergeJSONConfig(cfg, data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", activePath, err)
		}
	}
	cfg.configPath = activePath

	L_debug("config: loaded", "path", activePath, "autonomy_level", cfg.Autonomy.Level)
	return &LoadResult{Config: cfg, SourcePath: activePath, Bootstrapped: false}, nil
}

// Path returns the path this config was loaded from, or will be written to
// if it hasn't been saved yet.
func (c *Config) Path() string {
	if c.configPath != "" {
		return c.configPath
	}
	p, _ := paths.DefaultConfigPath()
	return p
}

// Save writes the config to its path, rotating backups first.
func (c *Config) Save() error {
	path := c.Path()
	if err := paths.EnsureParentDir(path); err != nil {
		return err
	}
	if c.configPath == "" {
		c.configPath = path
	}
	return BackupAndWriteJSON(path, c, DefaultBackupCount)
}

// mergeJSONConfig deep-merges JSON data into an existing config. Only
// top-level fields actually present in the JSON override defaults; this
// selective-merge idiom is trimmed to this module's smaller Config shape.
func mergeJSONConfig(dst *Config, jsonData []byte) error {
	var rawMap map[string]interface{}
	if err := json.Unmarshal(jsonData, &rawMap); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}

	var src Config
	if err := json.Unmarshal(jsonData, &src); err != nil {
		return fmt.Errorf("parse to config: %w", err)
	}

	if _, ok := rawMap["autonomy"]; ok {
		if err := mergo.Merge(&dst.Autonomy, src.Autonomy, mergo.WithOverride); err != nil {
			return err
		}
	}
	if _, ok := rawMap["estop"]; ok {
		if err := mergo.Merge(&dst.Estop, src.Estop, mergo.WithOverride); err != nil {
			return err
		}
	}
	if _, ok := rawMap["secrets"]; ok {
		if err := mergo.Merge(&dst.Secrets, src.Secrets, mergo.WithOverride); err != nil {
			return err
		}
	}
	if v, ok := rawMap["schema_version"]; ok {
		if f, ok := v.(float64); ok {
			dst.SchemaVersion = int(f)
		}
	}
	return nil
}

// mergeTOMLConfig reads the alternate config.toml form and applies it through
// the same selective-merge path as JSON: decode to a generic map, re-marshal
// to JSON, and hand off to mergeJSONConfig. This keeps exactly one merge
// implementation instead of a parallel TOML-specific one.
func mergeTOMLConfig(dst *Config, path string) error {
	var rawToml map[string]interface{}
	if _, err := toml.DecodeFile(path, &rawToml); err != nil {
		return fmt.Errorf("decode TOML: %w", err)
	}
	asJSON, err := json.Marshal(rawToml)
	if err != nil {
		return fmt.Errorf("re-encode TOML as JSON: %w", err)
	}
	return mergeJSONConfig(dst, asJSON)
}
