// Package paths provides centralized path resolution for ZeroClaw's
// persisted control-plane state.
// This package has NO internal imports (only stdlib) to avoid import cycles.
// All functions return errors to allow callers to log appropriately.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const configDirEnv = "ZEROCLAW_CONFIG_DIR"

// BaseDir returns the ZeroClaw config directory: $ZEROCLAW_CONFIG_DIR if set,
// otherwise the platform default (~/.zeroclaw).
func BaseDir() (string, error) {
	if dir := os.Getenv(configDirEnv); dir != "" {
		expanded, err := ExpandTilde(dir)
		if err != nil {
			return "", err
		}
		return filepath.Clean(expanded), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".zeroclaw"), nil
}

// DataPath returns a path within the config directory (<base>/<subpath>).
func DataPath(subpath string) (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, subpath), nil
}

// ConfigPath returns the active config path. Priority: ./zeroclaw.json,
// ./zeroclaw.toml (current dir), <base>/config.json, <base>/config.toml.
// JSON is tried before TOML at each directory level since it's the primary
// form; TOML is the alternate form for hand-editing.
// Returns ("", nil) if no config exists - this is a valid state, not an error.
func ConfigPath() (string, error) {
	for _, localPath := range []string{"zeroclaw.json", "zeroclaw.toml"} {
		if _, err := os.Stat(localPath); err == nil {
			absPath, err := filepath.Abs(localPath)
			if err != nil {
				return "", fmt.Errorf("failed to get absolute path: %w", err)
			}
			return absPath, nil
		}
	}

	for _, name := range []string{"config.json", "config.toml"} {
		globalPath, err := DataPath(name)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(globalPath); err == nil {
			return globalPath, nil
		}
	}

	return "", nil
}

// DefaultConfigPath returns the default location for new configs.
func DefaultConfigPath() (string, error) {
	return DataPath("config.json")
}

// SelectionPath returns workspace/presets/selection.json under the config dir.
func SelectionPath() (string, error) {
	return DataPath(filepath.Join("workspace", "presets", "selection.json"))
}

// EstopStatePath returns security/estop.json under the config dir.
func EstopStatePath() (string, error) {
	return DataPath(filepath.Join("security", "estop.json"))
}

// AuthProfilesPath returns auth/auth.json under the config dir.
func AuthProfilesPath() (string, error) {
	return DataPath(filepath.Join("auth", "auth.json"))
}

// PendingOAuthPath returns auth/auth-<provider>-pending.json under the config dir.
func PendingOAuthPath(provider string) (string, error) {
	return DataPath(filepath.Join("auth", fmt.Sprintf("auth-%s-pending.json", provider)))
}

// SecretKeyPath returns secrets/key under the config dir.
func SecretKeyPath() (string, error) {
	return DataPath(filepath.Join("secrets", "key"))
}

// DefaultWorkspace returns the default workspace path (<base>/workspace).
func DefaultWorkspace() (string, error) {
	return DataPath("workspace")
}

// EnsureDir creates a directory if it doesn't exist.
// Uses 0750 permissions (owner: rwx, group: rx, other: none).
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// EnsureParentDir creates the parent directory of a file path if it doesn't exist.
func EnsureParentDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// ExpandTilde expands a path that starts with ~ to the user's home directory.
// Returns the path unchanged if it doesn't start with ~.
func ExpandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if len(path) == 1 {
		return home, nil
	}
	return filepath.Join(home, path[1:]), nil
}
