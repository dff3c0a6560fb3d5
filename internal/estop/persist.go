package estop

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chumyin/zeroclaw/internal/paths"
	"github.com/chumyin/zeroclaw/internal/sandbox"
)

// envelopeSchemaVersion is the on-disk wrapper format.
const envelopeSchemaVersion = 1

type envelope struct {
	SchemaVersion int        `json:"schema_version"`
	State         EstopState `json:"state"`
}

// Load reads the persisted estop state. A missing file is not an error: it
// returns the zero (disengaged) state.
func Load() (EstopState, error) {
	path, err := paths.EstopStatePath()
	if err != nil {
		return EstopState{}, fmt.Errorf("resolve estop state path: %w", err)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return EstopState{}, nil
	}
	if err != nil {
		return EstopState{}, fmt.Errorf("read estop state %s: %w", path, err)
	}
	if len(data) == 0 {
		return EstopState{}, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return EstopState{}, fmt.Errorf("parse estop state %s: %w", path, err)
	}
	if env.SchemaVersion != envelopeSchemaVersion {
		return EstopState{}, fmt.Errorf(
			"estop state %s: unsupported schema_version %d (expected %d)",
			path, env.SchemaVersion, envelopeSchemaVersion)
	}
	return env.State, nil
}

// Save persists state atomically.
func Save(state EstopState) error {
	path, err := paths.EstopStatePath()
	if err != nil {
		return fmt.Errorf("resolve estop state path: %w", err)
	}
	if err := paths.EnsureParentDir(path); err != nil {
		return fmt.Errorf("ensure estop state dir: %w", err)
	}

	env := envelope{SchemaVersion: envelopeSchemaVersion, State: state}
	payload, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal estop state: %w", err)
	}
	payload = append(payload, '\n')

	if err := sandbox.AtomicWriteFile(path, payload, 0600); err != nil {
		return fmt.Errorf("write estop state %s: %w", path, err)
	}
	return nil
}

// Now is overridable in tests; production code always uses time.Now.
var Now = time.Now
