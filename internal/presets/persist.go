package presets

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chumyin/zeroclaw/internal/events"
	"github.com/chumyin/zeroclaw/internal/paths"
	"github.com/chumyin/zeroclaw/internal/sandbox"
)

// selectionEnvelopeSchemaVersion is the on-disk wrapper format written to
// the workspace's selection.json.
const selectionEnvelopeSchemaVersion = 1

// selectionEnvelope wraps a WorkspacePresetSelection with a schema version
// so future format changes can be detected on load.
type selectionEnvelope struct {
	SchemaVersion int                      `json:"schema_version"`
	Selection     WorkspacePresetSelection `json:"selection"`
}

// LoadWorkspaceSelection reads the workspace's persisted preset selection.
// A missing file is not an error: it returns the default selection so
// first-run callers don't need a special case.
func LoadWorkspaceSelection() (WorkspacePresetSelection, error) {
	path, err := paths.SelectionPath()
	if err != nil {
		return WorkspacePresetSelection{}, fmt.Errorf("resolve selection path: %w", err)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultSelection()
	}
	if err != nil {
		return WorkspacePresetSelection{}, fmt.Errorf("read selection %s: %w", path, err)
	}

	var envelope selectionEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return WorkspacePresetSelection{}, fmt.Errorf("parse selection %s: %w", path, err)
	}
	if envelope.SchemaVersion != selectionEnvelopeSchemaVersion {
		return WorkspacePresetSelection{}, fmt.Errorf(
			"selection %s: unsupported schema_version %d (expected %d)",
			path, envelope.SchemaVersion, selectionEnvelopeSchemaVersion)
	}
	return envelope.Selection, nil
}

// SaveWorkspaceSelection persists selection atomically: write to a sibling
// temp file, fsync, rename over the target.
func SaveWorkspaceSelection(selection WorkspacePresetSelection) error {
	path, err := paths.SelectionPath()
	if err != nil {
		return fmt.Errorf("resolve selection path: %w", err)
	}
	if err := paths.EnsureParentDir(path); err != nil {
		return fmt.Errorf("ensure selection dir: %w", err)
	}

	envelope := selectionEnvelope{SchemaVersion: selectionEnvelopeSchemaVersion, Selection: selection}
	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	payload = append(payload, '\n')

	if err := sandbox.AtomicWriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("write selection %s: %w", path, err)
	}
	return nil
}

// PublishSelectionChange emits topic ("selection.applied" or
// "selection.rebuilt") on bus with the new selection as payload, once a
// SaveWorkspaceSelection call has succeeded. Separate from the save itself
// so callers without a bus handle (tests, internal rebuild helpers) aren't
// forced to thread one through; bus may be nil, in which case this is a
// no-op.
func PublishSelectionChange(bus *events.Bus, topic string, selection WorkspacePresetSelection) {
	if bus == nil {
		return
	}
	bus.PublishWithSource(topic, selection, "cli")
}
