package presets

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"dario.cat/mergo"

	"github.com/chumyin/zeroclaw/internal/sandbox"
)

// DocumentSchemaVersion is the only preset payload schema version accepted.
const DocumentSchemaVersion = 1

// Document is the on-disk preset payload format (schema v1).
type Document struct {
	SchemaVersion   int                    `json:"schema_version"`
	ID              string                 `json:"id"`
	Packs           []string               `json:"packs"`
	ConfigOverrides map[string]interface{} `json:"config_overrides,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// SelectionToDocument converts a selection into its persistable payload
// form.
func SelectionToDocument(selection WorkspacePresetSelection) Document {
	return Document{
		SchemaVersion:   DocumentSchemaVersion,
		ID:              selection.PresetID,
		Packs:           selection.Packs,
		ConfigOverrides: selection.ConfigOverrides,
		Metadata:        selection.Metadata,
	}
}

// DocumentToSelection is the inverse of SelectionToDocument.
func DocumentToSelection(doc Document) WorkspacePresetSelection {
	return WorkspacePresetSelection{
		PresetID:        doc.ID,
		Packs:           doc.Packs,
		ConfigOverrides: doc.ConfigOverrides,
		Metadata:        doc.Metadata,
	}
}

// ExportResult carries everything preset.export reports back about a write.
type ExportResult struct {
	BytesWritten  int
	PayloadSHA256 string
}

// ExportDocumentToPath writes a document's JSON payload to path, returning
// the byte count and hex SHA-256 of exactly the bytes written so callers
// can build a preset.export report.
func ExportDocumentToPath(path string, doc Document) (ExportResult, error) {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ExportResult{}, fmt.Errorf("marshal preset document: %w", err)
	}
	payload = append(payload, '\n')

	if err := sandbox.AtomicWriteFile(path, payload, 0644); err != nil {
		return ExportResult{}, fmt.Errorf("write preset document: %w", err)
	}

	sum := sha256.Sum256(payload)
	return ExportResult{BytesWritten: len(payload), PayloadSHA256: hex.EncodeToString(sum[:])}, nil
}

// ImportMode controls how an imported document merges with the current
// selection.
type ImportMode string

const (
	ImportOverwrite ImportMode = "overwrite" // replace current selection entirely
	ImportMerge     ImportMode = "merge"     // union packs into current preset
	ImportFill      ImportMode = "fill"      // only apply where current is absent
)

// ImportSelectionFromPath reads a preset payload document from path and
// merges it with current according to mode.
func ImportSelectionFromPath(path string, mode ImportMode, current *WorkspacePresetSelection) (WorkspacePresetSelection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorkspacePresetSelection{}, fmt.Errorf("read preset document %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return WorkspacePresetSelection{}, fmt.Errorf("parse preset document %s: %w", path, err)
	}
	if doc.SchemaVersion != DocumentSchemaVersion {
		return WorkspacePresetSelection{}, &ValidationError{
			Path:   path,
			Errors: []string{fmt.Sprintf("unsupported schema_version %d (expected %d)", doc.SchemaVersion, DocumentSchemaVersion)},
		}
	}
	for _, pack := range doc.Packs {
		if !PackKnown(pack) {
			return WorkspacePresetSelection{}, &UnknownPackError{ID: pack}
		}
	}

	imported := DocumentToSelection(doc)

	switch mode {
	case ImportOverwrite, "":
		return imported, nil
	case ImportMerge:
		if current == nil {
			return imported, nil
		}
		selection, err := ComposeSelection(*current, imported.Packs, nil)
		if err != nil {
			return WorkspacePresetSelection{}, err
		}
		selection.ConfigOverrides, err = mergeOverrides(selection.ConfigOverrides, imported.ConfigOverrides, true)
		if err != nil {
			return WorkspacePresetSelection{}, err
		}
		selection.Metadata, err = mergeOverrides(selection.Metadata, imported.Metadata, true)
		if err != nil {
			return WorkspacePresetSelection{}, err
		}
		return selection, nil
	case ImportFill:
		if current == nil {
			return imported, nil
		}
		filled := *current
		if filled.PresetID == "" {
			filled.PresetID = imported.PresetID
		}
		if len(filled.Packs) == 0 {
			filled.Packs = imported.Packs
		}
		var err error
		filled.ConfigOverrides, err = mergeOverrides(filled.ConfigOverrides, imported.ConfigOverrides, false)
		if err != nil {
			return WorkspacePresetSelection{}, err
		}
		filled.Metadata, err = mergeOverrides(filled.Metadata, imported.Metadata, false)
		if err != nil {
			return WorkspacePresetSelection{}, err
		}
		return filled, nil
	default:
		return WorkspacePresetSelection{}, fmt.Errorf("unknown import mode %q", mode)
	}
}

// mergeOverrides deep-merges src into a copy of dst via mergo. overwrite
// selects which side wins on a key collision: true for merge mode (the
// imported document takes precedence, matching "layer this document on top
// of what's current"), false for fill mode (the current selection's values
// win, and only keys it leaves absent are filled from the import).
func mergeOverrides(dst, src map[string]interface{}, overwrite bool) (map[string]interface{}, error) {
	if len(src) == 0 {
		return dst, nil
	}
	merged := make(map[string]interface{}, len(dst)+len(src))
	for k, v := range dst {
		merged[k] = v
	}
	var opts []func(*mergo.Config)
	if overwrite {
		opts = append(opts, mergo.WithOverride)
	}
	if err := mergo.Merge(&merged, src, opts...); err != nil {
		return nil, fmt.Errorf("merge preset document fields: %w", err)
	}
	return merged, nil
}

// FileCheckResult is one file's outcome in a ValidationReport.
type FileCheckResult struct {
	Path   string   `json:"path"`
	Format string   `json:"format"`
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationReport is the preset.validation report payload.
type ValidationReport struct {
	SchemaVersion int               `json:"schema_version"`
	ReportType    string            `json:"report_type"`
	FilesChecked  int               `json:"files_checked"`
	FilesFailed   int               `json:"files_failed"`
	Files         []FileCheckResult `json:"files"`
}

// ValidatePresetPaths checks each path: top-level schema_version==1, id
// present, packs is a string array, optional config_overrides/metadata are
// objects, and packs resolve unless allowUnknownPacks is set.
func ValidatePresetPaths(paths []string, allowUnknownPacks bool) ValidationReport {
	report := ValidationReport{
		SchemaVersion: 1,
		ReportType:    "preset.validation",
	}

	for _, path := range paths {
		result := FileCheckResult{Path: path, Format: "json", OK: true}

		data, err := os.ReadFile(path)
		if err != nil {
			result.OK = false
			result.Errors = append(result.Errors, fmt.Sprintf("read failed: %v", err))
			report.Files = append(report.Files, result)
			report.FilesChecked++
			report.FilesFailed++
			continue
		}

		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			result.OK = false
			result.Errors = append(result.Errors, fmt.Sprintf("invalid JSON: %v", err))
			report.Files = append(report.Files, result)
			report.FilesChecked++
			report.FilesFailed++
			continue
		}

		if v, ok := raw["schema_version"]; !ok {
			result.Errors = append(result.Errors, "missing schema_version")
		} else if f, ok := v.(float64); !ok || int(f) != DocumentSchemaVersion {
			result.Errors = append(result.Errors, fmt.Sprintf("unsupported schema_version %v", v))
		}

		id, idOK := raw["id"].(string)
		if !idOK || id == "" {
			result.Errors = append(result.Errors, "missing or empty id")
		}

		packsRaw, packsOK := raw["packs"].([]interface{})
		if !packsOK {
			result.Errors = append(result.Errors, "packs must be an array of strings")
		} else {
			for _, p := range packsRaw {
				packID, ok := p.(string)
				if !ok {
					result.Errors = append(result.Errors, "packs must contain only strings")
					continue
				}
				if !allowUnknownPacks && !PackKnown(packID) {
					result.Errors = append(result.Errors, fmt.Sprintf("unknown pack: %s", packID))
				}
			}
		}

		if v, ok := raw["config_overrides"]; ok {
			if _, isObj := v.(map[string]interface{}); !isObj {
				result.Errors = append(result.Errors, "config_overrides must be an object")
			}
		}
		if v, ok := raw["metadata"]; ok {
			if _, isObj := v.(map[string]interface{}); !isObj {
				result.Errors = append(result.Errors, "metadata must be an object")
			}
		}

		result.OK = len(result.Errors) == 0
		report.Files = append(report.Files, result)
		report.FilesChecked++
		if !result.OK {
			report.FilesFailed++
		}
	}

	return report
}
