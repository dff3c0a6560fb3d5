package presets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSelectionDocumentRoundTrip(t *testing.T) {
	sel := WorkspacePresetSelection{
		PresetID:   "automation",
		Packs:      []string{"core", "workspace-read", "workspace-exec"},
		AddedPacks: []string{"workspace-exec"},
		Metadata:   map[string]interface{}{"note": "test"},
	}
	doc := SelectionToDocument(sel)
	back := DocumentToSelection(doc)

	if back.PresetID != sel.PresetID {
		t.Errorf("preset id mismatch: %q vs %q", back.PresetID, sel.PresetID)
	}
	if len(back.Packs) != len(sel.Packs) {
		t.Errorf("packs mismatch: %v vs %v", back.Packs, sel.Packs)
	}
}

func TestExportDocumentToPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	sel, _ := FromPresetID("minimal")
	doc := SelectionToDocument(sel)

	result, err := ExportDocumentToPath(path, doc)
	if err != nil {
		t.Fatal(err)
	}
	if result.BytesWritten == 0 {
		t.Error("expected nonzero bytes written")
	}
	if result.PayloadSHA256 == "" {
		t.Error("expected nonempty sha256")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var readBack Document
	if err := json.Unmarshal(data, &readBack); err != nil {
		t.Fatal(err)
	}
	if readBack.ID != "minimal" {
		t.Errorf("got id %q", readBack.ID)
	}
}

func TestImportSelectionOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.json")
	doc := Document{SchemaVersion: 1, ID: "full", Packs: []string{"core", "browser"}}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	current, _ := FromPresetID("minimal")
	imported, err := ImportSelectionFromPath(path, ImportOverwrite, &current)
	if err != nil {
		t.Fatal(err)
	}
	if imported.PresetID != "full" {
		t.Errorf("got preset id %q, want full", imported.PresetID)
	}
}

func TestImportSelectionMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.json")
	doc := Document{SchemaVersion: 1, ID: "minimal", Packs: []string{"browser"}}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	current, _ := FromPresetID("minimal")
	imported, err := ImportSelectionFromPath(path, ImportMerge, &current)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, p := range imported.Packs {
		if p == "browser" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected merged selection to include browser, got %v", imported.Packs)
	}
}

func TestImportSelectionMergeConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.json")
	doc := Document{
		SchemaVersion: 1,
		ID:            "minimal",
		Packs:         []string{"browser"},
		ConfigOverrides: map[string]interface{}{
			"timeout_seconds": float64(30),
			"model":           "imported-model",
		},
		Metadata: map[string]interface{}{"source": "import"},
	}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	current, _ := FromPresetID("minimal")
	current.ConfigOverrides = map[string]interface{}{
		"model":        "current-model",
		"max_attempts": float64(3),
	}

	merged, err := ImportSelectionFromPath(path, ImportMerge, &current)
	if err != nil {
		t.Fatal(err)
	}

	if merged.ConfigOverrides["max_attempts"] != float64(3) {
		t.Errorf("expected current-only key max_attempts to survive, got %v", merged.ConfigOverrides)
	}
	if merged.ConfigOverrides["timeout_seconds"] != float64(30) {
		t.Errorf("expected imported-only key timeout_seconds to be added, got %v", merged.ConfigOverrides)
	}
	if merged.ConfigOverrides["model"] != "imported-model" {
		t.Errorf("expected imported value to win on conflict in merge mode, got %v", merged.ConfigOverrides)
	}
	if merged.Metadata["source"] != "import" {
		t.Errorf("expected metadata to be merged in too, got %v", merged.Metadata)
	}
}

func TestImportSelectionFillOnlyAppliesWhereCurrentIsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.json")
	doc := Document{
		SchemaVersion: 1,
		ID:            "full",
		Packs:         []string{"core", "browser", "workspace-exec"},
		ConfigOverrides: map[string]interface{}{
			"timeout_seconds": float64(30),
			"model":           "imported-model",
		},
	}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	current, _ := FromPresetID("automation")
	current.ConfigOverrides = map[string]interface{}{"model": "current-model"}

	filled, err := ImportSelectionFromPath(path, ImportFill, &current)
	if err != nil {
		t.Fatal(err)
	}

	if filled.PresetID != "automation" {
		t.Errorf("expected current preset id to survive since it was non-empty, got %q", filled.PresetID)
	}
	if len(filled.Packs) != len(current.Packs) {
		t.Errorf("expected current packs to survive since they were non-empty, got %v", filled.Packs)
	}
	if filled.ConfigOverrides["model"] != "current-model" {
		t.Errorf("expected current value to win on conflict in fill mode, got %v", filled.ConfigOverrides)
	}
	if filled.ConfigOverrides["timeout_seconds"] != float64(30) {
		t.Errorf("expected imported-only key to fill the gap, got %v", filled.ConfigOverrides)
	}
}

func TestImportSelectionFillUsesImportWhenCurrentEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.json")
	doc := Document{SchemaVersion: 1, ID: "full", Packs: []string{"core", "browser"}}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	current := WorkspacePresetSelection{}
	filled, err := ImportSelectionFromPath(path, ImportFill, &current)
	if err != nil {
		t.Fatal(err)
	}
	if filled.PresetID != "full" {
		t.Errorf("expected imported preset id to fill the empty current one, got %q", filled.PresetID)
	}
	if len(filled.Packs) != 2 {
		t.Errorf("expected imported packs to fill the empty current ones, got %v", filled.Packs)
	}
}

func TestImportSelectionUnknownPack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.json")
	doc := Document{SchemaVersion: 1, ID: "custom", Packs: []string{"bogus"}}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportSelectionFromPath(path, ImportOverwrite, nil); err == nil {
		t.Fatal("expected UnknownPackError")
	}
}

func TestImportSelectionBadSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.json")
	doc := Document{SchemaVersion: 2, ID: "custom"}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportSelectionFromPath(path, ImportOverwrite, nil); err == nil {
		t.Fatal("expected schema version validation error")
	}
}

func TestValidatePresetPathsOK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "valid.json")
	doc := Document{SchemaVersion: 1, ID: "custom", Packs: []string{"core"}}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	report := ValidatePresetPaths([]string{path}, false)
	if report.FilesFailed != 0 {
		t.Errorf("expected 0 failures, got %d: %+v", report.FilesFailed, report.Files)
	}
	if report.ReportType != "preset.validation" {
		t.Errorf("got report_type %q", report.ReportType)
	}
}

func TestValidatePresetPathsUnknownPack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invalid.json")
	doc := Document{SchemaVersion: 1, ID: "custom", Packs: []string{"bogus"}}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	report := ValidatePresetPaths([]string{path}, false)
	if report.FilesFailed != 1 {
		t.Fatalf("expected 1 failure, got %d", report.FilesFailed)
	}
	if report.Files[0].OK {
		t.Error("expected file to be marked not ok")
	}
}

func TestValidatePresetPathsAllowUnknownPacks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invalid.json")
	doc := Document{SchemaVersion: 1, ID: "custom", Packs: []string{"bogus"}}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	report := ValidatePresetPaths([]string{path}, true)
	if report.FilesFailed != 0 {
		t.Errorf("expected unknown packs to be tolerated, got %+v", report.Files)
	}
}

func TestValidatePresetPathsMissingFile(t *testing.T) {
	report := ValidatePresetPaths([]string{"/nonexistent/file.json"}, false)
	if report.FilesFailed != 1 {
		t.Fatalf("expected 1 failure for missing file, got %d", report.FilesFailed)
	}
}
