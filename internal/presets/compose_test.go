package presets

import "testing"

func TestFromPresetID(t *testing.T) {
	sel, err := FromPresetID("minimal")
	if err != nil {
		t.Fatal(err)
	}
	if sel.PresetID != "minimal" {
		t.Errorf("got preset id %q", sel.PresetID)
	}
	if len(sel.Packs) != 2 {
		t.Errorf("got %d packs, want 2", len(sel.Packs))
	}
	if sel.AddedPacks != nil {
		t.Errorf("fresh selection should have no added packs, got %v", sel.AddedPacks)
	}
}

func TestFromPresetIDUnknown(t *testing.T) {
	if _, err := FromPresetID("bogus"); err == nil {
		t.Fatal("expected error")
	}
}

func TestComposeSelectionAddRemove(t *testing.T) {
	base, err := FromPresetID("minimal")
	if err != nil {
		t.Fatal(err)
	}
	result, err := ComposeSelection(base, []string{"browser", "workspace-exec"}, []string{"workspace-read"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"core": true, "browser": true, "workspace-exec": true}
	if len(result.Packs) != len(want) {
		t.Fatalf("got packs %v, want %v", result.Packs, want)
	}
	for _, p := range result.Packs {
		if !want[p] {
			t.Errorf("unexpected pack %s in result", p)
		}
	}
	for _, p := range result.Packs {
		if p == "workspace-read" {
			t.Error("workspace-read should have been removed")
		}
	}
	if len(result.AddedPacks) != 2 {
		t.Errorf("got added packs %v, want 2 entries", result.AddedPacks)
	}
}

func TestComposeSelectionIdempotentRemove(t *testing.T) {
	base, _ := FromPresetID("minimal")
	result, err := ComposeSelection(base, nil, []string{"workspace-exec", "workspace-exec"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Packs) != 2 {
		t.Fatalf("removing an absent pack twice should be a no-op, got %v", result.Packs)
	}
}

func TestComposeSelectionUnknownPack(t *testing.T) {
	base, _ := FromPresetID("minimal")
	if _, err := ComposeSelection(base, []string{"bogus-pack"}, nil); err == nil {
		t.Fatal("expected UnknownPackError")
	}
}

func TestComposeSelectionDedupesAdd(t *testing.T) {
	base, _ := FromPresetID("minimal")
	result, err := ComposeSelection(base, []string{"core", "core"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, p := range result.Packs {
		if p == "core" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("core duplicated in result: %v", result.Packs)
	}
}

func TestSelectionDiffOf(t *testing.T) {
	before, _ := FromPresetID("minimal")
	after, _ := ComposeSelection(before, []string{"browser"}, []string{"workspace-read"})

	diff := SelectionDiffOf(&before, after)
	if len(diff.AddedPacks) != 1 || diff.AddedPacks[0] != "browser" {
		t.Errorf("got added %v, want [browser]", diff.AddedPacks)
	}
	if len(diff.RemovedPacks) != 1 || diff.RemovedPacks[0] != "workspace-read" {
		t.Errorf("got removed %v, want [workspace-read]", diff.RemovedPacks)
	}
	if diff.BeforePresetID != "minimal" || diff.AfterPresetID != "minimal" {
		t.Errorf("preset ids not carried through: %+v", diff)
	}
}

func TestSelectionDiffOfNilBefore(t *testing.T) {
	after, _ := FromPresetID("full")
	diff := SelectionDiffOf(nil, after)
	if diff.BeforePresetID != "" {
		t.Errorf("expected empty before_preset_id, got %q", diff.BeforePresetID)
	}
	if len(diff.AddedPacks) != len(after.Packs) {
		t.Errorf("every pack should be added against a nil before, got %v", diff.AddedPacks)
	}
}

func TestRiskyPackIDs(t *testing.T) {
	full, _ := FromPresetID("full")
	risky := RiskyPackIDs(full)
	want := map[string]bool{"workspace-exec": true, "network-egress": true, "update": true}
	if len(risky) != len(want) {
		t.Fatalf("got risky packs %v, want %v", risky, want)
	}
	for _, p := range risky {
		if !want[p] {
			t.Errorf("unexpected risky pack %s", p)
		}
	}
}

func TestRiskyPackIDsMinimalHasNone(t *testing.T) {
	minimal, _ := FromPresetID("minimal")
	if risky := RiskyPackIDs(minimal); len(risky) != 0 {
		t.Errorf("minimal preset should have no risky packs, got %v", risky)
	}
}
