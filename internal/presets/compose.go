package presets

import "sort"

// FromPresetID builds the base selection for a known preset id.
func FromPresetID(id string) (WorkspacePresetSelection, error) {
	preset, err := PresetByID(id)
	if err != nil {
		return WorkspacePresetSelection{}, err
	}
	packs := make([]string, len(preset.Packs))
	copy(packs, preset.Packs)
	return WorkspacePresetSelection{
		PresetID:   preset.ID,
		Packs:      packs,
		AddedPacks: nil,
	}, nil
}

// DefaultSelection is an alias for FromPresetID(DefaultPresetID).
func DefaultSelection() (WorkspacePresetSelection, error) {
	return FromPresetID(DefaultPresetID)
}

// ComposeSelection starts from base.Packs, appends each addPack not already
// present, then removes each removePack (idempotent if already absent).
// AddedPacks is recomputed as packs \ base preset's packs. Fails with
// UnknownPackError if any addPacks id is unresolved; removePacks ids and the
// base's own packs are not checked.
func ComposeSelection(base WorkspacePresetSelection, addPacks, removePacks []string) (WorkspacePresetSelection, error) {
	for _, id := range addPacks {
		if !PackKnown(id) {
			return WorkspacePresetSelection{}, &UnknownPackError{ID: id}
		}
	}

	present := make(map[string]bool, len(base.Packs))
	packs := make([]string, 0, len(base.Packs)+len(addPacks))
	for _, p := range base.Packs {
		if !present[p] {
			packs = append(packs, p)
			present[p] = true
		}
	}
	for _, p := range addPacks {
		if !present[p] {
			packs = append(packs, p)
			present[p] = true
		}
	}

	removeSet := make(map[string]bool, len(removePacks))
	for _, p := range removePacks {
		removeSet[p] = true
	}
	result := make([]string, 0, len(packs))
	for _, p := range packs {
		if !removeSet[p] {
			result = append(result, p)
		}
	}

	basePreset, err := PresetByID(base.PresetID)
	var basePacks map[string]bool
	if err == nil {
		basePacks = make(map[string]bool, len(basePreset.Packs))
		for _, p := range basePreset.Packs {
			basePacks[p] = true
		}
	} else {
		basePacks = map[string]bool{}
	}

	var added []string
	for _, p := range result {
		if !basePacks[p] {
			added = append(added, p)
		}
	}

	return WorkspacePresetSelection{
		PresetID:        base.PresetID,
		Packs:           result,
		AddedPacks:      added,
		ConfigOverrides: base.ConfigOverrides,
		Metadata:        base.Metadata,
	}, nil
}

// SelectionDiffOf computes the set-difference between two selections.
// added_packs/removed_packs are sorted ascending for stable JSON; the
// selections themselves keep insertion order.
func SelectionDiffOf(before *WorkspacePresetSelection, after WorkspacePresetSelection) SelectionDiff {
	beforeSet := map[string]bool{}
	diff := SelectionDiff{AfterPresetID: after.PresetID}
	if before != nil {
		diff.BeforePresetID = before.PresetID
		for _, p := range before.Packs {
			beforeSet[p] = true
		}
	}

	afterSet := make(map[string]bool, len(after.Packs))
	for _, p := range after.Packs {
		afterSet[p] = true
	}

	for _, p := range after.Packs {
		if !beforeSet[p] {
			diff.AddedPacks = append(diff.AddedPacks, p)
		}
	}
	if before != nil {
		for _, p := range before.Packs {
			if !afterSet[p] {
				diff.RemovedPacks = append(diff.RemovedPacks, p)
			}
		}
	}

	sort.Strings(diff.AddedPacks)
	sort.Strings(diff.RemovedPacks)
	return diff
}

// RiskyPackIDs returns the packs in selection order whose registry entry
// sets RequiresConfirmation.
func RiskyPackIDs(selection WorkspacePresetSelection) []string {
	var risky []string
	for _, id := range selection.Packs {
		if pack, err := PackByID(id); err == nil && pack.RequiresConfirmation {
			risky = append(risky, id)
		}
	}
	return risky
}
