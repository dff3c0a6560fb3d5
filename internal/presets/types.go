// Package presets implements the Preset Composition Engine: an immutable,
// code-embedded catalog of presets and packs, selection composition and
// diffing, an intent planner that turns free text into pack changes, and
// the on-disk selection/payload document format.
package presets

import "fmt"

// Preset is an immutable, code-embedded base capability bundle.
type Preset struct {
	ID          string
	Description string
	Packs       []string // ordered pack ids
}

// Pack is an immutable, code-embedded capability unit.
type Pack struct {
	ID                   string
	Description          string
	BuildFeatures        []string // build-feature tags (cargo_features analog)
	RequiresConfirmation bool     // marks the pack as risky
	CapabilityTerms      []string // keywords the intent planner matches against
}

// WorkspacePresetSelection is the persistent, on-disk state of which preset
// and packs a workspace currently has active.
type WorkspacePresetSelection struct {
	PresetID        string                 `json:"preset_id"`
	Packs           []string               `json:"packs"`       // effective pack set, insertion order
	AddedPacks      []string               `json:"added_packs"` // packs not in the base preset
	ConfigOverrides map[string]interface{} `json:"config_overrides,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// SelectionDiff is a pure function of two selections.
type SelectionDiff struct {
	BeforePresetID string   `json:"before_preset_id,omitempty"`
	AfterPresetID  string   `json:"after_preset_id"`
	AddedPacks     []string `json:"added_packs"`
	RemovedPacks   []string `json:"removed_packs"`
}

// CapabilitySignal is one capability rule's contribution to an IntentPlan.
type CapabilitySignal struct {
	CapabilityID string   `json:"capability_id"`
	MatchedTerms []string `json:"matched_terms"`
	Weight       float64  `json:"weight"`
	Rationale    string   `json:"rationale"`
}

// PresetScore is one candidate preset's ranking contribution.
type PresetScore struct {
	PresetID string   `json:"id"`
	Score    float64  `json:"score"`
	Reasons  []string `json:"reasons"`
}

// ConfidenceBreakdown itemizes how IntentPlan.Confidence was derived.
type ConfidenceBreakdown struct {
	Base                 float64 `json:"base"`
	SignalBonus          float64 `json:"signal_bonus"`
	RankingBonus         float64 `json:"ranking_bonus"`
	ContradictionPenalty float64 `json:"contradiction_penalty"`
	FinalScore           float64 `json:"final_score"`
}

// IntentPlan is the output of the intent planner: deterministic and pure
// given (text, rules, current).
type IntentPlan struct {
	Intent              string              `json:"intent"`
	BasePresetID        string              `json:"base_preset_id,omitempty"`
	AddPacks            []string            `json:"add_packs"`
	RemovePacks         []string            `json:"remove_packs"`
	Confidence          float64             `json:"confidence"`
	Reasons             []string            `json:"reasons"`
	CapabilitySignals   []CapabilitySignal  `json:"capability_signals"`
	PresetRanking       []PresetScore       `json:"preset_ranking"`
	ConfidenceBreakdown ConfidenceBreakdown `json:"confidence_breakdown"`
}

// CapabilityRule maps free-text terms onto pack add/remove suggestions.
type CapabilityRule struct {
	CapabilityID  string   `json:"capability_id"`
	PositiveTerms []string `json:"positive_terms"`
	NegativeTerms []string `json:"negative_terms"`
	AddPacks      []string `json:"add_packs"`
	RemovePacks   []string `json:"remove_packs"`
	Weight        float64  `json:"weight"`
}

// UnknownPresetError reports a preset id absent from the registry.
type UnknownPresetError struct{ ID string }

func (e *UnknownPresetError) Error() string { return fmt.Sprintf("unknown preset: %s", e.ID) }

// UnknownPackError reports a pack id absent from the registry.
type UnknownPackError struct{ ID string }

func (e *UnknownPackError) Error() string { return fmt.Sprintf("unknown pack: %s", e.ID) }

// ValidationError aggregates every problem found in one preset payload file.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %v", e.Path, e.Errors)
}
