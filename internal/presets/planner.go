package presets

import (
	"math"
	"sort"
	"strings"
)

// contradictionPenaltyPerRule is subtracted from confidence once per rule
// whose text matches both a positive and a negative term ("automation but
// no update").
const contradictionPenaltyPerRule = 0.15

// PlanFromIntentWithRules computes an IntentPlan from free text, an
// optional current selection, and a resolved rule set. Deterministic and
// pure: same (text, rules, current) always yields the same plan.
func PlanFromIntentWithRules(text string, current *WorkspacePresetSelection, rules []CapabilityRule) IntentPlan {
	lowerText := strings.ToLower(text)

	var signals []CapabilitySignal
	var reasons []string
	addPacks := []string{}
	removePacks := []string{}
	addSeen := map[string]bool{}
	removeSeen := map[string]bool{}
	contradictions := 0

	for _, rule := range rules {
		posMatches := matchTerms(lowerText, rule.PositiveTerms)
		negMatches := matchTerms(lowerText, rule.NegativeTerms)

		if len(posMatches) > 0 && len(negMatches) > 0 {
			contradictions++
			reasons = append(reasons, "contradiction in capability '"+rule.CapabilityID+"': matched both "+
				strings.Join(posMatches, ",")+" and "+strings.Join(negMatches, ","))
			continue
		}

		if len(posMatches) == 0 {
			continue
		}

		weight := rule.Weight * (1 + math.Log(1+float64(len(posMatches))))
		signals = append(signals, CapabilitySignal{
			CapabilityID: rule.CapabilityID,
			MatchedTerms: posMatches,
			Weight:       weight,
			Rationale:    "matched terms: " + strings.Join(posMatches, ", "),
		})
		reasons = append(reasons, "capability '"+rule.CapabilityID+"' signaled by: "+strings.Join(posMatches, ", "))

		for _, pack := range rule.AddPacks {
			if !addSeen[pack] {
				addPacks = append(addPacks, pack)
				addSeen[pack] = true
			}
		}
		for _, pack := range rule.RemovePacks {
			if !removeSeen[pack] {
				removePacks = append(removePacks, pack)
				removeSeen[pack] = true
			}
		}
	}

	ranking := rankPresets(signals, addPacks, rules)

	basePresetID := ""
	if len(ranking) > 0 && len(signals) > 0 {
		basePresetID = ranking[0].PresetID
	}
	// No signal fired: if a current selection exists, leave base_preset_id
	// unset so the caller keeps it; otherwise fall through to the default.

	base := 0.3
	signalBonus := math.Min(0.1*float64(len(signals)), 0.3)
	rankingBonus := 0.0
	if len(ranking) > 0 {
		rankingBonus = math.Min(ranking[0].Score*0.1, 0.3)
	}
	contradictionPenalty := contradictionPenaltyPerRule * float64(contradictions)
	final := clamp(base+signalBonus+rankingBonus-contradictionPenalty, 0, 1)

	if len(signals) == 0 && current == nil {
		reasons = append(reasons, "no capability signals matched; defaulting to "+DefaultPresetID)
	}

	return IntentPlan{
		Intent:            text,
		BasePresetID:      basePresetID,
		AddPacks:          addPacks,
		RemovePacks:       removePacks,
		Confidence:        final,
		Reasons:           reasons,
		CapabilitySignals: signals,
		PresetRanking:     ranking,
		ConfidenceBreakdown: ConfidenceBreakdown{
			Base:                 base,
			SignalBonus:          signalBonus,
			RankingBonus:         rankingBonus,
			ContradictionPenalty: contradictionPenalty,
			FinalScore:           final,
		},
	}
}

// matchTerms returns every term in terms that appears as a substring of
// lowerText, preserving terms' declared order.
func matchTerms(lowerText string, terms []string) []string {
	var matched []string
	for _, term := range terms {
		if strings.Contains(lowerText, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

// rankPresets scores each catalog preset by summing the weights of every
// signal whose add-packs the preset's own packs already cover, plus a fit
// bonus for presets that cover the full addPacks set. Ranking is sorted by
// score descending, then by id ascending for stability. rules is the same
// resolved rule set (builtin plus any --capabilities-file overrides) that
// produced signals, so coverage scoring sees exactly the AddPacks the
// caller resolved rather than the package's builtin defaults.
func rankPresets(signals []CapabilitySignal, addPacks []string, rules []CapabilityRule) []PresetScore {
	signalsByCapability := map[string]CapabilitySignal{}
	for _, s := range signals {
		signalsByCapability[s.CapabilityID] = s
	}

	presets := ListPresets()
	scores := make([]PresetScore, 0, len(presets))
	for _, preset := range presets {
		packSet := make(map[string]bool, len(preset.Packs))
		for _, p := range preset.Packs {
			packSet[p] = true
		}

		var score float64
		var reasons []string
		for capabilityID, signal := range signalsByCapability {
			if packsAllIn(ruleAddPacksFor(capabilityID, rules), packSet) {
				score += signal.Weight
				reasons = append(reasons, "covers capability '"+capabilityID+"'")
			}
		}

		if len(addPacks) > 0 && packsAllIn(addPacks, packSet) {
			score += 0.5
			reasons = append(reasons, "preset already covers every requested pack")
		}

		sort.Strings(reasons)
		scores = append(scores, PresetScore{PresetID: preset.ID, Score: score, Reasons: reasons})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].PresetID < scores[j].PresetID
	})
	return scores
}

// ruleAddPacksFor looks up which packs a capability id adds within the
// resolved rule set, for scoring whether a candidate preset already covers
// it. Searching rules (not the builtin table) is what lets
// --capabilities-file overrides and brand-new capability ids affect
// preset-coverage scoring, not just signal detection.
func ruleAddPacksFor(capabilityID string, rules []CapabilityRule) []string {
	for _, r := range rules {
		if r.CapabilityID == capabilityID {
			return r.AddPacks
		}
	}
	return nil
}

func packsAllIn(packs []string, set map[string]bool) bool {
	if len(packs) == 0 {
		return false
	}
	for _, p := range packs {
		if !set[p] {
			return false
		}
	}
	return true
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// SelectionFromPlan applies an IntentPlan: if the plan names a base preset,
// start there; otherwise reuse current if present, else the default
// selection. ComposeSelection then layers the plan's add/remove packs on
// top.
func SelectionFromPlan(plan IntentPlan, current *WorkspacePresetSelection) (WorkspacePresetSelection, error) {
	var base WorkspacePresetSelection
	var err error

	switch {
	case plan.BasePresetID != "":
		base, err = FromPresetID(plan.BasePresetID)
	case current != nil:
		base = *current
	default:
		base, err = DefaultSelection()
	}
	if err != nil {
		return WorkspacePresetSelection{}, err
	}

	return ComposeSelection(base, plan.AddPacks, plan.RemovePacks)
}
