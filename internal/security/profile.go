// Package security implements the Security Profile Engine: the four
// code-defined autonomy profiles, profile recommendation from an intent
// string and a pack list, and the field-level change report the CLI prints
// or emits as JSON before an apply is committed.
package security

import (
	"fmt"

	"github.com/chumyin/zeroclaw/internal/config"
)

// ProfileID is one of the four monotonically risk-ordered security
// profiles. strict < balanced < flexible < full.
type ProfileID string

const (
	ProfileStrict   ProfileID = "strict"
	ProfileBalanced ProfileID = "balanced"
	ProfileFlexible ProfileID = "flexible"
	ProfileFull     ProfileID = "full"
)

// riskRank orders profiles by risk; Valid and RecommendSecurityProfile use it.
var riskRank = map[ProfileID]int{
	ProfileStrict:   0,
	ProfileBalanced: 1,
	ProfileFlexible: 2,
	ProfileFull:     3,
}

// IsNonStrict reports whether id is any profile above strict.
func (id ProfileID) IsNonStrict() bool {
	return id != ProfileStrict
}

// Valid reports whether id names one of the four known profiles.
func (id ProfileID) Valid() bool {
	_, ok := riskRank[id]
	return ok
}

// AutonomyConfigForProfileID returns the code-defined AutonomyConfig for a
// profile. The four profiles differ monotonically along every axis in the
// order strict < balanced < flexible < full: each step relaxes (never
// tightens) workspace confinement, approval gates, and spend/rate ceilings.
func AutonomyConfigForProfileID(id ProfileID) (config.AutonomyConfig, error) {
	switch id {
	case ProfileStrict:
		return config.AutonomyConfig{
			Level:                        "read_only",
			WorkspaceOnly:                true,
			RequireApprovalForMediumRisk: true,
			BlockHighRiskCommands:        true,
			AllowNonCliAutoApproval:      false,
			MaxActionsPerHour:            10,
			MaxCostPerDayCents:           200,
		}, nil
	case ProfileBalanced:
		return config.AutonomyConfig{
			Level:                        "supervised",
			WorkspaceOnly:                true,
			RequireApprovalForMediumRisk: true,
			BlockHighRiskCommands:        true,
			AllowNonCliAutoApproval:      false,
			MaxActionsPerHour:            30,
			MaxCostPerDayCents:           1000,
		}, nil
	case ProfileFlexible:
		return config.AutonomyConfig{
			Level:                        "supervised",
			WorkspaceOnly:                false,
			RequireApprovalForMediumRisk: true,
			BlockHighRiskCommands:        false,
			AllowNonCliAutoApproval:      false,
			MaxActionsPerHour:            60,
			MaxCostPerDayCents:           3000,
		}, nil
	case ProfileFull:
		return config.AutonomyConfig{
			Level:                        "full",
			WorkspaceOnly:                false,
			RequireApprovalForMediumRisk: false,
			BlockHighRiskCommands:        false,
			AllowNonCliAutoApproval:      true,
			MaxActionsPerHour:            200,
			MaxCostPerDayCents:           10000,
		}, nil
	default:
		return config.AutonomyConfig{}, fmt.Errorf("unknown security profile id %q", id)
	}
}

// ProfileIDFromAutonomy recovers the profile id for an arbitrary
// AutonomyConfig: the first profile, checked from full down to strict, whose
// code-defined config equals it on level and the four guardrail booleans.
// The numeric limits are not compared. Returns "custom" when no profile
// matches.
func ProfileIDFromAutonomy(a config.AutonomyConfig) ProfileID {
	for _, id := range []ProfileID{ProfileFull, ProfileFlexible, ProfileBalanced, ProfileStrict} {
		want, _ := AutonomyConfigForProfileID(id)
		if want.Level == a.Level &&
			want.WorkspaceOnly == a.WorkspaceOnly &&
			want.RequireApprovalForMediumRisk == a.RequireApprovalForMediumRisk &&
			want.BlockHighRiskCommands == a.BlockHighRiskCommands &&
			want.AllowNonCliAutoApproval == a.AllowNonCliAutoApproval {
			return id
		}
	}
	return "custom"
}

// Label returns the human-facing label for a profile id (falls back to the
// id itself for "custom" and any other unknown id).
func Label(id ProfileID) string {
	switch id {
	case ProfileStrict:
		return "Strict"
	case ProfileBalanced:
		return "Balanced"
	case ProfileFlexible:
		return "Flexible"
	case ProfileFull:
		return "Full"
	default:
		return string(id)
	}
}

// NonCliApprovalMode renders the boolean gate as the CLI's two-value enum.
func NonCliApprovalMode(autoEnabled bool) string {
	if autoEnabled {
		return "auto"
	}
	return "manual"
}

// CentsToUSDString formats integer cents as a two-decimal dollar string.
func CentsToUSDString(cents uint32) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}
