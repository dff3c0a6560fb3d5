package security

import "strings"

// RiskTier classifies how much latitude a recommended profile grants.
type RiskTier string

const (
	RiskLow      RiskTier = "low"
	RiskMedium   RiskTier = "medium"
	RiskHigh     RiskTier = "high"
	RiskCritical RiskTier = "critical"
)

// packsLiftingRecommendation lift the recommendation toward balanced or
// higher: each names a capability the default strict profile would block or
// gate behind an approval the pack inherently can't honor unattended.
var packsLiftingRecommendation = map[string]bool{
	"update":         true,
	"network-egress": true,
	"workspace-exec": true,
}

// unattendedIntentTerms lift the recommendation further when present in the
// intent text (case-insensitive substring match).
var unattendedIntentTerms = []string{"unattended", "autonomous", "no prompt", "no-prompt"}

// readOnlyIntentTerms floor the recommendation at strict regardless of
// packs, since the operator explicitly asked for no mutation.
var readOnlyIntentTerms = []string{"read only", "read-only", "dry run", "dry-run"}

// Recommendation is the outcome of RecommendSecurityProfile.
type Recommendation struct {
	ProfileID               ProfileID `json:"profile_id"`
	Label                   string    `json:"label"`
	RiskTier                RiskTier  `json:"risk_tier"`
	Reasons                 []string  `json:"reasons"`
	RequiresExplicitConsent bool      `json:"requires_explicit_consent"`
}

// RecommendSecurityProfile derives a security profile from an optional
// free-text intent and the resolved pack list: risky packs and unattended
// intent terms lift the recommendation toward higher autonomy; explicit
// read-only/dry-run intent language floors it at strict regardless of
// packs. requires_explicit_consent is true whenever the recommendation is
// non-strict, since applying it would relax a guardrail.
func RecommendSecurityProfile(intent *string, packs []string) Recommendation {
	var reasons []string
	profile := ProfileStrict

	lowerIntent := ""
	if intent != nil {
		lowerIntent = strings.ToLower(*intent)
	}

	for _, term := range readOnlyIntentTerms {
		if lowerIntent != "" && strings.Contains(lowerIntent, term) {
			reasons = append(reasons, "intent explicitly requests read-only/dry-run behavior")
			return Recommendation{
				ProfileID:               ProfileStrict,
				Label:                   Label(ProfileStrict),
				RiskTier:                RiskLow,
				Reasons:                 reasons,
				RequiresExplicitConsent: false,
			}
		}
	}

	var liftingPacks []string
	for _, pack := range packs {
		if packsLiftingRecommendation[pack] {
			liftingPacks = append(liftingPacks, pack)
		}
	}
	if len(liftingPacks) > 0 {
		profile = ProfileBalanced
		reasons = append(reasons, "selection includes packs requiring confirmation: "+strings.Join(liftingPacks, ", "))
	}

	for _, term := range unattendedIntentTerms {
		if lowerIntent != "" && strings.Contains(lowerIntent, term) {
			if riskRank[profile] < riskRank[ProfileFlexible] {
				profile = ProfileFlexible
			}
			reasons = append(reasons, "intent requests unattended/autonomous operation")
			break
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "no risk-elevating packs or intent terms detected")
	}

	tier := riskTierForProfile(profile)
	return Recommendation{
		ProfileID:               profile,
		Label:                   Label(profile),
		RiskTier:                tier,
		Reasons:                 reasons,
		RequiresExplicitConsent: profile.IsNonStrict(),
	}
}

func riskTierForProfile(id ProfileID) RiskTier {
	switch id {
	case ProfileStrict:
		return RiskLow
	case ProfileBalanced:
		return RiskMedium
	case ProfileFlexible:
		return RiskHigh
	case ProfileFull:
		return RiskCritical
	default:
		return RiskMedium
	}
}
