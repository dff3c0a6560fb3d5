package security

import "testing"

func TestRecommendSecurityProfileDefault(t *testing.T) {
	rec := RecommendSecurityProfile(nil, nil)
	if rec.ProfileID != ProfileStrict {
		t.Errorf("ProfileID = %s, want strict", rec.ProfileID)
	}
	if rec.RequiresExplicitConsent {
		t.Error("strict recommendation should not require explicit consent")
	}
}

func TestRecommendSecurityProfileRiskyPacks(t *testing.T) {
	rec := RecommendSecurityProfile(nil, []string{"workspace-exec"})
	if rec.ProfileID != ProfileBalanced {
		t.Errorf("ProfileID = %s, want balanced", rec.ProfileID)
	}
	if !rec.RequiresExplicitConsent {
		t.Error("balanced recommendation should require explicit consent")
	}
}

func TestRecommendSecurityProfileUnattendedIntent(t *testing.T) {
	intent := "run this unattended every night"
	rec := RecommendSecurityProfile(&intent, []string{"update"})
	if rec.ProfileID != ProfileFlexible {
		t.Errorf("ProfileID = %s, want flexible", rec.ProfileID)
	}
}

func TestRecommendSecurityProfileReadOnlyFloor(t *testing.T) {
	intent := "please do a dry run, read only"
	rec := RecommendSecurityProfile(&intent, []string{"workspace-exec", "network-egress"})
	if rec.ProfileID != ProfileStrict {
		t.Errorf("read-only intent should floor at strict regardless of packs, got %s", rec.ProfileID)
	}
	if rec.RiskTier != RiskLow {
		t.Errorf("RiskTier = %s, want low", rec.RiskTier)
	}
}

func TestRecommendSecurityProfileNoRiskReasons(t *testing.T) {
	rec := RecommendSecurityProfile(nil, []string{"read-docs"})
	if len(rec.Reasons) == 0 {
		t.Error("expected at least one reason even for the default recommendation")
	}
}
