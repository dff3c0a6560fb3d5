// Package consent implements the stable report envelope, consent-reason
// enumerations, and shell-script generation shared by every risk-elevating
// command (onboard, preset apply/import/export/intent, security set/recommend).
package consent

// ConsentReasonCode explains why a preset-affecting operation demands
// explicit approval.
type ConsentReasonCode string

const (
	ReasonRiskyPack         ConsentReasonCode = "risky_pack"
	ReasonRebuild           ConsentReasonCode = "rebuild"
	ReasonSecurityNonStrict ConsentReasonCode = "security_non_strict"
)

func (c ConsentReasonCode) I18nKey() string { return "consent.reason." + string(c) }

// SecurityRiskConsentReasonCode explains why a security profile change
// demands explicit approval.
type SecurityRiskConsentReasonCode string

const (
	RiskReasonNonStrictProfile   SecurityRiskConsentReasonCode = "non_strict_profile"
	RiskReasonNonCliAutoApproval SecurityRiskConsentReasonCode = "non_cli_auto_approval"
)

func (c SecurityRiskConsentReasonCode) I18nKey() string { return "security.risk_reason." + string(c) }

// OnboardWarningCode flags a consent gap surfaced during onboarding.
type OnboardWarningCode string

const (
	WarningRiskyPackRequiresConsent         OnboardWarningCode = "risky_pack_requires_consent"
	WarningSecurityNonStrictRequiresConsent OnboardWarningCode = "security_non_strict_requires_consent"
)

func (c OnboardWarningCode) I18nKey() string { return "onboard.warning." + string(c) }

// ReasonKeys maps each reason code to its i18n key, preserving order, for
// the parallel consent_reasons/consent_reason_keys report fields.
func ReasonKeys(reasons []ConsentReasonCode) []string {
	if len(reasons) == 0 {
		return nil
	}
	keys := make([]string, len(reasons))
	for i, r := range reasons {
		keys[i] = r.I18nKey()
	}
	return keys
}

// RiskReasonKeys is ReasonKeys for SecurityRiskConsentReasonCode.
func RiskReasonKeys(reasons []SecurityRiskConsentReasonCode) []string {
	if len(reasons) == 0 {
		return nil
	}
	keys := make([]string, len(reasons))
	for i, r := range reasons {
		keys[i] = r.I18nKey()
	}
	return keys
}

// PresetApplyConsentReasons mirrors the original gating rule: a risky pack
// in the target selection demands consent unless dry-run or --yes-risky was
// given; a pending rebuild demands consent unless dry-run or --yes-rebuild
// was given.
func PresetApplyConsentReasons(riskyPacks []string, dryRun, yesRisky, rebuild, yesRebuild bool) []ConsentReasonCode {
	var reasons []ConsentReasonCode
	if len(riskyPacks) > 0 && !dryRun && !yesRisky {
		reasons = append(reasons, ReasonRiskyPack)
	}
	if rebuild && !dryRun && !yesRebuild {
		reasons = append(reasons, ReasonRebuild)
	}
	return reasons
}

// SecurityApplyConsentReasons mirrors the original gating rule: any
// non-strict profile recommendation demands consent.
func SecurityApplyConsentReasons(requiresExplicitConsent bool) []SecurityRiskConsentReasonCode {
	if requiresExplicitConsent {
		return []SecurityRiskConsentReasonCode{RiskReasonNonStrictProfile}
	}
	return nil
}
