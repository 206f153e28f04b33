package hts

const (
	SeverityNone     = "No risk"
	SeverityLow      = "Low risk"
	SeverityModerate = "Moderate risk"
	SeverityHigh     = "High risk"

	STINoSymptoms = "No STI symptoms"
	STISymptoms   = "STI symptoms reported"
)

// Band upper bounds. The HIV and partner tables differ and are kept as
// separate literals.
const (
	hivLowMax      = 5
	hivModerateMax = 10

	partnerLowMax      = 4
	partnerModerateMax = 8
)

const (
	AdvisoryPrEP      = "PrEP recommended"
	AdvisorySTI       = "Refer for STI management"
	AdvisoryEducation = "Provide HIV prevention education"
)

func HIVRiskSeverity(score int) string {
	switch {
	case score <= 0:
		return SeverityNone
	case score <= hivLowMax:
		return SeverityLow
	case score <= hivModerateMax:
		return SeverityModerate
	default:
		return SeverityHigh
	}
}

func PartnerRiskSeverity(score int) string {
	switch {
	case score <= 0:
		return SeverityNone
	case score <= partnerLowMax:
		return SeverityLow
	case score <= partnerModerateMax:
		return SeverityModerate
	default:
		return SeverityHigh
	}
}

func STISeverity(score int) string {
	if score <= 0 {
		return STINoSymptoms
	}
	return STISymptoms
}

// SeverityRank orders the risk labels from none (0) to high (3); unknown
// labels rank -1.
func SeverityRank(label string) int {
	switch label {
	case SeverityNone:
		return 0
	case SeverityLow:
		return 1
	case SeverityModerate:
		return 2
	case SeverityHigh:
		return 3
	}
	return -1
}

// Advisories derives the counselor prompts for a scored assessment.
func Advisories(r RiskScoreResult) []string {
	out := []string{}
	if PrEPRecommended(r) {
		out = append(out, AdvisoryPrEP)
	}
	if r.STIScreeningScore > 0 {
		out = append(out, AdvisorySTI)
	}
	if r.KnowledgeScore*2 < MaxScore(GroupKnowledge) {
		out = append(out, AdvisoryEducation)
	}
	return out
}

func PrEPRecommended(r RiskScoreResult) bool {
	return HIVRiskSeverity(r.HIVRiskScore) == SeverityHigh || PartnerRiskSeverity(r.PartnerRiskScore) == SeverityHigh
}
