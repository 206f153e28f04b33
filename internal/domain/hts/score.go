package hts

// RiskScoreResult holds the four group scores plus their display labels.
// Labels and advisories are decision support only; nothing downstream gates
// on them.
type RiskScoreResult struct {
	HIVRiskScore      int `json:"hiv_risk_score"`
	PartnerRiskScore  int `json:"partner_risk_score"`
	STIScreeningScore int `json:"sti_screening_score"`
	KnowledgeScore    int `json:"knowledge_score"`

	HIVRiskSeverity     string   `json:"hiv_risk_severity"`
	PartnerRiskSeverity string   `json:"partner_risk_severity"`
	STISeverity         string   `json:"sti_severity"`
	Advisories          []string `json:"advisories"`
}

// Score sums the weight of every indicator answered true, per group.
func Score(answers Answers) RiskScoreResult {
	var r RiskScoreResult
	for _, w := range weightTable {
		if !answers[w.Indicator] {
			continue
		}
		switch w.Group {
		case GroupHIVRisk:
			r.HIVRiskScore += w.Weight
		case GroupPartnerRisk:
			r.PartnerRiskScore += w.Weight
		case GroupSTIScreening:
			r.STIScreeningScore += w.Weight
		case GroupKnowledge:
			r.KnowledgeScore += w.Weight
		}
	}
	r.HIVRiskSeverity = HIVRiskSeverity(r.HIVRiskScore)
	r.PartnerRiskSeverity = PartnerRiskSeverity(r.PartnerRiskScore)
	r.STISeverity = STISeverity(r.STIScreeningScore)
	r.Advisories = Advisories(r)
	return r
}

func GroupScore(answers Answers, g Group) int {
	total := 0
	for _, w := range weightTable {
		if w.Group == g && answers[w.Indicator] {
			total += w.Weight
		}
	}
	return total
}

// MaxScore is the group score with every indicator answered true.
func MaxScore(g Group) int {
	total := 0
	for _, w := range weightTable {
		if w.Group == g {
			total += w.Weight
		}
	}
	return total
}

// Score returns the group score held in r.
func (r RiskScoreResult) Score(g Group) int {
	switch g {
	case GroupHIVRisk:
		return r.HIVRiskScore
	case GroupPartnerRisk:
		return r.PartnerRiskScore
	case GroupSTIScreening:
		return r.STIScreeningScore
	case GroupKnowledge:
		return r.KnowledgeScore
	}
	return 0
}
