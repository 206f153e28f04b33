package hts

import (
	"time"

	"github.com/google/uuid"
)

var validTestSettings = map[string]bool{
	"facility": true, "community": true, "pmtct": true, "index": true,
}

// PreTest is an HTS pre-test counselling record. Score and severity fields are
// always derived from Answers by the service.
type PreTest struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	PatientID   uuid.UUID       `db:"patient_id" json:"patient_id"`
	CounselorID string          `db:"counselor_id" json:"counselor_id"`
	ClientCode  *string         `db:"client_code" json:"client_code,omitempty"`
	TestSetting string          `db:"test_setting" json:"test_setting"`
	SessionDate time.Time       `db:"session_date" json:"session_date"`
	Answers     map[string]bool `db:"answers" json:"answers"`

	HIVRiskScore        int    `db:"hiv_risk_score" json:"hiv_risk_score"`
	PartnerRiskScore    int    `db:"partner_risk_score" json:"partner_risk_score"`
	STIScreeningScore   int    `db:"sti_screening_score" json:"sti_screening_score"`
	KnowledgeScore      int    `db:"knowledge_score" json:"knowledge_score"`
	HIVRiskSeverity     string `db:"hiv_risk_severity" json:"hiv_risk_severity"`
	PartnerRiskSeverity string `db:"partner_risk_severity" json:"partner_risk_severity"`
	PrEPRecommended     bool   `db:"prep_recommended" json:"prep_recommended"`

	Note      *string   `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// applyScore copies a computed result onto the record.
func (p *PreTest) applyScore(r RiskScoreResult) {
	p.HIVRiskScore = r.HIVRiskScore
	p.PartnerRiskScore = r.PartnerRiskScore
	p.STIScreeningScore = r.STIScreeningScore
	p.KnowledgeScore = r.KnowledgeScore
	p.HIVRiskSeverity = r.HIVRiskSeverity
	p.PartnerRiskSeverity = r.PartnerRiskSeverity
	p.PrEPRecommended = PrEPRecommended(r)
}

// Result rebuilds the full score view, advisories included, from the stored
// fields.
func (p *PreTest) Result() RiskScoreResult {
	r := RiskScoreResult{
		HIVRiskScore:      p.HIVRiskScore,
		PartnerRiskScore:  p.PartnerRiskScore,
		STIScreeningScore: p.STIScreeningScore,
		KnowledgeScore:    p.KnowledgeScore,
	}
	r.HIVRiskSeverity = HIVRiskSeverity(r.HIVRiskScore)
	r.PartnerRiskSeverity = PartnerRiskSeverity(r.PartnerRiskScore)
	r.STISeverity = STISeverity(r.STIScreeningScore)
	r.Advisories = Advisories(r)
	return r
}
