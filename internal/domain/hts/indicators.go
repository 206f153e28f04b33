// Package hts implements the HIV Testing Services pre-test risk assessment:
// the weighted indicator table, group scores, severity bands, and the
// pre-test records counselors submit them with.
package hts

import (
	"fmt"
	"sort"
)

type Indicator string

type Group string

const (
	GroupHIVRisk      Group = "hiv_risk"
	GroupPartnerRisk  Group = "partner_risk"
	GroupSTIScreening Group = "sti_screening"
	GroupKnowledge    Group = "knowledge"
)

var Groups = []Group{GroupHIVRisk, GroupPartnerRisk, GroupSTIScreening, GroupKnowledge}

// HIV behavioral risk
const (
	RiskUnprotectedAnalSex    Indicator = "risk_unprotected_anal_sex"
	RiskUnprotectedVaginalSex Indicator = "risk_unprotected_vaginal_sex"
	RiskSexWithHIVPositive    Indicator = "risk_sex_with_hiv_positive"
	RiskMultipleSexPartners   Indicator = "risk_multiple_sex_partners"
	RiskTransactionalSex      Indicator = "risk_transactional_sex"
	RiskInjectingDrugUse      Indicator = "risk_injecting_drug_use"
	RiskNeedleSharing         Indicator = "risk_needle_sharing"
	RiskSTIInLastYear         Indicator = "risk_sti_in_last_year"
	RiskCondomBurst           Indicator = "risk_condom_burst"
	RiskBloodTransfusion      Indicator = "risk_blood_transfusion"
	RiskAlcoholDrugsBeforeSex Indicator = "risk_alcohol_drugs_before_sex"
	RiskUnsterileSkinPiercing Indicator = "risk_unsterile_skin_piercing"
	RiskOccupationalExposure  Indicator = "risk_occupational_exposure"
)

// Partner risk
const (
	PartnerHIVPositive      Indicator = "partner_hiv_positive"
	PartnerInjectsDrugs     Indicator = "partner_injects_drugs"
	PartnerMultiplePartners Indicator = "partner_multiple_partners"
	PartnerSexWorker        Indicator = "partner_sex_worker"
	PartnerMSM              Indicator = "partner_msm"
	PartnerSTISymptoms      Indicator = "partner_sti_symptoms"
	PartnerUnknownStatus    Indicator = "partner_unknown_status"
	PartnerNotOnART         Indicator = "partner_not_on_art"
	PartnerRefusesCondoms   Indicator = "partner_refuses_condoms"
)

// STI syndromic screening
const (
	STIGenitalDischarge   Indicator = "sti_genital_discharge"
	STIGenitalUlcer       Indicator = "sti_genital_ulcer"
	STILowerAbdominalPain Indicator = "sti_lower_abdominal_pain"
	STIScrotalSwelling    Indicator = "sti_scrotal_swelling"
	STIInguinalBubo       Indicator = "sti_inguinal_bubo"
	STIPainfulUrination   Indicator = "sti_painful_urination"
)

// HIV knowledge; a true answer means the client answered correctly.
const (
	KnowledgePreviouslyTested          Indicator = "knowledge_previously_tested"
	KnowledgeTransmissionSex           Indicator = "knowledge_transmission_sex"
	KnowledgeTransmissionBlood         Indicator = "knowledge_transmission_blood"
	KnowledgeTransmissionMotherToChild Indicator = "knowledge_transmission_mother_to_child"
	KnowledgePreventionCondoms         Indicator = "knowledge_prevention_condoms"
	KnowledgeHealthyLookingCanHaveHIV  Indicator = "knowledge_healthy_looking_can_have_hiv"
	KnowledgeARTAvailable              Indicator = "knowledge_art_available"
	KnowledgeWindowPeriod              Indicator = "knowledge_window_period"
)

// WeightedIndicator is one row of the scoring table.
type WeightedIndicator struct {
	Indicator Indicator `json:"indicator"`
	Group     Group     `json:"group"`
	Weight    int       `json:"weight"`
}

var weightTable = []WeightedIndicator{
	{RiskUnprotectedAnalSex, GroupHIVRisk, 3},
	{RiskUnprotectedVaginalSex, GroupHIVRisk, 3},
	{RiskSexWithHIVPositive, GroupHIVRisk, 3},
	{RiskMultipleSexPartners, GroupHIVRisk, 2},
	{RiskTransactionalSex, GroupHIVRisk, 2},
	{RiskInjectingDrugUse, GroupHIVRisk, 2},
	{RiskNeedleSharing, GroupHIVRisk, 2},
	{RiskSTIInLastYear, GroupHIVRisk, 2},
	{RiskCondomBurst, GroupHIVRisk, 1},
	{RiskBloodTransfusion, GroupHIVRisk, 1},
	{RiskAlcoholDrugsBeforeSex, GroupHIVRisk, 1},
	{RiskUnsterileSkinPiercing, GroupHIVRisk, 1},
	{RiskOccupationalExposure, GroupHIVRisk, 1},

	{PartnerHIVPositive, GroupPartnerRisk, 3},
	{PartnerInjectsDrugs, GroupPartnerRisk, 3},
	{PartnerMultiplePartners, GroupPartnerRisk, 2},
	{PartnerSexWorker, GroupPartnerRisk, 2},
	{PartnerMSM, GroupPartnerRisk, 2},
	{PartnerSTISymptoms, GroupPartnerRisk, 2},
	{PartnerUnknownStatus, GroupPartnerRisk, 1},
	{PartnerNotOnART, GroupPartnerRisk, 1},
	{PartnerRefusesCondoms, GroupPartnerRisk, 1},

	{STIGenitalDischarge, GroupSTIScreening, 1},
	{STIGenitalUlcer, GroupSTIScreening, 1},
	{STILowerAbdominalPain, GroupSTIScreening, 1},
	{STIScrotalSwelling, GroupSTIScreening, 1},
	{STIInguinalBubo, GroupSTIScreening, 1},
	{STIPainfulUrination, GroupSTIScreening, 1},

	{KnowledgePreviouslyTested, GroupKnowledge, 1},
	{KnowledgeTransmissionSex, GroupKnowledge, 1},
	{KnowledgeTransmissionBlood, GroupKnowledge, 1},
	{KnowledgeTransmissionMotherToChild, GroupKnowledge, 1},
	{KnowledgePreventionCondoms, GroupKnowledge, 1},
	{KnowledgeHealthyLookingCanHaveHIV, GroupKnowledge, 1},
	{KnowledgeARTAvailable, GroupKnowledge, 1},
	{KnowledgeWindowPeriod, GroupKnowledge, 1},
}

var byIndicator = func() map[Indicator]WeightedIndicator {
	m := make(map[Indicator]WeightedIndicator, len(weightTable))
	for _, w := range weightTable {
		if _, dup := m[w.Indicator]; dup {
			panic(fmt.Sprintf("hts: indicator %s listed twice", w.Indicator))
		}
		m[w.Indicator] = w
	}
	return m
}()

// WeightTable returns a copy of the scoring table in display order.
func WeightTable() []WeightedIndicator {
	out := make([]WeightedIndicator, len(weightTable))
	copy(out, weightTable)
	return out
}

// IndicatorsIn returns the indicators of one group in display order.
func IndicatorsIn(g Group) []Indicator {
	var out []Indicator
	for _, w := range weightTable {
		if w.Group == g {
			out = append(out, w.Indicator)
		}
	}
	return out
}

func Lookup(ind Indicator) (WeightedIndicator, bool) {
	w, ok := byIndicator[ind]
	return w, ok
}

func ParseIndicator(s string) (Indicator, error) {
	ind := Indicator(s)
	if _, ok := Lookup(ind); !ok {
		return "", fmt.Errorf("unknown risk indicator: %s", s)
	}
	return ind, nil
}

// Answers holds a yes/no answer per indicator. Missing indicators count as no.
type Answers map[Indicator]bool

// ParseAnswers converts a raw form payload into typed answers. Keys that are
// not known indicators are dropped and returned sorted.
func ParseAnswers(raw map[string]bool) (Answers, []string) {
	answers := make(Answers, len(raw))
	var ignored []string
	for k, v := range raw {
		ind, err := ParseIndicator(k)
		if err != nil {
			ignored = append(ignored, k)
			continue
		}
		answers[ind] = v
	}
	sort.Strings(ignored)
	return answers, ignored
}

// Raw renders answers back to the wire form, with every known indicator
// present so stored records are self-describing.
func (a Answers) Raw() map[string]bool {
	out := make(map[string]bool, len(weightTable))
	for _, w := range weightTable {
		out[string(w.Indicator)] = a[w.Indicator]
	}
	return out
}
