package vitals

// Reading is one set of vital signs taken together. Nil fields were not
// measured.
type Reading struct {
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=25,lte=45"`
	Pulse       *float64 `json:"pulse,omitempty" validate:"omitempty,gt=0,lte=300"`
	Respiration *float64 `json:"respiration,omitempty" validate:"omitempty,gt=0,lte=100"`
	Systolic    *float64 `json:"systolic,omitempty" validate:"omitempty,gt=0,lte=300"`
	Diastolic   *float64 `json:"diastolic,omitempty" validate:"omitempty,gt=0,lte=200"`
	SpO2        *float64 `json:"spo2,omitempty" validate:"omitempty,gt=0,lte=100"`
	WeightKg    *float64 `json:"weight_kg,omitempty" validate:"omitempty,gt=0,lte=500"`
	HeightCm    *float64 `json:"height_cm,omitempty" validate:"omitempty,gt=0,lte=272"`
}

func (r Reading) value(v Vital) *float64 {
	switch v {
	case Temperature:
		return r.Temperature
	case Pulse:
		return r.Pulse
	case Respiration:
		return r.Respiration
	case Systolic:
		return r.Systolic
	case Diastolic:
		return r.Diastolic
	case SpO2:
		return r.SpO2
	case BMIVital:
		if bmi, ok := BMI(r.WeightKg, r.HeightCm); ok {
			return &bmi
		}
	}
	return nil
}

// Empty reports whether no vital was measured.
func (r Reading) Empty() bool {
	return r.Temperature == nil && r.Pulse == nil && r.Respiration == nil &&
		r.Systolic == nil && r.Diastolic == nil && r.SpO2 == nil &&
		r.WeightKg == nil && r.HeightCm == nil
}

type PanelResult struct {
	BMI             *float64         `json:"bmi,omitempty"`
	Classifications []Classification `json:"classifications"`
	// Worst is the least reassuring status in the panel, Critical over Low or
	// High over Normal; nil when nothing was classified.
	Worst *Status `json:"worst,omitempty"`
}

// ClassifyPanel classifies every present reading, deriving BMI from weight
// and height. Absent readings are left out rather than reported Normal.
func ClassifyPanel(r Reading) PanelResult {
	res := PanelResult{Classifications: []Classification{}}
	if bmi, ok := BMI(r.WeightKg, r.HeightCm); ok {
		res.BMI = &bmi
	}
	for _, v := range Vitals {
		c, ok := Classify(v, r.value(v))
		if !ok {
			continue
		}
		res.Classifications = append(res.Classifications, c)
		if res.Worst == nil || severity(c.Status) > severity(*res.Worst) {
			st := c.Status
			res.Worst = &st
		}
	}
	return res
}

// severity ranks distance from Normal, which the Status ordinal does not.
func severity(s Status) int {
	switch s {
	case StatusNormal:
		return 0
	case StatusCritical:
		return 2
	}
	return 1
}
