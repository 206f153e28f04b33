// Package vitals classifies vital-sign readings against fixed adult reference
// ranges and stores recorded vital-sign panels.
package vitals

import (
	"fmt"
	"math"
)

type Vital string

const (
	Temperature Vital = "temperature"
	Pulse       Vital = "pulse"
	Respiration Vital = "respiration"
	Systolic    Vital = "systolic"
	Diastolic   Vital = "diastolic"
	SpO2        Vital = "spo2"
	BMIVital    Vital = "bmi"
)

var Vitals = []Vital{Temperature, Pulse, Respiration, Systolic, Diastolic, SpO2, BMIVital}

func ParseVital(s string) (Vital, error) {
	v := Vital(s)
	if _, ok := referenceRanges[v]; !ok {
		return "", fmt.Errorf("unknown vital: %s", s)
	}
	return v, nil
}

// Status is ordered: Low < Normal < High < Critical.
type Status int

const (
	StatusLow Status = iota
	StatusNormal
	StatusHigh
	StatusCritical
)

var statusNames = map[Status]string{
	StatusLow:      "Low",
	StatusNormal:   "Normal",
	StatusHigh:     "High",
	StatusCritical: "Critical",
}

var statusColors = map[Status]string{
	StatusLow:      "blue",
	StatusNormal:   "green",
	StatusHigh:     "orange",
	StatusCritical: "red",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) Color() string {
	return statusColors[s]
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for st, n := range statusNames {
		if n == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown vital status: %s", b)
}

type Classification struct {
	Vital  Vital   `json:"vital"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Status Status  `json:"status"`
	Color  string  `json:"color"`
	Label  string  `json:"label"`
}

// band covers values below max, or up to and including max when closed.
type band struct {
	max    float64
	closed bool
	status Status
	label  string
}

type referenceRange struct {
	unit  string
	bands []band
}

var inf = math.Inf(1)

var referenceRanges = map[Vital]referenceRange{
	Temperature: {"°C", []band{
		{35, false, StatusCritical, "Hypothermia"},
		{36.5, false, StatusLow, "Low temperature"},
		{37.5, true, StatusNormal, "Normal"},
		{40, false, StatusHigh, "Fever"},
		{inf, true, StatusCritical, "Hyperpyrexia"},
	}},
	Pulse: {"bpm", []band{
		{40, false, StatusCritical, "Severe bradycardia"},
		{60, false, StatusLow, "Bradycardia"},
		{100, true, StatusNormal, "Normal"},
		{130, false, StatusHigh, "Tachycardia"},
		{inf, true, StatusCritical, "Severe tachycardia"},
	}},
	Respiration: {"breaths/min", []band{
		{8, false, StatusCritical, "Severe bradypnoea"},
		{12, false, StatusLow, "Bradypnoea"},
		{20, true, StatusNormal, "Normal"},
		{30, false, StatusHigh, "Tachypnoea"},
		{inf, true, StatusCritical, "Severe tachypnoea"},
	}},
	Systolic: {"mmHg", []band{
		{70, false, StatusCritical, "Severe hypotension"},
		{90, false, StatusLow, "Hypotension"},
		{140, false, StatusNormal, "Normal"},
		{180, false, StatusHigh, "Hypertension"},
		{inf, true, StatusCritical, "Hypertensive crisis"},
	}},
	Diastolic: {"mmHg", []band{
		{40, false, StatusCritical, "Severe hypotension"},
		{60, false, StatusLow, "Hypotension"},
		{90, false, StatusNormal, "Normal"},
		{120, false, StatusHigh, "Hypertension"},
		{inf, true, StatusCritical, "Hypertensive crisis"},
	}},
	SpO2: {"%", []band{
		{90, false, StatusCritical, "Severe hypoxaemia"},
		{95, false, StatusLow, "Hypoxaemia"},
		{inf, true, StatusNormal, "Normal"},
	}},
	BMIVital: {"kg/m²", []band{
		{18.5, false, StatusLow, "Underweight"},
		{25, false, StatusNormal, "Normal weight"},
		{30, false, StatusHigh, "Overweight"},
		{inf, true, StatusHigh, "Obese"},
	}},
}

// Classify maps one reading to its band. ok is false when the value is
// absent or not a finite number, or the vital is unknown.
func Classify(vital Vital, value *float64) (Classification, bool) {
	rr, known := referenceRanges[vital]
	if !known || value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return Classification{}, false
	}
	v := *value
	for _, b := range rr.bands {
		if v < b.max || (b.closed && v == b.max) {
			return Classification{
				Vital:  vital,
				Value:  v,
				Unit:   rr.unit,
				Status: b.status,
				Color:  b.status.Color(),
				Label:  b.label,
			}, true
		}
	}
	return Classification{}, false
}
