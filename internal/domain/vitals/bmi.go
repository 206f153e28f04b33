package vitals

import "math"

// BMI returns weight / height² rounded to one decimal, with height in
// centimetres. It is undefined when either value is absent or height is not
// positive. Weight bounds are left to request validation.
func BMI(weightKg, heightCm *float64) (float64, bool) {
	if weightKg == nil || heightCm == nil || *heightCm <= 0 {
		return 0, false
	}
	m := *heightCm / 100
	bmi := *weightKg / (m * m)
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) {
		return 0, false
	}
	return math.Round(bmi*10) / 10, true
}
