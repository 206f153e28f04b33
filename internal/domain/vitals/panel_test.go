package vitals

import "testing"

func TestClassifyPanel(t *testing.T) {
	res := ClassifyPanel(Reading{
		Temperature: f(38.5),
		Pulse:       f(80),
		WeightKg:    f(70),
		HeightCm:    f(170),
	})
	if res.BMI == nil || *res.BMI != 24.2 {
		t.Fatalf("expected BMI 24.2, got %v", res.BMI)
	}
	if len(res.Classifications) != 3 {
		t.Fatalf("expected temperature, pulse and bmi, got %d", len(res.Classifications))
	}
	byVital := map[Vital]Classification{}
	for _, c := range res.Classifications {
		byVital[c.Vital] = c
	}
	if byVital[Temperature].Status != StatusHigh {
		t.Errorf("expected temperature High, got %s", byVital[Temperature].Status)
	}
	if _, ok := byVital[SpO2]; ok {
		t.Error("absent spo2 must not be classified")
	}
	if res.Worst == nil || *res.Worst != StatusHigh {
		t.Errorf("expected worst High, got %v", res.Worst)
	}
}

func TestClassifyPanel_WorstPrefersAbnormal(t *testing.T) {
	res := ClassifyPanel(Reading{Pulse: f(50), SpO2: f(98)})
	if res.Worst == nil || *res.Worst != StatusLow {
		t.Errorf("expected worst Low, got %v", res.Worst)
	}
	res = ClassifyPanel(Reading{Pulse: f(50), SpO2: f(85)})
	if res.Worst == nil || *res.Worst != StatusCritical {
		t.Errorf("expected worst Critical, got %v", res.Worst)
	}
}

func TestClassifyPanel_Empty(t *testing.T) {
	res := ClassifyPanel(Reading{})
	if len(res.Classifications) != 0 || res.Worst != nil || res.BMI != nil {
		t.Errorf("expected empty result, got %+v", res)
	}
	if !(Reading{}).Empty() {
		t.Error("expected empty reading")
	}
}
