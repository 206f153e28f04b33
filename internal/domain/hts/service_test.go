package hts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hivcare/emr/internal/platform/metrics"
)

// -- Mock Repository --

type mockPreTestRepo struct {
	records map[uuid.UUID]*PreTest
}

func newMockPreTestRepo() *mockPreTestRepo {
	return &mockPreTestRepo{records: make(map[uuid.UUID]*PreTest)}
}

func (m *mockPreTestRepo) Create(_ context.Context, p *PreTest) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.records[p.ID] = p
	return nil
}

func (m *mockPreTestRepo) GetByID(_ context.Context, id uuid.UUID) (*PreTest, error) {
	p, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockPreTestRepo) Update(_ context.Context, p *PreTest) error {
	if _, ok := m.records[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now()
	m.records[p.ID] = p
	return nil
}

func (m *mockPreTestRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockPreTestRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*PreTest, int, error) {
	var result []*PreTest
	for _, p := range m.records {
		if p.PatientID == patientID {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

func (m *mockPreTestRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*PreTest, int, error) {
	var result []*PreTest
	for _, p := range m.records {
		if v, ok := params["patient"]; ok && p.PatientID.String() != v {
			continue
		}
		if v, ok := params["test_setting"]; ok && p.TestSetting != v {
			continue
		}
		result = append(result, p)
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockPreTestRepo(), nil)
}

func newPreTest() *PreTest {
	return &PreTest{
		PatientID:   uuid.New(),
		CounselorID: "counselor-1",
		Answers:     map[string]bool{"risk_unprotected_anal_sex": true},
	}
}

func TestService_CreatePreTest(t *testing.T) {
	svc := newTestService()
	p := newPreTest()
	if err := svc.CreatePreTest(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if p.TestSetting != "facility" {
		t.Errorf("expected default test_setting facility, got %s", p.TestSetting)
	}
	if p.SessionDate.IsZero() {
		t.Error("expected session date to default to now")
	}
	if p.HIVRiskScore != 3 || p.HIVRiskSeverity != SeverityLow {
		t.Errorf("expected HIV score 3 / Low risk, got %d / %s", p.HIVRiskScore, p.HIVRiskSeverity)
	}
	if len(p.Answers) != len(weightTable) {
		t.Errorf("expected answers normalised to every indicator, got %d keys", len(p.Answers))
	}
}

func TestService_CreatePreTest_IgnoresClientScores(t *testing.T) {
	svc := newTestService()
	p := newPreTest()
	p.HIVRiskScore = 99
	p.HIVRiskSeverity = SeverityHigh
	p.PrEPRecommended = true
	if err := svc.CreatePreTest(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HIVRiskScore != 3 || p.HIVRiskSeverity != SeverityLow || p.PrEPRecommended {
		t.Errorf("client supplied scores were kept: %+v", p)
	}
}

func TestService_CreatePreTest_DropsUnknownIndicators(t *testing.T) {
	svc := newTestService()
	p := newPreTest()
	p.Answers["not_an_indicator"] = true
	if err := svc.CreatePreTest(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.Answers["not_an_indicator"]; ok {
		t.Error("expected unknown indicator to be dropped")
	}
}

func TestService_CreatePreTest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *PreTest)
	}{
		{"missing patient", func(p *PreTest) { p.PatientID = uuid.Nil }},
		{"missing counselor", func(p *PreTest) { p.CounselorID = "" }},
		{"bad setting", func(p *PreTest) { p.TestSetting = "mobile-van" }},
		{"future session", func(p *PreTest) { p.SessionDate = time.Now().Add(48 * time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			p := newPreTest()
			tt.mutate(p)
			if err := svc.CreatePreTest(context.Background(), p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestService_UpdatePreTest_Rescores(t *testing.T) {
	svc := newTestService()
	p := newPreTest()
	if err := svc.CreatePreTest(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	patient := p.PatientID

	upd := &PreTest{
		ID:        p.ID,
		PatientID: uuid.New(),
		Answers: map[string]bool{
			"risk_unprotected_anal_sex":    true,
			"risk_unprotected_vaginal_sex": true,
			"risk_sex_with_hiv_positive":   true,
			"risk_needle_sharing":          true,
		},
	}
	if err := svc.UpdatePreTest(context.Background(), upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upd.PatientID != patient {
		t.Error("patient must not change on update")
	}
	if upd.CounselorID != "counselor-1" {
		t.Errorf("expected counselor kept, got %q", upd.CounselorID)
	}
	if upd.HIVRiskScore != 11 || upd.HIVRiskSeverity != SeverityHigh || !upd.PrEPRecommended {
		t.Errorf("expected rescored to 11 / High / PrEP, got %d / %s / %v", upd.HIVRiskScore, upd.HIVRiskSeverity, upd.PrEPRecommended)
	}
}

func TestService_UpdatePreTest_NotFound(t *testing.T) {
	svc := newTestService()
	err := svc.UpdatePreTest(context.Background(), &PreTest{ID: uuid.New()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_GetAndDelete(t *testing.T) {
	svc := newTestService()
	p := newPreTest()
	svc.CreatePreTest(context.Background(), p)

	got, err := svc.GetPreTest(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("expected %s, got %s", p.ID, got.ID)
	}
	if err := svc.DeletePreTest(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetPreTest(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestService_ListPreTestsByPatient(t *testing.T) {
	svc := newTestService()
	p1 := newPreTest()
	p2 := newPreTest()
	p2.PatientID = p1.PatientID
	p3 := newPreTest()
	for _, p := range []*PreTest{p1, p2, p3} {
		svc.CreatePreTest(context.Background(), p)
	}
	_, total, err := svc.ListPreTestsByPatient(context.Background(), p1.PatientID, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2, got %d", total)
	}
}

func TestService_SearchPreTests_Params(t *testing.T) {
	svc := newTestService()
	p := newPreTest()
	p.TestSetting = "community"
	svc.CreatePreTest(context.Background(), p)
	svc.CreatePreTest(context.Background(), newPreTest())

	_, total, err := svc.SearchPreTests(context.Background(), map[string]string{"test_setting": "community", "bogus": "x"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1, got %d", total)
	}
	if _, _, err := svc.SearchPreTests(context.Background(), map[string]string{"patient": "nope"}, 20, 0); err == nil {
		t.Error("expected error for invalid patient id")
	}
	if _, _, err := svc.SearchPreTests(context.Background(), map[string]string{"date_from": "14/10/2026"}, 20, 0); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestService_Assess(t *testing.T) {
	m := metrics.New()
	svc := NewService(newMockPreTestRepo(), m)
	r, ignored := svc.Assess(context.Background(), map[string]bool{
		"partner_hiv_positive":  true,
		"partner_injects_drugs": true,
		"partner_sex_worker":    true,
		"partner_msm":           true,
		"shoe_size":             true,
	})
	if r.PartnerRiskScore != 10 || r.PartnerRiskSeverity != SeverityHigh {
		t.Errorf("expected partner 10 / High, got %d / %s", r.PartnerRiskScore, r.PartnerRiskSeverity)
	}
	if len(ignored) != 1 || ignored[0] != "shoe_size" {
		t.Errorf("unexpected ignored: %v", ignored)
	}
	if got := testutil.ToFloat64(m.RiskScores.WithLabelValues(SeverityNone)); got != 1 {
		t.Errorf("expected one score recorded under %q, got %v", SeverityNone, got)
	}
}
