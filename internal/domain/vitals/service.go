package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hivcare/emr/internal/platform/metrics"
)

type Service struct {
	repo    VitalSignsRepository
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo VitalSignsRepository, m *metrics.Metrics) *Service {
	return &Service{repo: repo, metrics: m, now: time.Now}
}

// Classify classifies a panel without storing it.
func (s *Service) Classify(r Reading) PanelResult {
	res := ClassifyPanel(r)
	for _, c := range res.Classifications {
		s.metrics.ObserveVital(string(c.Vital), c.Status.String())
	}
	return res
}

func validateReading(r Reading) error {
	if r.Empty() {
		return fmt.Errorf("at least one vital sign is required")
	}
	if r.Systolic != nil && r.Diastolic != nil && *r.Diastolic >= *r.Systolic {
		return fmt.Errorf("diastolic must be lower than systolic")
	}
	if (r.Systolic == nil) != (r.Diastolic == nil) {
		return fmt.Errorf("systolic and diastolic must be recorded together")
	}
	return nil
}

func (s *Service) CreateVitalSigns(ctx context.Context, v *VitalSigns) error {
	if v.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if v.RecordedBy == "" {
		return fmt.Errorf("recorded_by is required")
	}
	if err := validateReading(v.Reading); err != nil {
		return err
	}
	if v.RecordedAt.IsZero() {
		v.RecordedAt = s.now()
	}
	if v.RecordedAt.After(s.now().Add(time.Minute)) {
		return fmt.Errorf("recorded_at must not be in the future")
	}
	v.BMI = nil
	if bmi, ok := BMI(v.WeightKg, v.HeightCm); ok {
		v.BMI = &bmi
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return err
	}
	s.Classify(v.Reading)
	return nil
}

func (s *Service) GetVitalSigns(ctx context.Context, id uuid.UUID) (*VitalSigns, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get vital signs %s: %w", id, err)
	}
	return v, nil
}

func (s *Service) LatestForPatient(ctx context.Context, patientID uuid.UUID) (*VitalSigns, error) {
	v, err := s.repo.LatestForPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("latest vital signs for %s: %w", patientID, err)
	}
	return v, nil
}

func (s *Service) DeleteVitalSigns(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete vital signs %s: %w", id, err)
	}
	return nil
}

var vitalSignsSearchParams = map[string]bool{
	"patient": true, "encounter": true, "recorded_by": true, "date_from": true, "date_to": true,
}

func (s *Service) SearchVitalSigns(ctx context.Context, params map[string]string, limit, offset int) ([]*VitalSigns, int, error) {
	filtered := make(map[string]string, len(params))
	for k, v := range params {
		if vitalSignsSearchParams[k] && v != "" {
			filtered[k] = v
		}
	}
	for _, k := range []string{"patient", "encounter"} {
		if v, ok := filtered[k]; ok {
			if _, err := uuid.Parse(v); err != nil {
				return nil, 0, fmt.Errorf("invalid %s: %s", k, v)
			}
		}
	}
	for _, k := range []string{"date_from", "date_to"} {
		if v, ok := filtered[k]; ok {
			if _, err := time.Parse("2006-01-02", v); err != nil {
				return nil, 0, fmt.Errorf("%s must be YYYY-MM-DD", k)
			}
		}
	}
	return s.repo.Search(ctx, filtered, limit, offset)
}
