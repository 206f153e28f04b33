package hts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hivcare/emr/internal/platform/metrics"
)

type Service struct {
	pretests PreTestRepository
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(pretests PreTestRepository, m *metrics.Metrics) *Service {
	return &Service{pretests: pretests, metrics: m, now: time.Now}
}

// Assess scores a raw indicator map. Unknown keys do not affect the result
// and are returned so the caller can surface them.
func (s *Service) Assess(ctx context.Context, raw map[string]bool) (RiskScoreResult, []string) {
	answers, ignored := ParseAnswers(raw)
	if len(ignored) > 0 {
		zerolog.Ctx(ctx).Debug().Strs("ignored", ignored).Msg("unknown risk indicators ignored")
	}
	r := Score(answers)
	s.metrics.ObserveRiskScore(r.HIVRiskSeverity)
	return r, ignored
}

// score normalises the stored answers and recomputes every derived field.
// Scores sent by a client are overwritten.
func (s *Service) score(ctx context.Context, p *PreTest) {
	answers, ignored := ParseAnswers(p.Answers)
	if len(ignored) > 0 {
		zerolog.Ctx(ctx).Debug().Strs("ignored", ignored).Str("pretest_id", p.ID.String()).Msg("unknown risk indicators dropped")
	}
	p.Answers = answers.Raw()
	r := Score(answers)
	p.applyScore(r)
	s.metrics.ObserveRiskScore(r.HIVRiskSeverity)
}

func (s *Service) validate(p *PreTest) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.CounselorID == "" {
		return fmt.Errorf("counselor_id is required")
	}
	if !validTestSettings[p.TestSetting] {
		return fmt.Errorf("invalid test_setting: %s", p.TestSetting)
	}
	if p.SessionDate.After(s.now().Add(time.Minute)) {
		return fmt.Errorf("session_date must not be in the future")
	}
	return nil
}

func (s *Service) CreatePreTest(ctx context.Context, p *PreTest) error {
	if p.TestSetting == "" {
		p.TestSetting = "facility"
	}
	if p.SessionDate.IsZero() {
		p.SessionDate = s.now()
	}
	if err := s.validate(p); err != nil {
		return err
	}
	s.score(ctx, p)
	return s.pretests.Create(ctx, p)
}

func (s *Service) GetPreTest(ctx context.Context, id uuid.UUID) (*PreTest, error) {
	p, err := s.pretests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get pre-test %s: %w", id, err)
	}
	return p, nil
}

// UpdatePreTest replaces the editable fields of an existing record. The
// patient is fixed once the record exists.
func (s *Service) UpdatePreTest(ctx context.Context, p *PreTest) error {
	existing, err := s.pretests.GetByID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("get pre-test %s: %w", p.ID, err)
	}
	p.PatientID = existing.PatientID
	p.CreatedAt = existing.CreatedAt
	if p.CounselorID == "" {
		p.CounselorID = existing.CounselorID
	}
	if p.TestSetting == "" {
		p.TestSetting = existing.TestSetting
	}
	if p.SessionDate.IsZero() {
		p.SessionDate = existing.SessionDate
	}
	if p.Answers == nil {
		p.Answers = existing.Answers
	}
	if err := s.validate(p); err != nil {
		return err
	}
	s.score(ctx, p)
	return s.pretests.Update(ctx, p)
}

func (s *Service) DeletePreTest(ctx context.Context, id uuid.UUID) error {
	if err := s.pretests.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete pre-test %s: %w", id, err)
	}
	return nil
}

func (s *Service) ListPreTestsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PreTest, int, error) {
	return s.pretests.ListByPatient(ctx, patientID, limit, offset)
}

var preTestSearchParams = map[string]bool{
	"patient": true, "counselor": true, "test_setting": true,
	"hiv_risk_severity": true, "prep_recommended": true,
	"date_from": true, "date_to": true,
}

func (s *Service) SearchPreTests(ctx context.Context, params map[string]string, limit, offset int) ([]*PreTest, int, error) {
	filtered := make(map[string]string, len(params))
	for k, v := range params {
		if preTestSearchParams[k] && v != "" {
			filtered[k] = v
		}
	}
	if p, ok := filtered["patient"]; ok {
		if _, err := uuid.Parse(p); err != nil {
			return nil, 0, fmt.Errorf("invalid patient: %s", p)
		}
	}
	for _, k := range []string{"date_from", "date_to"} {
		if v, ok := filtered[k]; ok {
			if _, err := time.Parse("2006-01-02", v); err != nil {
				return nil, 0, fmt.Errorf("%s must be YYYY-MM-DD", k)
			}
		}
	}
	return s.pretests.Search(ctx, filtered, limit, offset)
}
