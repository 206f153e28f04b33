package hts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivcare/emr/internal/platform/db"
)

type preTestRepoPG struct{ pool *pgxpool.Pool }

func NewPreTestRepoPG(pool *pgxpool.Pool) PreTestRepository {
	return &preTestRepoPG{pool: pool}
}

func (r *preTestRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const preTestCols = `id, patient_id, counselor_id, client_code, test_setting, session_date, answers,
	hiv_risk_score, partner_risk_score, sti_screening_score, knowledge_score,
	hiv_risk_severity, partner_risk_severity, prep_recommended,
	note, created_at, updated_at`

func (r *preTestRepoPG) scanPreTest(row pgx.Row) (*PreTest, error) {
	var p PreTest
	err := row.Scan(&p.ID, &p.PatientID, &p.CounselorID, &p.ClientCode, &p.TestSetting, &p.SessionDate, &p.Answers,
		&p.HIVRiskScore, &p.PartnerRiskScore, &p.STIScreeningScore, &p.KnowledgeScore,
		&p.HIVRiskSeverity, &p.PartnerRiskSeverity, &p.PrEPRecommended,
		&p.Note, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *preTestRepoPG) Create(ctx context.Context, p *PreTest) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO hts_pretest (id, patient_id, counselor_id, client_code, test_setting, session_date, answers,
			hiv_risk_score, partner_risk_score, sti_screening_score, knowledge_score,
			hiv_risk_severity, partner_risk_severity, prep_recommended, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at, updated_at`,
		p.ID, p.PatientID, p.CounselorID, p.ClientCode, p.TestSetting, p.SessionDate, p.Answers,
		p.HIVRiskScore, p.PartnerRiskScore, p.STIScreeningScore, p.KnowledgeScore,
		p.HIVRiskSeverity, p.PartnerRiskSeverity, p.PrEPRecommended, p.Note,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *preTestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PreTest, error) {
	return r.scanPreTest(r.conn(ctx).QueryRow(ctx, `SELECT `+preTestCols+` FROM hts_pretest WHERE id = $1`, id))
}

func (r *preTestRepoPG) Update(ctx context.Context, p *PreTest) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE hts_pretest SET counselor_id=$2, client_code=$3, test_setting=$4, session_date=$5, answers=$6,
			hiv_risk_score=$7, partner_risk_score=$8, sti_screening_score=$9, knowledge_score=$10,
			hiv_risk_severity=$11, partner_risk_severity=$12, prep_recommended=$13, note=$14,
			updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.CounselorID, p.ClientCode, p.TestSetting, p.SessionDate, p.Answers,
		p.HIVRiskScore, p.PartnerRiskScore, p.STIScreeningScore, p.KnowledgeScore,
		p.HIVRiskSeverity, p.PartnerRiskSeverity, p.PrEPRecommended, p.Note,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *preTestRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM hts_pretest WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *preTestRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PreTest, int, error) {
	return r.Search(ctx, map[string]string{"patient": patientID.String()}, limit, offset)
}

func (r *preTestRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*PreTest, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["patient"]; ok {
		where += fmt.Sprintf(` AND patient_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["counselor"]; ok {
		where += fmt.Sprintf(` AND counselor_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["test_setting"]; ok {
		where += fmt.Sprintf(` AND test_setting = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["hiv_risk_severity"]; ok {
		where += fmt.Sprintf(` AND hiv_risk_severity = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["prep_recommended"]; ok {
		where += fmt.Sprintf(` AND prep_recommended = $%d`, idx)
		args = append(args, p == "true")
		idx++
	}
	if p, ok := params["date_from"]; ok {
		where += fmt.Sprintf(` AND session_date >= $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["date_to"]; ok {
		where += fmt.Sprintf(` AND session_date < $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM hts_pretest`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + preTestCols + ` FROM hts_pretest` + where +
		fmt.Sprintf(` ORDER BY session_date DESC, created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PreTest
	for rows.Next() {
		p, err := r.scanPreTest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
