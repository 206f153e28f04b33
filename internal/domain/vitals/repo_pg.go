package vitals

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivcare/emr/internal/platform/db"
)

type vitalSignsRepoPG struct{ pool *pgxpool.Pool }

func NewVitalSignsRepoPG(pool *pgxpool.Pool) VitalSignsRepository {
	return &vitalSignsRepoPG{pool: pool}
}

func (r *vitalSignsRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const vitalSignsCols = `id, patient_id, encounter_id, recorded_by, recorded_at,
	temperature, pulse, respiration, systolic, diastolic, spo2, weight_kg, height_cm, bmi,
	note, created_at`

func (r *vitalSignsRepoPG) scanVitalSigns(row pgx.Row) (*VitalSigns, error) {
	var v VitalSigns
	err := row.Scan(&v.ID, &v.PatientID, &v.EncounterID, &v.RecordedBy, &v.RecordedAt,
		&v.Temperature, &v.Pulse, &v.Respiration, &v.Systolic, &v.Diastolic, &v.SpO2, &v.WeightKg, &v.HeightCm, &v.BMI,
		&v.Note, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &v, err
}

func (r *vitalSignsRepoPG) Create(ctx context.Context, v *VitalSigns) error {
	v.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO vital_signs (id, patient_id, encounter_id, recorded_by, recorded_at,
			temperature, pulse, respiration, systolic, diastolic, spo2, weight_kg, height_cm, bmi, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at`,
		v.ID, v.PatientID, v.EncounterID, v.RecordedBy, v.RecordedAt,
		v.Temperature, v.Pulse, v.Respiration, v.Systolic, v.Diastolic, v.SpO2, v.WeightKg, v.HeightCm, v.BMI, v.Note,
	).Scan(&v.CreatedAt)
}

func (r *vitalSignsRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*VitalSigns, error) {
	return r.scanVitalSigns(r.conn(ctx).QueryRow(ctx, `SELECT `+vitalSignsCols+` FROM vital_signs WHERE id = $1`, id))
}

func (r *vitalSignsRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM vital_signs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *vitalSignsRepoPG) LatestForPatient(ctx context.Context, patientID uuid.UUID) (*VitalSigns, error) {
	return r.scanVitalSigns(r.conn(ctx).QueryRow(ctx,
		`SELECT `+vitalSignsCols+` FROM vital_signs WHERE patient_id = $1 ORDER BY recorded_at DESC LIMIT 1`, patientID))
}

func (r *vitalSignsRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*VitalSigns, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	for _, f := range []struct{ param, col, op string }{
		{"patient", "patient_id", "="},
		{"encounter", "encounter_id", "="},
		{"recorded_by", "recorded_by", "="},
		{"date_from", "recorded_at", ">="},
		{"date_to", "recorded_at", "<"},
	} {
		if p, ok := params[f.param]; ok {
			where += fmt.Sprintf(` AND %s %s $%d`, f.col, f.op, idx)
			args = append(args, p)
			idx++
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM vital_signs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + vitalSignsCols + ` FROM vital_signs` + where +
		fmt.Sprintf(` ORDER BY recorded_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*VitalSigns
	for rows.Next() {
		v, err := r.scanVitalSigns(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}
