package vitals

import (
	"time"

	"github.com/google/uuid"
)

// VitalSigns is a recorded panel. BMI is derived on write; statuses are
// derived on read and never stored.
type VitalSigns struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	EncounterID *uuid.UUID `db:"encounter_id" json:"encounter_id,omitempty"`
	RecordedBy  string     `db:"recorded_by" json:"recorded_by"`
	RecordedAt  time.Time  `db:"recorded_at" json:"recorded_at"`
	Reading
	BMI       *float64  `db:"bmi" json:"bmi,omitempty"`
	Note      *string   `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
