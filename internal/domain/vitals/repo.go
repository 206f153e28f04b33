package vitals

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("vital signs not found")

type VitalSignsRepository interface {
	Create(ctx context.Context, v *VitalSigns) error
	GetByID(ctx context.Context, id uuid.UUID) (*VitalSigns, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*VitalSigns, int, error)
	LatestForPatient(ctx context.Context, patientID uuid.UUID) (*VitalSigns, error)
}
