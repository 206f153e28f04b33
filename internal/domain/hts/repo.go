package hts

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("pre-test not found")

type PreTestRepository interface {
	Create(ctx context.Context, p *PreTest) error
	GetByID(ctx context.Context, id uuid.UUID) (*PreTest, error)
	Update(ctx context.Context, p *PreTest) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PreTest, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*PreTest, int, error)
}
