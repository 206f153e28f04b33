package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("stock item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type StockItemRepository interface {
	Create(ctx context.Context, s *StockItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*StockItem, error)
	Update(ctx context.Context, s *StockItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*StockItem, int, error)
	// Adjust applies a delta atomically and records it. It returns
	// ErrInsufficientStock when the balance would go negative.
	Adjust(ctx context.Context, a *Adjustment) (*StockItem, error)
	ListAdjustments(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*Adjustment, int, error)
}
