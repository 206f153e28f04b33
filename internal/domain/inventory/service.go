package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hivcare/emr/internal/platform/metrics"
)

type Service struct {
	items   StockItemRepository
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(items StockItemRepository, m *metrics.Metrics) *Service {
	return &Service{items: items, metrics: m, now: time.Now}
}

func validateItem(s *StockItem) error {
	if s.DrugName == "" {
		return fmt.Errorf("drug_name is required")
	}
	if s.ReorderLevel < 0 {
		return fmt.Errorf("reorder_level must not be negative")
	}
	return nil
}

func (s *Service) CreateStockItem(ctx context.Context, item *StockItem) error {
	if item.Unit == "" {
		item.Unit = "unit"
	}
	if item.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if err := validateItem(item); err != nil {
		return err
	}
	return s.items.Create(ctx, item)
}

func (s *Service) GetStockItem(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get stock item %s: %w", id, err)
	}
	return item, nil
}

// UpdateStockItem never changes quantity on hand; use AdjustStock.
func (s *Service) UpdateStockItem(ctx context.Context, item *StockItem) error {
	if item.Unit == "" {
		item.Unit = "unit"
	}
	if err := validateItem(item); err != nil {
		return err
	}
	if err := s.items.Update(ctx, item); err != nil {
		return fmt.Errorf("update stock item %s: %w", item.ID, err)
	}
	return nil
}

func (s *Service) DeleteStockItem(ctx context.Context, id uuid.UUID) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete stock item %s: %w", id, err)
	}
	return nil
}

func (s *Service) SearchStockItems(ctx context.Context, params map[string]string, limit, offset int) ([]*StockItem, int, error) {
	filtered := map[string]string{}
	for _, k := range []string{"name", "code", "batch"} {
		if v := params[k]; v != "" {
			filtered[k] = v
		}
	}
	if v := params["stock_status"]; v != "" {
		if v != StockOut && v != StockLow && v != StockIn {
			return nil, 0, fmt.Errorf("invalid stock_status: %s", v)
		}
		filtered["stock_status"] = v
	}
	if v := params["expiry_status"]; v != "" {
		if v != ExpiryExpired && v != ExpiryExpiringSoon && v != ExpiryOK {
			return nil, 0, fmt.Errorf("invalid expiry_status: %s", v)
		}
		filtered["expiry_status"] = v
		filtered["expiry_as_of"] = ExpiryReferenceDate(s.now()).Format(time.DateOnly)
	}
	return s.items.Search(ctx, filtered, limit, offset)
}

// AdjustStock applies a signed change to quantity on hand. A change that
// would take stock below zero fails with ErrInsufficientStock.
func (s *Service) AdjustStock(ctx context.Context, a *Adjustment) (*StockItem, error) {
	if a.Delta == 0 {
		return nil, fmt.Errorf("delta must not be zero")
	}
	if !validAdjustmentReasons[a.Reason] {
		return nil, fmt.Errorf("invalid reason: %s", a.Reason)
	}
	if a.PerformedBy == "" {
		return nil, fmt.Errorf("performed_by is required")
	}
	if a.Delta > 0 && (a.Reason == "dispensed" || a.Reason == "expired" || a.Reason == "damaged") {
		return nil, fmt.Errorf("reason %s requires a negative delta", a.Reason)
	}
	if a.Delta < 0 && (a.Reason == "received" || a.Reason == "returned") {
		return nil, fmt.Errorf("reason %s requires a positive delta", a.Reason)
	}

	item, err := s.items.Adjust(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("adjust stock item %s: %w", a.ItemID, err)
	}
	s.metrics.ObserveStockAdjustment(a.Delta)

	if st := StockStatus(item.Quantity, item.ReorderLevel); st != StockIn {
		zerolog.Ctx(ctx).Info().
			Str("item_id", item.ID.String()).
			Str("drug", item.DrugName).
			Int("quantity", item.Quantity).
			Str("stock_status", st).
			Msg("stock at or below reorder level")
	}
	return item, nil
}

func (s *Service) ListAdjustments(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*Adjustment, int, error) {
	return s.items.ListAdjustments(ctx, itemID, limit, offset)
}

// Now is the clock used for expiry status.
func (s *Service) Now() time.Time {
	return s.now()
}
