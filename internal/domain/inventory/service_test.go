package inventory

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

type mockStockItemRepo struct {
	records     map[uuid.UUID]*StockItem
	adjustments []*Adjustment
	lastSearch  map[string]string
}

func newMockStockItemRepo() *mockStockItemRepo {
	return &mockStockItemRepo{records: make(map[uuid.UUID]*StockItem)}
}

func (m *mockStockItemRepo) Create(_ context.Context, s *StockItem) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.records[s.ID] = s
	return nil
}

func (m *mockStockItemRepo) GetByID(_ context.Context, id uuid.UUID) (*StockItem, error) {
	s, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *mockStockItemRepo) Update(_ context.Context, s *StockItem) error {
	existing, ok := m.records[s.ID]
	if !ok {
		return ErrNotFound
	}
	s.Quantity = existing.Quantity
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now()
	m.records[s.ID] = s
	return nil
}

func (m *mockStockItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockStockItemRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*StockItem, int, error) {
	m.lastSearch = params
	var result []*StockItem
	for _, s := range m.records {
		if st, ok := params["stock_status"]; ok && StockStatus(s.Quantity, s.ReorderLevel) != st {
			continue
		}
		if st, ok := params["expiry_status"]; ok {
			asOf, err := time.Parse(time.DateOnly, params["expiry_as_of"])
			if err != nil || ExpiryStatus(s.ExpiryDate, asOf) != st {
				continue
			}
		}
		result = append(result, s)
	}
	return result, len(result), nil
}

func (m *mockStockItemRepo) Adjust(_ context.Context, a *Adjustment) (*StockItem, error) {
	s, ok := m.records[a.ItemID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Quantity+a.Delta < 0 {
		return nil, ErrInsufficientStock
	}
	s.Quantity += a.Delta
	a.ID = uuid.New()
	a.Balance = s.Quantity
	a.CreatedAt = time.Now()
	m.adjustments = append(m.adjustments, a)
	return s, nil
}

func (m *mockStockItemRepo) ListAdjustments(_ context.Context, itemID uuid.UUID, limit, offset int) ([]*Adjustment, int, error) {
	var result []*Adjustment
	for _, a := range m.adjustments {
		if a.ItemID == itemID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockStockItemRepo(), nil)
}

func newStockItem() *StockItem {
	return &StockItem{DrugName: "TDF/3TC/DTG", Quantity: 30, ReorderLevel: 10}
}

func TestService_CreateStockItem(t *testing.T) {
	svc := newTestService()
	item := newStockItem()
	if err := svc.CreateStockItem(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if item.Unit != "unit" {
		t.Errorf("expected default unit, got %q", item.Unit)
	}
}

func TestService_CreateStockItem_Validation(t *testing.T) {
	tests := []struct {
		name string
		item *StockItem
	}{
		{"missing name", &StockItem{Quantity: 1}},
		{"negative quantity", &StockItem{DrugName: "AZT", Quantity: -1}},
		{"negative reorder", &StockItem{DrugName: "AZT", ReorderLevel: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := newTestService().CreateStockItem(context.Background(), tt.item); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestService_UpdateStockItem_KeepsQuantity(t *testing.T) {
	svc := newTestService()
	item := newStockItem()
	svc.CreateStockItem(context.Background(), item)

	upd := &StockItem{ID: item.ID, DrugName: "TLD", Quantity: 999, ReorderLevel: 5}
	if err := svc.UpdateStockItem(context.Background(), upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upd.Quantity != 30 {
		t.Errorf("update must not change quantity, got %d", upd.Quantity)
	}
	if err := svc.UpdateStockItem(context.Background(), &StockItem{ID: uuid.New(), DrugName: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_AdjustStock(t *testing.T) {
	m := metrics.New()
	svc := NewService(newMockStockItemRepo(), m)
	item := newStockItem()
	svc.CreateStockItem(context.Background(), item)

	got, err := svc.AdjustStock(context.Background(), &Adjustment{ItemID: item.ID, Delta: -25, Reason: "dispensed", PerformedBy: "ph-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Quantity != 5 {
		t.Errorf("expected 5 left, got %d", got.Quantity)
	}
	if StockStatus(got.Quantity, got.ReorderLevel) != StockLow {
		t.Errorf("expected low stock")
	}
	if v := testutil.ToFloat64(m.StockAdjustments.WithLabelValues("out")); v != 1 {
		t.Errorf("expected one outbound adjustment recorded, got %v", v)
	}
}

func TestService_AdjustStock_NeverNegative(t *testing.T) {
	svc := newTestService()
	item := newStockItem()
	svc.CreateStockItem(context.Background(), item)

	_, err := svc.AdjustStock(context.Background(), &Adjustment{ItemID: item.ID, Delta: -31, Reason: "dispensed", PerformedBy: "ph-1"})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	current, _ := svc.GetStockItem(context.Background(), item.ID)
	if current.Quantity != 30 {
		t.Errorf("quantity changed on failed adjustment: %d", current.Quantity)
	}
}

func TestService_AdjustStock_Validation(t *testing.T) {
	svc := newTestService()
	item := newStockItem()
	svc.CreateStockItem(context.Background(), item)

	tests := []struct {
		name string
		a    Adjustment
	}{
		{"zero delta", Adjustment{Delta: 0, Reason: "received"}},
		{"unknown reason", Adjustment{Delta: 5, Reason: "found"}},
		{"dispense positive", Adjustment{Delta: 5, Reason: "dispensed"}},
		{"receive negative", Adjustment{Delta: -5, Reason: "received"}},
		{"no performer", Adjustment{Delta: 5, Reason: "received", PerformedBy: "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.a
			a.ItemID = item.ID
			if a.PerformedBy == "" {
				a.PerformedBy = "ph-1"
			} else if a.PerformedBy == "-" {
				a.PerformedBy = ""
			}
			if _, err := svc.AdjustStock(context.Background(), &a); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestService_SearchStockItems(t *testing.T) {
	svc := newTestService()
	low := newStockItem()
	low.Quantity = 3
	svc.CreateStockItem(context.Background(), low)
	svc.CreateStockItem(context.Background(), newStockItem())

	_, total, err := svc.SearchStockItems(context.Background(), map[string]string{"stock_status": StockLow}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 low-stock item, got %d", total)
	}
	if _, _, err := svc.SearchStockItems(context.Background(), map[string]string{"stock_status": "plenty"}, 20, 0); err == nil {
		t.Error("expected error for invalid stock_status")
	}
	if _, _, err := svc.SearchStockItems(context.Background(), map[string]string{"expiry_status": "stale"}, 20, 0); err == nil {
		t.Error("expected error for invalid expiry_status")
	}
}

func TestService_SearchStockItems_ExpiryMatchesResponseStatus(t *testing.T) {
	repo := newMockStockItemRepo()
	svc := NewService(repo, nil)
	// 00:30 in Lagos is still the previous day in UTC.
	svc.now = func() time.Time { return time.Date(2026, 10, 14, 0, 30, 0, 0, time.FixedZone("WAT", 3600)) }

	expiry := time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC)
	item := newStockItem()
	item.ID = uuid.New()
	item.ExpiryDate = &expiry
	repo.records[item.ID] = item

	expired, _, err := svc.SearchStockItems(context.Background(), map[string]string{"expiry_status": ExpiryExpired}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expired) != 0 {
		t.Errorf("expected no expired items, got %d", len(expired))
	}
	if got := repo.lastSearch["expiry_as_of"]; got != "2026-10-13" {
		t.Errorf("expected search date 2026-10-13, got %q", got)
	}

	soon, _, err := svc.SearchStockItems(context.Background(), map[string]string{"expiry_status": ExpiryExpiringSoon}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(soon) != 1 {
		t.Fatalf("expected 1 expiring item, got %d", len(soon))
	}
	if got := ExpiryStatus(soon[0].ExpiryDate, svc.Now()); got != ExpiryExpiringSoon {
		t.Errorf("response status %q disagrees with the filter", got)
	}
}
