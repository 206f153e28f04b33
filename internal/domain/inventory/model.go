package inventory

import (
	"time"

	"github.com/google/uuid"
)

type StockItem struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	DrugName     string     `db:"drug_name" json:"drug_name"`
	DrugCode     *string    `db:"drug_code" json:"drug_code,omitempty"`
	BatchNumber  *string    `db:"batch_number" json:"batch_number,omitempty"`
	Unit         string     `db:"unit" json:"unit"`
	Quantity     int        `db:"quantity" json:"quantity"`
	ReorderLevel int        `db:"reorder_level" json:"reorder_level"`
	ExpiryDate   *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Adjustment is one change to quantity on hand. Positive deltas receive
// stock, negative deltas dispense or write it off.
type Adjustment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ItemID      uuid.UUID `db:"item_id" json:"item_id"`
	Delta       int       `db:"delta" json:"delta"`
	Reason      string    `db:"reason" json:"reason"`
	Balance     int       `db:"balance" json:"balance"`
	PerformedBy string    `db:"performed_by" json:"performed_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

var validAdjustmentReasons = map[string]bool{
	"received": true, "dispensed": true, "expired": true,
	"damaged": true, "returned": true, "count_correction": true,
}
