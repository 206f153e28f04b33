// Package inventory tracks pharmacy stock on hand and derives stock and
// expiry status for each item.
package inventory

import "time"

const (
	StockOut = "out_of_stock"
	StockLow = "low_stock"
	StockIn  = "in_stock"

	ExpiryExpired      = "expired"
	ExpiryExpiringSoon = "expiring_soon"
	ExpiryOK           = "ok"
)

// ExpiringSoonWindow is how far ahead an expiry date counts as soon.
const ExpiringSoonWindow = 90 * 24 * time.Hour

// StockStatus compares quantity on hand with the reorder level.
func StockStatus(quantity, reorderLevel int) string {
	switch {
	case quantity <= 0:
		return StockOut
	case quantity <= reorderLevel:
		return StockLow
	default:
		return StockIn
	}
}

// ExpiryStatus compares calendar dates, so stock is usable through its expiry
// day. It returns "" when the expiry date is unknown.
func ExpiryStatus(expiry *time.Time, now time.Time) string {
	if expiry == nil || expiry.IsZero() {
		return ""
	}
	exp, today := dateOf(*expiry), dateOf(now)
	switch {
	case exp.Before(today):
		return ExpiryExpired
	case exp.Sub(today) <= ExpiringSoonWindow:
		return ExpiryExpiringSoon
	default:
		return ExpiryOK
	}
}

// ExpiryReferenceDate is the UTC calendar date ExpiryStatus measures from.
// Searches filtering on expiry status use the same date.
func ExpiryReferenceDate(now time.Time) time.Time {
	return dateOf(now)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
