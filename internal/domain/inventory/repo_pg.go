package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivcare/emr/internal/platform/db"
)

type stockItemRepoPG struct{ pool *pgxpool.Pool }

func NewStockItemRepoPG(pool *pgxpool.Pool) StockItemRepository {
	return &stockItemRepoPG{pool: pool}
}

func (r *stockItemRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const stockItemCols = `id, drug_name, drug_code, batch_number, unit, quantity, reorder_level, expiry_date,
	created_at, updated_at`

func (r *stockItemRepoPG) scanStockItem(row pgx.Row) (*StockItem, error) {
	var s StockItem
	err := row.Scan(&s.ID, &s.DrugName, &s.DrugCode, &s.BatchNumber, &s.Unit, &s.Quantity, &s.ReorderLevel, &s.ExpiryDate,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *stockItemRepoPG) Create(ctx context.Context, s *StockItem) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO stock_item (id, drug_name, drug_code, batch_number, unit, quantity, reorder_level, expiry_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		s.ID, s.DrugName, s.DrugCode, s.BatchNumber, s.Unit, s.Quantity, s.ReorderLevel, s.ExpiryDate,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *stockItemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	return r.scanStockItem(r.conn(ctx).QueryRow(ctx, `SELECT `+stockItemCols+` FROM stock_item WHERE id = $1`, id))
}

// Update changes descriptive fields only; quantity moves through Adjust.
func (r *stockItemRepoPG) Update(ctx context.Context, s *StockItem) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE stock_item SET drug_name=$2, drug_code=$3, batch_number=$4, unit=$5, reorder_level=$6,
			expiry_date=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING quantity, created_at, updated_at`,
		s.ID, s.DrugName, s.DrugCode, s.BatchNumber, s.Unit, s.ReorderLevel, s.ExpiryDate,
	).Scan(&s.Quantity, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *stockItemRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM stock_item WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var stockStatusClauses = map[string]string{
	StockOut: `quantity <= 0`,
	StockLow: `quantity > 0 AND quantity <= reorder_level`,
	StockIn:  `quantity > reorder_level`,
}

// expiryClause filters on expiry status relative to the date bound at $idx,
// not the session's CURRENT_DATE, so it agrees with ExpiryStatus.
func expiryClause(status string, idx int) (string, bool) {
	days := int(ExpiringSoonWindow / (24 * time.Hour))
	switch status {
	case ExpiryExpired:
		return fmt.Sprintf(`expiry_date < $%d::date`, idx), true
	case ExpiryExpiringSoon:
		return fmt.Sprintf(`expiry_date >= $%[1]d::date AND expiry_date <= $%[1]d::date + %[2]d`, idx, days), true
	case ExpiryOK:
		return fmt.Sprintf(`expiry_date > $%[1]d::date + %[2]d`, idx, days), true
	}
	return "", false
}

func (r *stockItemRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*StockItem, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["name"]; ok {
		where += fmt.Sprintf(` AND drug_name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	if p, ok := params["code"]; ok {
		where += fmt.Sprintf(` AND drug_code = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["batch"]; ok {
		where += fmt.Sprintf(` AND batch_number = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if clause, ok := stockStatusClauses[params["stock_status"]]; ok {
		where += ` AND ` + clause
	}
	if clause, ok := expiryClause(params["expiry_status"], idx); ok {
		asOf, err := time.Parse(time.DateOnly, params["expiry_as_of"])
		if err != nil {
			asOf = ExpiryReferenceDate(time.Now())
		}
		where += ` AND ` + clause
		args = append(args, asOf)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM stock_item`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + stockItemCols + ` FROM stock_item` + where +
		fmt.Sprintf(` ORDER BY drug_name, expiry_date NULLS LAST LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*StockItem
	for rows.Next() {
		s, err := r.scanStockItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *stockItemRepoPG) Adjust(ctx context.Context, a *Adjustment) (*StockItem, error) {
	var item *StockItem
	err := db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		var err error
		item, err = r.scanStockItem(r.conn(ctx).QueryRow(ctx, `
			UPDATE stock_item SET quantity = quantity + $2, updated_at = NOW()
			WHERE id = $1 AND quantity + $2 >= 0
			RETURNING `+stockItemCols, a.ItemID, a.Delta))
		if errors.Is(err, ErrNotFound) {
			var exists bool
			if qerr := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_item WHERE id = $1)`, a.ItemID).Scan(&exists); qerr != nil {
				return qerr
			}
			if exists {
				return ErrInsufficientStock
			}
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		a.ID = uuid.New()
		a.Balance = item.Quantity
		return r.conn(ctx).QueryRow(ctx, `
			INSERT INTO stock_adjustment (id, item_id, delta, reason, balance, performed_by)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING created_at`,
			a.ID, a.ItemID, a.Delta, a.Reason, a.Balance, a.PerformedBy,
		).Scan(&a.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *stockItemRepoPG) ListAdjustments(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*Adjustment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM stock_adjustment WHERE item_id = $1`, itemID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, item_id, delta, reason, balance, performed_by, created_at
		FROM stock_adjustment WHERE item_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, itemID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Adjustment
	for rows.Next() {
		var a Adjustment
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Delta, &a.Reason, &a.Balance, &a.PerformedBy, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &a)
	}
	return items, total, rows.Err()
}
