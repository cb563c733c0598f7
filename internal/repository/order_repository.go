package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

const orderColumns = `id, order_number, order_type, status, table_id, customer_name, customer_phone,
	pickup_time, surcharges_cents, discount_type, discount_value, discount_reason, discount_applied_by,
	bundle_savings_cents, bundle_reason, subtotal_cents, discount_cents, tax_cents, total_amount_cents,
	created_by, created_at, updated_at`

func scanOrder(s rowScanner) (model.Order, error) {
	var (
		o         model.Order
		tableID   sql.NullInt64
		pickup    sql.NullTime
		appliedBy sql.NullInt64
	)
	err := s.Scan(
		&o.ID, &o.OrderNumber, &o.OrderType, &o.Status, &tableID, &o.CustomerName, &o.CustomerPhone,
		&pickup, &o.SurchargesCents, &o.DiscountType, &o.DiscountValue, &o.DiscountReason, &appliedBy,
		&o.BundleSavingsCents, &o.BundleReason, &o.SubtotalCents, &o.DiscountCents, &o.TaxCents, &o.TotalAmountCents,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return model.Order{}, notFound(err)
	}
	o.TableID = uint64Ptr(tableID)
	o.DiscountAppliedBy = uint64Ptr(appliedBy)
	if pickup.Valid {
		t := pickup.Time
		o.PickupTime = &t
	}
	return o, nil
}

// NextOrderNumber increments the order counter.  LAST_INSERT_ID(expr) makes
// the new value readable on this connection without a second query.
func (t *mysqlTx) NextOrderNumber(ctx context.Context) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE order_counters SET value = LAST_INSERT_ID(value + 1) WHERE name = 'orders'`)
	if err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	n, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// InsertOrder stores o and populates its ID and timestamps.
func (t *mysqlTx) InsertOrder(ctx context.Context, o *model.Order) error {
	const q = `INSERT INTO orders (order_number, order_type, status, table_id, customer_name, customer_phone,
		pickup_time, surcharges_cents, discount_type, discount_value, discount_reason, discount_applied_by,
		bundle_savings_cents, bundle_reason, subtotal_cents, discount_cents, tax_cents, total_amount_cents, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var pickup sql.NullTime
	if o.PickupTime != nil {
		pickup = sql.NullTime{Time: *o.PickupTime, Valid: true}
	}
	res, err := t.tx.ExecContext(ctx, q,
		o.OrderNumber, o.OrderType, o.Status, nullUint64(o.TableID), o.CustomerName, o.CustomerPhone,
		pickup, o.SurchargesCents, o.DiscountType, o.DiscountValue, o.DiscountReason, nullUint64(o.DiscountAppliedBy),
		o.BundleSavingsCents, o.BundleReason, o.SubtotalCents, o.DiscountCents, o.TaxCents, o.TotalAmountCents, o.CreatedBy,
	)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	// Query back the row to pick up the database timestamps.
	stored, err := t.GetOrder(ctx, uint64(id))
	if err != nil {
		return err
	}
	*o = stored
	return nil
}

// GetOrder reads an order without locking it.
func (t *mysqlTx) GetOrder(ctx context.Context, id uint64) (model.Order, error) {
	return scanOrder(t.tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
}

// LockOrder reads an order and holds its row lock until the transaction
// ends.  Concurrent writers of the same order queue up here.
func (t *mysqlTx) LockOrder(ctx context.Context, id uint64) (model.Order, error) {
	return scanOrder(t.tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, id))
}

// UpdateOrder writes every mutable column of o.
func (t *mysqlTx) UpdateOrder(ctx context.Context, o *model.Order) error {
	const q = `UPDATE orders SET status = ?, table_id = ?, surcharges_cents = ?,
		discount_type = ?, discount_value = ?, discount_reason = ?, discount_applied_by = ?,
		bundle_savings_cents = ?, bundle_reason = ?, subtotal_cents = ?, discount_cents = ?,
		tax_cents = ?, total_amount_cents = ?, updated_at = UTC_TIMESTAMP()
		WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q,
		o.Status, nullUint64(o.TableID), o.SurchargesCents,
		o.DiscountType, o.DiscountValue, o.DiscountReason, nullUint64(o.DiscountAppliedBy),
		o.BundleSavingsCents, o.BundleReason, o.SubtotalCents, o.DiscountCents,
		o.TaxCents, o.TotalAmountCents, o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order %d: %w", o.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 for unchanged rows too, so confirm existence.
		if _, err := t.GetOrder(ctx, o.ID); err != nil {
			return err
		}
	}
	return nil
}
