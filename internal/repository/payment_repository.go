package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// GetPaymentByOrder returns the payment of an order, or ErrNotFound when the
// order is unpaid.
func (t *mysqlTx) GetPaymentByOrder(ctx context.Context, orderID uint64) (model.Payment, error) {
	var p model.Payment
	err := t.tx.QueryRowContext(ctx, `SELECT id, order_id, amount_cents, tip_cents, change_cents, method,
		reference, created_by, created_at FROM payments WHERE order_id = ?`, orderID).Scan(
		&p.ID, &p.OrderID, &p.AmountCents, &p.TipCents, &p.ChangeCents, &p.Method,
		&p.Reference, &p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		return model.Payment{}, notFound(err)
	}
	return p, nil
}

// InsertPayment stores p.  The unique key on payments.order_id turns a
// second payment for the same order into ErrDuplicate.
func (t *mysqlTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	res, err := t.tx.ExecContext(ctx, `INSERT INTO payments (order_id, amount_cents, tip_cents, change_cents, method, reference, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.OrderID, p.AmountCents, p.TipCents, p.ChangeCents, p.Method, p.Reference, p.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return t.tx.QueryRowContext(ctx, `SELECT created_at FROM payments WHERE id = ?`, p.ID).Scan(&p.CreatedAt)
}
