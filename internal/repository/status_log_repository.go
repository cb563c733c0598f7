package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// InsertStatusChange appends an entry to the order status log.
func (t *mysqlTx) InsertStatusChange(ctx context.Context, c model.StatusChange) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO order_status_log (order_id, from_status, to_status, changed_by, note)
		VALUES (?, ?, ?, ?, ?)`, c.OrderID, c.From, c.To, c.ChangedBy, c.Note)
	if err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}

// ListStatusChanges returns the status history of an order, oldest first.
func (t *mysqlTx) ListStatusChanges(ctx context.Context, orderID uint64) ([]model.StatusChange, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT order_id, from_status, to_status, changed_by, note, changed_at
		FROM order_status_log WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	defer rows.Close()
	log := []model.StatusChange{}
	for rows.Next() {
		var c model.StatusChange
		if err := rows.Scan(&c.OrderID, &c.From, &c.To, &c.ChangedBy, &c.Note, &c.ChangedAt); err != nil {
			return nil, err
		}
		log = append(log, c)
	}
	return log, rows.Err()
}
