package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

const orderItemColumns = `id, order_id, menu_item_id, name, quantity, notes, status, price_cents, station, bundle_instance, created_at`

func scanOrderItem(s rowScanner) (model.OrderItem, error) {
	var it model.OrderItem
	err := s.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Quantity, &it.Notes,
		&it.Status, &it.PriceCents, &it.Station, &it.BundleInstance, &it.CreatedAt)
	if err != nil {
		return model.OrderItem{}, notFound(err)
	}
	it.AllergyIDs = []uint64{}
	return it, nil
}

// ListOrderItems returns the lines of an order in insertion order, with
// their allergy ids attached.
func (t *mysqlTx) ListOrderItems(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	items := []model.OrderItem{}
	index := map[uint64]int{}
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		index[it.ID] = len(items)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	arows, err := t.tx.QueryContext(ctx, `SELECT a.order_item_id, a.allergy_id
		FROM order_item_allergies a
		JOIN order_items i ON i.id = a.order_item_id
		WHERE i.order_id = ?
		ORDER BY a.order_item_id, a.allergy_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order item allergies: %w", err)
	}
	defer arows.Close()
	for arows.Next() {
		var itemID, allergyID uint64
		if err := arows.Scan(&itemID, &allergyID); err != nil {
			return nil, err
		}
		if i, ok := index[itemID]; ok {
			items[i].AllergyIDs = append(items[i].AllergyIDs, allergyID)
		}
	}
	return items, arows.Err()
}

// GetOrderItem reads a single line without locking it.  It is used to find
// the parent order, which must be locked before the line.
func (t *mysqlTx) GetOrderItem(ctx context.Context, id uint64) (model.OrderItem, error) {
	return t.readOrderItem(ctx, `SELECT `+orderItemColumns+` FROM order_items WHERE id = ?`, id)
}

// LockOrderItem reads a single line and locks it.  Callers that go on to
// change the parent order must lock the order first.
func (t *mysqlTx) LockOrderItem(ctx context.Context, id uint64) (model.OrderItem, error) {
	return t.readOrderItem(ctx, `SELECT `+orderItemColumns+` FROM order_items WHERE id = ? FOR UPDATE`, id)
}

func (t *mysqlTx) readOrderItem(ctx context.Context, q string, id uint64) (model.OrderItem, error) {
	it, err := scanOrderItem(t.tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return model.OrderItem{}, err
	}
	rows, err := t.tx.QueryContext(ctx,
		`SELECT allergy_id FROM order_item_allergies WHERE order_item_id = ? ORDER BY allergy_id`, id)
	if err != nil {
		return model.OrderItem{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var a uint64
		if err := rows.Scan(&a); err != nil {
			return model.OrderItem{}, err
		}
		it.AllergyIDs = append(it.AllergyIDs, a)
	}
	return it, rows.Err()
}

// InsertOrderItem stores one line and its allergy ids and populates the
// generated ID.
func (t *mysqlTx) InsertOrderItem(ctx context.Context, it *model.OrderItem) error {
	const q = `INSERT INTO order_items (order_id, menu_item_id, name, quantity, notes, status, price_cents, station, bundle_instance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, it.OrderID, it.MenuItemID, it.Name, it.Quantity, it.Notes,
		it.Status, it.PriceCents, it.Station, it.BundleInstance)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	if len(it.AllergyIDs) > 0 {
		query := `INSERT INTO order_item_allergies (order_item_id, allergy_id) VALUES `
		args := make([]any, 0, len(it.AllergyIDs)*2)
		for i, a := range it.AllergyIDs {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, it.ID, a)
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert order item allergies: %w", err)
		}
	}
	return t.tx.QueryRowContext(ctx, `SELECT created_at FROM order_items WHERE id = ?`, it.ID).Scan(&it.CreatedAt)
}

// UpdateOrderItemStatus sets the preparation status of one line.
func (t *mysqlTx) UpdateOrderItemStatus(ctx context.Context, id uint64, status model.ItemStatus) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE order_items SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update order item %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists uint64
		if err := t.tx.QueryRowContext(ctx, `SELECT id FROM order_items WHERE id = ?`, id).Scan(&exists); err != nil {
			return notFound(err)
		}
	}
	return nil
}

// DeleteOrderItem removes a line.  Allergy rows go with it through the
// ON DELETE CASCADE foreign key.
func (t *mysqlTx) DeleteOrderItem(ctx context.Context, id uint64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM order_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertOrderBundle records one bundle instance.
func (t *mysqlTx) InsertOrderBundle(ctx context.Context, b *model.OrderBundle) error {
	const q = `INSERT INTO order_bundles (order_id, instance, promotion_id, name, bundle_price_cents, item_count)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, b.OrderID, b.Instance, b.PromotionID, b.Name, b.BundlePriceCents, b.ItemCount)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert order bundle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// ListOrderBundles returns the bundle instances of an order.
func (t *mysqlTx) ListOrderBundles(ctx context.Context, orderID uint64) ([]model.OrderBundle, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, order_id, instance, promotion_id, name, bundle_price_cents, item_count
		FROM order_bundles WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order bundles: %w", err)
	}
	defer rows.Close()
	bundles := []model.OrderBundle{}
	for rows.Next() {
		var b model.OrderBundle
		if err := rows.Scan(&b.ID, &b.OrderID, &b.Instance, &b.PromotionID, &b.Name, &b.BundlePriceCents, &b.ItemCount); err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}
	return bundles, rows.Err()
}
