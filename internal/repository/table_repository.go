package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

const tableColumns = `id, label, capacity, status, merged_with_id, updated_at`

func scanTable(s rowScanner) (model.Table, error) {
	var (
		tb     model.Table
		merged sql.NullInt64
	)
	if err := s.Scan(&tb.ID, &tb.Label, &tb.Capacity, &tb.Status, &merged, &tb.UpdatedAt); err != nil {
		return model.Table{}, notFound(err)
	}
	tb.MergedWithID = uint64Ptr(merged)
	return tb, nil
}

func (t *mysqlTx) queryTables(ctx context.Context, q string, args ...any) ([]model.Table, error) {
	rows, err := t.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()
	tables := []model.Table{}
	for rows.Next() {
		tb, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, tb)
	}
	return tables, rows.Err()
}

// GetTable reads one table without locking it.
func (t *mysqlTx) GetTable(ctx context.Context, id uint64) (model.Table, error) {
	return scanTable(t.tx.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE id = ?`, id))
}

// LockTables locks the given tables.  The ids are sorted first so every
// caller acquires row locks in the same order.
func (t *mysqlTx) LockTables(ctx context.Context, ids []uint64) ([]model.Table, error) {
	if len(ids) == 0 {
		return []model.Table{}, nil
	}
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	args := make([]any, len(sorted))
	for i, id := range sorted {
		args[i] = id
	}
	q := `SELECT ` + tableColumns + ` FROM dining_tables WHERE id IN (` + placeholders(len(args)) + `) ORDER BY id FOR UPDATE`
	return t.queryTables(ctx, q, args...)
}

// ListTables returns every table ordered by id.
func (t *mysqlTx) ListTables(ctx context.Context) ([]model.Table, error) {
	return t.queryTables(ctx, `SELECT `+tableColumns+` FROM dining_tables ORDER BY id`)
}

// ListSatellites locks and returns the tables merged into primaryID.
func (t *mysqlTx) ListSatellites(ctx context.Context, primaryID uint64) ([]model.Table, error) {
	return t.queryTables(ctx,
		`SELECT `+tableColumns+` FROM dining_tables WHERE merged_with_id = ? ORDER BY id FOR UPDATE`, primaryID)
}

// UpdateTable writes the status and merge link of tb.
func (t *mysqlTx) UpdateTable(ctx context.Context, tb *model.Table) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE dining_tables SET status = ?, merged_with_id = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
		tb.Status, nullUint64(tb.MergedWithID), tb.ID)
	if err != nil {
		return fmt.Errorf("update table %d: %w", tb.ID, err)
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
