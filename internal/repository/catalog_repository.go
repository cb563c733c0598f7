package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// CatalogRepo reads the menu and promotions from MySQL.  The catalog is
// maintained outside this service, so the repo never writes.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a CatalogRepo bound to db.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// GetMenuItem returns a single menu item or ErrNotFound.
func (r *CatalogRepo) GetMenuItem(ctx context.Context, id uint64) (model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, price_cents, available, station FROM menu_items WHERE id = ?`, id,
	).Scan(&m.ID, &m.Name, &m.PriceCents, &m.Available, &m.Station)
	if err != nil {
		return model.MenuItem{}, notFound(err)
	}
	return m, nil
}

// ListMenuItems returns the whole menu ordered by name.
func (r *CatalogRepo) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, price_cents, available, station FROM menu_items ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()
	items := []model.MenuItem{}
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.PriceCents, &m.Available, &m.Station); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// ListActivePromotions returns the promotions effective at now together
// with their menu item ids.
func (r *CatalogRepo) ListActivePromotions(ctx context.Context, now time.Time) ([]model.Promotion, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, type, value, bundle_price_cents, start_date, end_date, is_active
		FROM promotions
		WHERE is_active = 1 AND start_date <= ? AND end_date >= ?
		ORDER BY id`, now.UTC(), now.UTC())
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()
	promos := []model.Promotion{}
	index := map[uint64]int{}
	for rows.Next() {
		var p model.Promotion
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Value, &p.BundlePriceCents, &p.StartDate, &p.EndDate, &p.IsActive); err != nil {
			return nil, err
		}
		p.MenuItemIDs = []uint64{}
		index[p.ID] = len(promos)
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(promos) == 0 {
		return promos, nil
	}

	args := make([]any, 0, len(promos))
	for _, p := range promos {
		args = append(args, p.ID)
	}
	irows, err := r.db.QueryContext(ctx, `SELECT promotion_id, menu_item_id FROM promotion_items
		WHERE promotion_id IN (`+placeholders(len(args))+`) ORDER BY promotion_id, menu_item_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list promotion items: %w", err)
	}
	defer irows.Close()
	for irows.Next() {
		var pid, mid uint64
		if err := irows.Scan(&pid, &mid); err != nil {
			return nil, err
		}
		if i, ok := index[pid]; ok {
			promos[i].MenuItemIDs = append(promos[i].MenuItemIDs, mid)
		}
	}
	return promos, irows.Err()
}
