package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// Catalog is an in-memory repository.Catalog.
type Catalog struct {
	mu     sync.RWMutex
	items  map[uint64]model.MenuItem
	promos []model.Promotion
}

// NewCatalog returns a catalog holding items and promos.
func NewCatalog(items []model.MenuItem, promos []model.Promotion) *Catalog {
	c := &Catalog{items: map[uint64]model.MenuItem{}}
	for _, it := range items {
		c.items[it.ID] = it
	}
	c.promos = append(c.promos, promos...)
	return c
}

// PutMenuItem inserts or replaces a menu item.
func (c *Catalog) PutMenuItem(it model.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[it.ID] = it
}

// AddPromotion appends a promotion.
func (c *Catalog) AddPromotion(p model.Promotion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promos = append(c.promos, p)
}

func (c *Catalog) GetMenuItem(_ context.Context, id uint64) (model.MenuItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[id]
	if !ok {
		return model.MenuItem{}, repository.ErrNotFound
	}
	return it, nil
}

func (c *Catalog) ListMenuItems(context.Context) ([]model.MenuItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]model.MenuItem, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (c *Catalog) ListActivePromotions(_ context.Context, now time.Time) ([]model.Promotion, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	active := pricing.ActivePromotions(c.promos, now)
	for i := range active {
		active[i].MenuItemIDs = append([]uint64{}, active[i].MenuItemIDs...)
	}
	return active, nil
}

var _ repository.Catalog = (*Catalog)(nil)
