package memstore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// SeedDemo fills s with eight tables and returns a small menu with one
// running bundle.  It is used when the server runs without MySQL.
func SeedDemo(s *Store, now time.Time) *Catalog {
	for i := 1; i <= 8; i++ {
		capacity := 4
		if i > 6 {
			capacity = 6
		}
		s.AddTable(fmt.Sprintf("T%d", i), capacity)
	}
	items := []model.MenuItem{
		{ID: 1, Name: "Cheeseburger", PriceCents: 899, Available: true, Station: model.StationKitchen},
		{ID: 2, Name: "Fries", PriceCents: 499, Available: true, Station: model.StationKitchen},
		{ID: 3, Name: "Lemonade", PriceCents: 350, Available: true, Station: model.StationBar},
		{ID: 4, Name: "Brownie", PriceCents: 625, Available: true, Station: model.StationDessert},
		{ID: 5, Name: "Bottled Water", PriceCents: 200, Available: true, Station: model.StationNone},
		{ID: 6, Name: "Pastry", PriceCents: 1250, Available: true, Station: model.StationNone},
		{ID: 7, Name: "Seasonal Soup", PriceCents: 700, Available: false, Station: model.StationKitchen},
	}
	promos := []model.Promotion{{
		ID:               1,
		Name:             "Burger Combo",
		Type:             model.PromotionBundle,
		Value:            decimal.Zero,
		BundlePriceCents: 1099,
		StartDate:        now.AddDate(0, -1, 0),
		EndDate:          now.AddDate(1, 0, 0),
		IsActive:         true,
		MenuItemIDs:      []uint64{1, 2},
	}}
	return NewCatalog(items, promos)
}
