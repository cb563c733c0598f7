package model

// Station is the fulfillment channel a menu item is routed to.
type Station string

const (
	StationKitchen Station = "KITCHEN"
	StationBar     Station = "BAR"
	StationDessert Station = "DESSERT"
	// StationNone marks instant items that need no preparation.
	StationNone Station = "NONE"
)

// Instant reports whether items on this station skip preparation.
func (s Station) Instant() bool { return s == StationNone }

// MenuItem is the read-only catalog entry consulted when pricing an order.
// Catalog maintenance happens elsewhere; this service only reads it.
type MenuItem struct {
	ID         uint64  `json:"id"`          // menu_items.id
	Name       string  `json:"name"`        // menu_items.name
	PriceCents int64   `json:"price_cents"` // menu_items.price_cents
	Available  bool    `json:"available"`   // menu_items.available
	Station    Station `json:"station"`     // menu_items.station
}
