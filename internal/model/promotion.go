package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromotionType distinguishes the promotion pricing rules.
type PromotionType string

const (
	PromotionPercentage PromotionType = "PERCENTAGE"
	PromotionFixed      PromotionType = "FIXED"
	PromotionBundle     PromotionType = "BUNDLE"
)

// Promotion is a catalog-defined offer.  Bundles sell MenuItemIDs together
// at BundlePriceCents; percentage and fixed promotions carry their
// magnitude in Value.
type Promotion struct {
	ID               uint64          `json:"id"`
	Name             string          `json:"name"`
	Type             PromotionType   `json:"type"`
	Value            decimal.Decimal `json:"value"`
	BundlePriceCents int64           `json:"bundle_price_cents"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	IsActive         bool            `json:"is_active"`
	MenuItemIDs      []uint64        `json:"menu_item_ids"`
}

// EffectiveAt reports whether the promotion applies at now.  Both ends of
// the validity window are inclusive.
func (p Promotion) EffectiveAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// Includes reports whether menuItemID is one of the promotion's items.
func (p Promotion) Includes(menuItemID uint64) bool {
	for _, id := range p.MenuItemIDs {
		if id == menuItemID {
			return true
		}
	}
	return false
}
