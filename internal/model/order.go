package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType is the service channel of an order.
type OrderType string

const (
	OrderDineIn    OrderType = "DINE_IN"
	OrderToGo      OrderType = "TO_GO"
	OrderQuickSale OrderType = "QUICK_SALE"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderDineIn || t == OrderToGo || t == OrderQuickSale
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderCreated   OrderStatus = "CREATED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderServed    OrderStatus = "SERVED"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool { return s == OrderPaid || s == OrderCancelled }

// DiscountType is the kind of manual discount applied to an order.  The
// empty value means no manual discount.
type DiscountType string

const (
	DiscountNone       DiscountType = ""
	DiscountFixed      DiscountType = "FIXED"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

// Order is the aggregate owned by the lifecycle service.  The amount
// fields are a denormalized breakdown rewritten on every item or discount
// change; they are never incremented in place.
//
// Fields:
//  OrderNumber        – human-readable, monotonically increasing number.
//  TableID            – table the order occupies (nil for counter sales).
//  SurchargesCents    – flat add-ons such as a bag fee.
//  DiscountType/Value – manual discount; Value is currency for FIXED and a
//                       percentage for PERCENTAGE.
//  BundleSavingsCents – savings derived from bundle rows, recomputed.
//  TotalAmountCents   – subtotal - discount + surcharges + tax.
type Order struct {
	ID                 uint64          `json:"id"`
	OrderNumber        int64           `json:"order_number"`
	OrderType          OrderType       `json:"order_type"`
	Status             OrderStatus     `json:"status"`
	TableID            *uint64         `json:"table_id,omitempty"`
	CustomerName       string          `json:"customer_name,omitempty"`
	CustomerPhone      string          `json:"customer_phone,omitempty"`
	PickupTime         *time.Time      `json:"pickup_time,omitempty"`
	SurchargesCents    int64           `json:"surcharges_cents"`
	DiscountType       DiscountType    `json:"discount_type,omitempty"`
	DiscountValue      decimal.Decimal `json:"discount_value"`
	DiscountReason     string          `json:"discount_reason,omitempty"`
	DiscountAppliedBy  *uint64         `json:"discount_applied_by,omitempty"`
	BundleSavingsCents int64           `json:"bundle_savings_cents"`
	BundleReason       string          `json:"bundle_reason,omitempty"`
	SubtotalCents      int64           `json:"subtotal_cents"`
	DiscountCents      int64           `json:"discount_cents"`
	TaxCents           int64           `json:"tax_cents"`
	TotalAmountCents   int64           `json:"total_amount_cents"`
	CreatedBy          uint64          `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// EffectiveDiscountType is the discount type a receipt shows.  Bundle
// savings are a fixed discount layered on top of the manual one, so an
// order with only bundle savings reports FIXED.
func (o Order) EffectiveDiscountType() DiscountType {
	if o.DiscountType != DiscountNone {
		return o.DiscountType
	}
	if o.BundleSavingsCents > 0 {
		return DiscountFixed
	}
	return DiscountNone
}

// ItemStatus is the preparation state of a single order line.
type ItemStatus string

const (
	ItemPending   ItemStatus = "PENDING"
	ItemPreparing ItemStatus = "PREPARING"
	ItemReady     ItemStatus = "READY"
	ItemServed    ItemStatus = "SERVED"
)

// Rank is the position of s on the forward-only item path, or -1 for an
// unknown status.
func (s ItemStatus) Rank() int {
	switch s {
	case ItemPending:
		return 0
	case ItemPreparing:
		return 1
	case ItemReady:
		return 2
	case ItemServed:
		return 3
	}
	return -1
}

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool { return s.Rank() >= 0 }

// Done reports whether the item has left the kitchen (READY or SERVED).
func (s ItemStatus) Done() bool { return s.Rank() >= ItemReady.Rank() }

// OrderItem is one line of an order.  PriceCents, Name and Station are
// snapshots taken from the catalog when the line was added.
type OrderItem struct {
	ID             uint64     `json:"id"`                        // order_items.id
	OrderID        uint64     `json:"order_id"`                  // order_items.order_id
	MenuItemID     uint64     `json:"menu_item_id"`              // order_items.menu_item_id
	Name           string     `json:"name"`                      // order_items.name
	Quantity       int        `json:"quantity"`                  // order_items.quantity
	Notes          string     `json:"notes,omitempty"`           // order_items.notes
	AllergyIDs     []uint64   `json:"allergy_ids"`               // order_item_allergies.allergy_id
	Status         ItemStatus `json:"status"`                    // order_items.status
	PriceCents     int64      `json:"price_cents"`               // order_items.price_cents
	Station        Station    `json:"station"`                   // order_items.station
	BundleInstance string     `json:"bundle_instance,omitempty"` // order_items.bundle_instance
	CreatedAt      time.Time  `json:"created_at"`                // order_items.created_at
}

// OrderBundle records one bundle-promotion instance sold on an order.
// ItemCount is the number of lines the instance was created with; an
// instance missing any of them no longer earns its savings.
type OrderBundle struct {
	ID               uint64 `json:"id"`
	OrderID          uint64 `json:"order_id"`
	Instance         string `json:"instance"`
	PromotionID      uint64 `json:"promotion_id"`
	Name             string `json:"name"`
	BundlePriceCents int64  `json:"bundle_price_cents"`
	ItemCount        int    `json:"item_count"`
}

// StatusChange is an entry of the order status log.
type StatusChange struct {
	OrderID   uint64      `json:"order_id"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedBy uint64      `json:"changed_by"`
	Note      string      `json:"note,omitempty"`
	ChangedAt time.Time   `json:"changed_at"`
}
