package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// DefaultTaxRate is the standard 13% sales tax rate.
var DefaultTaxRate = decimal.RequireFromString("0.13")

var (
	// ErrNegativeDiscount is returned for a discount value below zero.
	ErrNegativeDiscount = errors.New("discount value cannot be negative")
	// ErrPercentageRange is returned for a percentage above 100.
	ErrPercentageRange = errors.New("percentage must be between 0 and 100")
	// ErrUnknownDiscountType is returned for an unsupported discount type.
	ErrUnknownDiscountType = errors.New("unknown discount type")
	// ErrFixedPrecision is returned for a fixed amount below a cent.
	ErrFixedPrecision = errors.New("fixed discount must have at most two decimal places")
	// ErrNegativeTip is returned for a tip below zero.
	ErrNegativeTip = errors.New("tip cannot be negative")
)

// LineTotal is the snapshot unit price times the quantity.
func LineTotal(priceCents int64, quantity int) int64 {
	return priceCents * int64(quantity)
}

// Subtotal sums the line totals of items at their snapshot prices.
func Subtotal(items []model.OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += LineTotal(it.PriceCents, it.Quantity)
	}
	return total
}

// ValidateDiscount checks a manual discount before it is stored.
func ValidateDiscount(kind model.DiscountType, value decimal.Decimal) error {
	switch kind {
	case model.DiscountNone:
		return nil
	case model.DiscountFixed, model.DiscountPercentage:
	default:
		return ErrUnknownDiscountType
	}
	if value.IsNegative() {
		return ErrNegativeDiscount
	}
	if kind == model.DiscountPercentage && value.GreaterThan(hundred) {
		return ErrPercentageRange
	}
	if kind == model.DiscountFixed && !value.Equal(value.Truncate(2)) {
		return ErrFixedPrecision
	}
	return nil
}

// DiscountAmount is the manual discount on subtotalCents.  The result is
// never negative and never exceeds the subtotal.
func DiscountAmount(kind model.DiscountType, value decimal.Decimal, subtotalCents int64) (int64, error) {
	if err := ValidateDiscount(kind, value); err != nil {
		return 0, err
	}
	var amount int64
	switch kind {
	case model.DiscountFixed:
		amount = FromDecimal(value)
	case model.DiscountPercentage:
		amount = roundCents(decimal.NewFromInt(subtotalCents).Mul(value).Div(hundred))
	}
	return clamp(amount, subtotalCents), nil
}

// Tax is taxableCents times rate, rounded half-up to the cent.
func Tax(taxableCents int64, rate decimal.Decimal) int64 {
	if taxableCents <= 0 {
		return 0
	}
	return roundCents(decimal.NewFromInt(taxableCents).Mul(rate))
}

func clamp(amount, limit int64) int64 {
	if amount < 0 {
		return 0
	}
	if amount > limit {
		return limit
	}
	return amount
}

// Quote is the full price breakdown of an order.
type Quote struct {
	SubtotalCents       int64  `json:"subtotal_cents"`
	ManualDiscountCents int64  `json:"manual_discount_cents"`
	BundleSavingsCents  int64  `json:"bundle_savings_cents"`
	BundleReason        string `json:"bundle_reason,omitempty"`
	DiscountCents       int64  `json:"discount_cents"`
	SurchargesCents     int64  `json:"surcharges_cents"`
	TaxableCents        int64  `json:"taxable_cents"`
	TaxCents            int64  `json:"tax_cents"`
	TotalCents          int64  `json:"total_cents"`
	TipCents            int64  `json:"tip_cents"`
	GrandTotalCents     int64  `json:"grand_total_cents"`
	Total               string `json:"total"`
	GrandTotal          string `json:"grand_total"`
}

// QuoteInput carries everything a quote depends on.
type QuoteInput struct {
	Items           []model.OrderItem
	Bundles         []model.OrderBundle
	DiscountType    model.DiscountType
	DiscountValue   decimal.Decimal
	SurchargesCents int64
	TipCents        int64
}

// Engine prices orders with a fixed tax rate.
type Engine struct {
	TaxRate decimal.Decimal
}

// NewEngine returns an engine taxing at rate.  A zero rate is tax exempt.
func NewEngine(rate decimal.Decimal) *Engine {
	return &Engine{TaxRate: rate}
}

// Quote computes the breakdown:
//
//	manual     = discount on subtotal - bundle savings
//	discount   = min(manual + bundle savings, subtotal)
//	taxable    = subtotal - discount + surcharges
//	total      = taxable + tax(taxable)
//	grandTotal = total + tip
func (e *Engine) Quote(in QuoteInput) (Quote, error) {
	if in.TipCents < 0 {
		return Quote{}, ErrNegativeTip
	}
	subtotal := Subtotal(in.Items)
	savings, reason := OrderBundleSavings(in.Items, in.Bundles)
	manual, err := DiscountAmount(in.DiscountType, in.DiscountValue, subtotal-savings)
	if err != nil {
		return Quote{}, err
	}
	discount := clamp(manual+savings, subtotal)
	surcharges := in.SurchargesCents
	if surcharges < 0 {
		surcharges = 0
	}
	taxable := subtotal - discount + surcharges
	tax := Tax(taxable, e.TaxRate)
	total := taxable + tax
	q := Quote{
		SubtotalCents:       subtotal,
		ManualDiscountCents: manual,
		BundleSavingsCents:  savings,
		BundleReason:        reason,
		DiscountCents:       discount,
		SurchargesCents:     surcharges,
		TaxableCents:        taxable,
		TaxCents:            tax,
		TotalCents:          total,
		TipCents:            in.TipCents,
		GrandTotalCents:     total + in.TipCents,
	}
	q.Total = Format(q.TotalCents)
	q.GrandTotal = Format(q.GrandTotalCents)
	return q, nil
}

// Reprice recomputes the denormalized amounts of o from its current items
// and bundles.  It is the only place order totals are written.
func (e *Engine) Reprice(o *model.Order, items []model.OrderItem, bundles []model.OrderBundle) (Quote, error) {
	q, err := e.Quote(QuoteInput{
		Items:           items,
		Bundles:         bundles,
		DiscountType:    o.DiscountType,
		DiscountValue:   o.DiscountValue,
		SurchargesCents: o.SurchargesCents,
	})
	if err != nil {
		return Quote{}, err
	}
	o.SubtotalCents = q.SubtotalCents
	o.BundleSavingsCents = q.BundleSavingsCents
	o.BundleReason = q.BundleReason
	o.DiscountCents = q.DiscountCents
	o.TaxCents = q.TaxCents
	o.TotalAmountCents = q.TotalCents
	return q, nil
}
