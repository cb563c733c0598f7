package model

import "time"

// PaymentMethod is the tender used to settle an order.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "CASH"
	MethodCard PaymentMethod = "CARD"
)

// Valid reports whether m is a supported tender.
func (m PaymentMethod) Valid() bool { return m == MethodCash || m == MethodCard }

// Payment records the settlement of an order.  There is at most one
// payment per order, enforced by a unique key on order_id.
//
// Fields:
//  AmountCents – tender handed over by the customer.
//  TipCents    – gratuity, never taxed.
//  ChangeCents – cash returned to the customer (always 0 for cards).
//  Reference   – opaque reference printed on the receipt.
type Payment struct {
	ID          uint64        `json:"id"`           // payments.id
	OrderID     uint64        `json:"order_id"`     // payments.order_id
	AmountCents int64         `json:"amount_cents"` // payments.amount_cents
	TipCents    int64         `json:"tip_cents"`    // payments.tip_cents
	ChangeCents int64         `json:"change_cents"` // payments.change_cents
	Method      PaymentMethod `json:"method"`       // payments.method
	Reference   string        `json:"reference"`    // payments.reference
	CreatedBy   uint64        `json:"created_by"`   // payments.created_by
	CreatedAt   time.Time     `json:"created_at"`   // payments.created_at
}
