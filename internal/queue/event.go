// Package queue carries order events over RabbitMQ: a publisher used by
// the service after each committed change and a consumer that writes one
// line per event to logs/orders.log.
package queue

import "time"

// QueueName is the durable queue every order event is routed to.
const QueueName = "pos.order.events"

// EventType names the kind of order event.
type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderPaid          EventType = "order.paid"
)

// OrderEvent is published after an order change commits.  It carries
// enough for downstream consumers (kitchen display, analytics, audit log)
// to act without querying the primary database.
type OrderEvent struct {
	Type             EventType `json:"type"`
	OrderID          uint64    `json:"order_id"`
	OrderNumber      int64     `json:"order_number"`
	OrderType        string    `json:"order_type"`
	TableID          *uint64   `json:"table_id,omitempty"`
	From             string    `json:"from,omitempty"`
	To               string    `json:"to,omitempty"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	TipCents         int64     `json:"tip_cents,omitempty"`
	Method           string    `json:"method,omitempty"`
	ActorID          uint64    `json:"actor_id"`
	OccurredAt       time.Time `json:"occurred_at"`
}
