package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
)

const publishTimeout = 3 * time.Second

// outbox collects the events of one operation until its unit of work
// commits.  A unit of work that fails discards them.
type outbox struct {
	events []queue.OrderEvent
}

func (b *outbox) add(t queue.EventType, o model.Order, actor Actor, now time.Time) *queue.OrderEvent {
	b.events = append(b.events, queue.OrderEvent{
		Type:             t,
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		OrderType:        string(o.OrderType),
		TableID:          o.TableID,
		TotalAmountCents: o.TotalAmountCents,
		ActorID:          actor.StaffID,
		OccurredAt:       now,
	})
	return &b.events[len(b.events)-1]
}

func (b *outbox) statusChanged(o model.Order, from, to model.OrderStatus, actor Actor, now time.Time) {
	ev := b.add(queue.EventOrderStatusChanged, o, actor, now)
	ev.From, ev.To = string(from), string(to)
}

func (b *outbox) reset() { b.events = b.events[:0] }

// flush publishes the collected events.  Publishing never fails the
// operation: the change is already committed.
func (s *Service) flush(ctx context.Context, b *outbox) {
	if len(b.events) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	for _, ev := range b.events {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("event not published",
				zap.String("event", string(ev.Type)),
				zap.Uint64("order_id", ev.OrderID),
				zap.Error(err))
		}
	}
}
