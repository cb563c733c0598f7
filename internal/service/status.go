package service

import (
	"context"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// orderEdges is the order status graph reachable through
// TransitionOrderStatus.  PAID is absent: only Settle pays an order.
var orderEdges = map[model.OrderStatus][]model.OrderStatus{
	model.OrderCreated:   {model.OrderPreparing, model.OrderReady, model.OrderCancelled},
	model.OrderPreparing: {model.OrderReady, model.OrderCancelled},
	model.OrderReady:     {model.OrderServed, model.OrderCancelled},
	model.OrderServed:    {model.OrderCancelled},
}

func canMove(from, to model.OrderStatus) bool {
	for _, s := range orderEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// itemMoveAllowed is the forward-only item path plus the PENDING -> READY
// shortcut used when an item is marked ready without a preparation step.
func itemMoveAllowed(from, to model.ItemStatus) bool {
	if from == model.ItemPending && to == model.ItemReady {
		return true
	}
	return from.Valid() && to.Rank() == from.Rank()+1
}

// setStatus moves o to a new status, writes the status log entry and queues
// the event.  The caller persists o.
func (s *Service) setStatus(ctx context.Context, tx repository.Tx, o *model.Order, to model.OrderStatus, actor Actor, note string, box *outbox) error {
	from := o.Status
	o.Status = to
	if err := tx.InsertStatusChange(ctx, model.StatusChange{
		OrderID: o.ID, From: from, To: to, ChangedBy: actor.StaffID, Note: note,
	}); err != nil {
		return err
	}
	box.statusChanged(*o, from, to, actor, s.now())
	return nil
}

// aggregate lifts item progress to the order: the first item in the kitchen
// moves a CREATED order to PREPARING, and a PREPARING order whose items are
// all done becomes READY.
func (s *Service) aggregate(ctx context.Context, tx repository.Tx, o *model.Order, moved model.ItemStatus, actor Actor, box *outbox) error {
	if o.Status == model.OrderCreated && (moved == model.ItemPreparing || moved == model.ItemReady) {
		if err := s.setStatus(ctx, tx, o, model.OrderPreparing, actor, "preparation started", box); err != nil {
			return err
		}
	}
	if o.Status != model.OrderPreparing {
		return nil
	}
	items, err := tx.ListOrderItems(ctx, o.ID)
	if err != nil {
		return err
	}
	if allDone(items) {
		return s.setStatus(ctx, tx, o, model.OrderReady, actor, "all items ready", box)
	}
	return nil
}

// TransitionItemStatus moves one line forward and aggregates the result
// onto its order.
func (s *Service) TransitionItemStatus(ctx context.Context, actor Actor, itemID uint64, to model.ItemStatus) (*OrderDetail, error) {
	if !to.Valid() {
		return nil, fail(InvalidInput, "unknown item status %q", to)
	}
	var (
		detail *OrderDetail
		box    outbox
	)
	err := s.run(ctx, "transition item", func(tx repository.Tx) error {
		box.reset()
		peek, err := tx.GetOrderItem(ctx, itemID)
		if err != nil {
			return missing(err, "order item %d", itemID)
		}
		o, err := tx.LockOrder(ctx, peek.OrderID)
		if err != nil {
			return missing(err, "order %d", peek.OrderID)
		}
		if o.Status.Terminal() {
			return fail(OrderClosed, "order %d is %s", o.ID, o.Status)
		}
		it, err := tx.LockOrderItem(ctx, itemID)
		if err != nil {
			return missing(err, "order item %d", itemID)
		}
		if !itemMoveAllowed(it.Status, to) {
			return fail(InvalidTransition, "order item %d cannot move from %s to %s", it.ID, it.Status, to)
		}
		if err := tx.UpdateOrderItemStatus(ctx, it.ID, to); err != nil {
			return err
		}
		before := o.Status
		if err := s.aggregate(ctx, tx, &o, to, actor, &box); err != nil {
			return err
		}
		if o.Status != before {
			if err := tx.UpdateOrder(ctx, &o); err != nil {
				return err
			}
		}
		detail, err = s.loadDetail(ctx, tx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.flush(ctx, &box)
	return detail, nil
}

// MarkAllReady moves every PENDING or PREPARING line of an order to READY
// and, when nothing is left in preparation, the order itself to READY.
func (s *Service) MarkAllReady(ctx context.Context, actor Actor, orderID uint64) (*OrderDetail, error) {
	var (
		detail *OrderDetail
		box    outbox
	)
	err := s.run(ctx, "mark all ready", func(tx repository.Tx) error {
		box.reset()
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return missing(err, "order %d", orderID)
		}
		if o.Status.Terminal() {
			return fail(OrderClosed, "order %d is %s", o.ID, o.Status)
		}
		items, err := tx.ListOrderItems(ctx, o.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if it.Status.Done() {
				continue
			}
			if err := tx.UpdateOrderItemStatus(ctx, it.ID, model.ItemReady); err != nil {
				return err
			}
		}
		if len(items) > 0 && (o.Status == model.OrderCreated || o.Status == model.OrderPreparing) {
			if err := s.setStatus(ctx, tx, &o, model.OrderReady, actor, "all items marked ready", &box); err != nil {
				return err
			}
			if err := tx.UpdateOrder(ctx, &o); err != nil {
				return err
			}
		}
		detail, err = s.loadDetail(ctx, tx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.flush(ctx, &box)
	return detail, nil
}

// TransitionOrderStatus applies an explicit order status change.  READY and
// SERVED require every line to be done; SERVED hands the ready lines over;
// CANCELLED is front-of-house only and releases the order's table.
func (s *Service) TransitionOrderStatus(ctx context.Context, actor Actor, orderID uint64, to model.OrderStatus) (*OrderDetail, error) {
	switch to {
	case model.OrderCreated, model.OrderPreparing, model.OrderReady, model.OrderServed, model.OrderCancelled:
	case model.OrderPaid:
		return nil, fail(InvalidTransition, "orders are paid through settlement")
	default:
		return nil, fail(InvalidInput, "unknown order status %q", to)
	}
	if to == model.OrderCancelled && !actor.frontOfHouse() {
		return nil, fail(Unauthorized, "role %s cannot cancel orders", actor.Role)
	}
	var (
		detail *OrderDetail
		box    outbox
	)
	err := s.run(ctx, "transition order", func(tx repository.Tx) error {
		box.reset()
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return missing(err, "order %d", orderID)
		}
		if o.Status.Terminal() {
			return fail(OrderClosed, "order %d is %s", o.ID, o.Status)
		}
		if !canMove(o.Status, to) {
			return fail(InvalidTransition, "order %d cannot move from %s to %s", o.ID, o.Status, to)
		}
		items, err := tx.ListOrderItems(ctx, o.ID)
		if err != nil {
			return err
		}
		switch to {
		case model.OrderReady, model.OrderServed:
			if !allDone(items) {
				return fail(InvalidTransition, "order %d still has items in preparation", o.ID)
			}
		}
		if to == model.OrderServed {
			if err := serveReadyItems(ctx, tx, items); err != nil {
				return err
			}
		}
		if to == model.OrderCancelled && o.TableID != nil {
			if err := s.releaseTable(ctx, tx, *o.TableID); err != nil {
				return err
			}
		}
		if err := s.setStatus(ctx, tx, &o, to, actor, "", &box); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, &o); err != nil {
			return err
		}
		detail, err = s.loadDetail(ctx, tx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.flush(ctx, &box)
	return detail, nil
}

func serveReadyItems(ctx context.Context, tx repository.Tx, items []model.OrderItem) error {
	for _, it := range items {
		if it.Status != model.ItemReady {
			continue
		}
		if err := tx.UpdateOrderItemStatus(ctx, it.ID, model.ItemServed); err != nil {
			return err
		}
	}
	return nil
}
