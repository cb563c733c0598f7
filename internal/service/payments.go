package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// SettleInput is a tender against an order.  AmountCents is what the
// customer hands over and must cover the total plus the tip.
type SettleInput struct {
	OrderID     uint64              `json:"order_id"`
	AmountCents int64               `json:"amount_cents"`
	Method      model.PaymentMethod `json:"method"`
	TipCents    int64               `json:"tip_cents"`
}

// Receipt is the outcome of a settlement.
type Receipt struct {
	Payment model.Payment `json:"payment"`
	Order   model.Order   `json:"order"`
	Quote   pricing.Quote `json:"quote"`
}

// Settle records the payment of an order, marks it PAID and releases its
// table together with any tables merged into it, all in one unit of work.
// Of two concurrent settlements of one order exactly one succeeds; the
// other fails with AlreadyPaid.
func (s *Service) Settle(ctx context.Context, actor Actor, in SettleInput) (*Receipt, error) {
	if !actor.frontOfHouse() {
		return nil, fail(Unauthorized, "role %s cannot take payments", actor.Role)
	}
	if !in.Method.Valid() {
		return nil, fail(InvalidInput, "unknown payment method %q", in.Method)
	}
	if in.AmountCents <= 0 {
		return nil, fail(InvalidInput, "amount must be positive")
	}
	if in.TipCents < 0 {
		return nil, fail(InvalidInput, "tip cannot be negative")
	}

	var (
		receipt *Receipt
		box     outbox
	)
	err := s.run(ctx, "settle", func(tx repository.Tx) error {
		box.reset()
		o, err := tx.LockOrder(ctx, in.OrderID)
		if err != nil {
			return missing(err, "order %d", in.OrderID)
		}
		if _, err := tx.GetPaymentByOrder(ctx, o.ID); err == nil {
			return fail(AlreadyPaid, "order %d is already paid", o.ID)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		switch o.Status {
		case model.OrderPaid:
			return fail(AlreadyPaid, "order %d is already paid", o.ID)
		case model.OrderCancelled:
			return fail(OrderClosed, "order %d is cancelled", o.ID)
		case model.OrderReady, model.OrderServed:
		default:
			return fail(InvalidTransition, "order %d is %s and cannot be settled yet", o.ID, o.Status)
		}

		if _, err := s.reprice(ctx, tx, &o); err != nil {
			return err
		}
		qin, err := s.quoteInput(ctx, tx, o)
		if err != nil {
			return err
		}
		if !allDone(qin.Items) {
			return fail(InvalidTransition, "order %d still has items in preparation", o.ID)
		}
		qin.TipCents = in.TipCents
		q, err := s.pricing.Quote(qin)
		if err != nil {
			return pricingError(err)
		}
		due := q.GrandTotalCents
		if in.AmountCents < due {
			return fail(InvalidInput, "amount %s does not cover %s due", pricing.Format(in.AmountCents), pricing.Format(due))
		}
		if in.Method == model.MethodCard && in.AmountCents != due {
			return fail(InvalidInput, "card payments must be for exactly %s", pricing.Format(due))
		}

		p := model.Payment{
			OrderID:     o.ID,
			AmountCents: in.AmountCents,
			TipCents:    in.TipCents,
			ChangeCents: in.AmountCents - due,
			Method:      in.Method,
			Reference:   uuid.NewString(),
			CreatedBy:   actor.StaffID,
		}
		if err := tx.InsertPayment(ctx, &p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fail(AlreadyPaid, "order %d is already paid", o.ID)
			}
			return err
		}

		if err := serveReadyItems(ctx, tx, qin.Items); err != nil {
			return err
		}
		if o.Status == model.OrderReady {
			if err := s.setStatus(ctx, tx, &o, model.OrderServed, actor, "served at settlement", &box); err != nil {
				return err
			}
		}
		if err := s.setStatus(ctx, tx, &o, model.OrderPaid, actor, "payment "+p.Reference, &box); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, &o); err != nil {
			return err
		}
		if o.TableID != nil {
			if err := s.releaseTable(ctx, tx, *o.TableID); err != nil {
				return err
			}
		}

		ev := box.add(queue.EventOrderPaid, o, actor, s.now())
		ev.TipCents = p.TipCents
		ev.Method = string(p.Method)
		receipt = &Receipt{Payment: p, Order: o, Quote: q}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("order settled",
		zap.Uint64("order_id", receipt.Order.ID),
		zap.Int64("amount_cents", receipt.Payment.AmountCents),
		zap.Int64("tip_cents", receipt.Payment.TipCents),
		zap.String("method", string(receipt.Payment.Method)))
	s.flush(ctx, &box)
	return receipt, nil
}
