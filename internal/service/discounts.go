package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// ApplyDiscount sets the manual discount of an open order and reprices it.
// Applying the same discount twice yields the same totals.  Bundle savings
// are not affected and need no capability.
func (s *Service) ApplyDiscount(ctx context.Context, actor Actor, orderID uint64, kind model.DiscountType, value decimal.Decimal, reason string) (*OrderDetail, error) {
	if !actor.CanDiscount {
		return nil, fail(Unauthorized, "applying a discount requires manager approval")
	}
	if kind == model.DiscountNone {
		return nil, fail(InvalidInput, "discount type is required")
	}
	if err := pricing.ValidateDiscount(kind, value); err != nil {
		return nil, pricingError(err)
	}
	reason = strings.TrimSpace(reason)
	return s.updateDiscount(ctx, "apply discount", orderID, func(o *model.Order) {
		o.DiscountType = kind
		o.DiscountValue = value
		o.DiscountReason = reason
		staff := actor.StaffID
		o.DiscountAppliedBy = &staff
	})
}

// RemoveDiscount clears the manual discount.  The total returns to what it
// would be had no manual discount been applied.
func (s *Service) RemoveDiscount(ctx context.Context, actor Actor, orderID uint64) (*OrderDetail, error) {
	if !actor.CanDiscount {
		return nil, fail(Unauthorized, "removing a discount requires manager approval")
	}
	return s.updateDiscount(ctx, "remove discount", orderID, func(o *model.Order) {
		o.DiscountType = model.DiscountNone
		o.DiscountValue = decimal.Zero
		o.DiscountReason = ""
		o.DiscountAppliedBy = nil
	})
}

func (s *Service) updateDiscount(ctx context.Context, op string, orderID uint64, mutate func(o *model.Order)) (*OrderDetail, error) {
	var detail *OrderDetail
	err := s.run(ctx, op, func(tx repository.Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return missing(err, "order %d", orderID)
		}
		if o.Status.Terminal() {
			return fail(OrderClosed, "order %d is %s", o.ID, o.Status)
		}
		mutate(&o)
		if _, err := s.reprice(ctx, tx, &o); err != nil {
			return err
		}
		detail, err = s.loadDetail(ctx, tx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}
