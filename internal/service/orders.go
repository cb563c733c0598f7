package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// ItemInput is one requested order line.  Lines sharing a PromotionID in
// the same request are sold together as one instance of that bundle.
type ItemInput struct {
	MenuItemID  uint64   `json:"menu_item_id"`
	Quantity    int      `json:"quantity"`
	Notes       string   `json:"notes"`
	AllergyIDs  []uint64 `json:"allergy_ids"`
	PromotionID uint64   `json:"promotion_id"`
}

// CreateOrderInput describes a new order.
type CreateOrderInput struct {
	OrderType       model.OrderType `json:"order_type"`
	TableID         *uint64         `json:"table_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	PickupTime      *time.Time      `json:"pickup_time"`
	SurchargesCents int64           `json:"surcharges_cents"`
	Items           []ItemInput     `json:"items"`
}

// OrderDetail is an order with its lines, bundle instances, status
// history and current price breakdown.
type OrderDetail struct {
	model.Order
	EffectiveDiscountType model.DiscountType   `json:"effective_discount_type,omitempty"`
	Items                 []model.OrderItem    `json:"items"`
	Bundles               []model.OrderBundle  `json:"bundles"`
	History               []model.StatusChange `json:"history"`
	Quote                 pricing.Quote        `json:"quote"`
}

func (in *CreateOrderInput) validate() error {
	if !in.OrderType.Valid() {
		return fail(InvalidInput, "unknown order type %q", in.OrderType)
	}
	if in.SurchargesCents < 0 {
		return fail(InvalidInput, "surcharges cannot be negative")
	}
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	hasCustomer := in.CustomerName != "" || in.CustomerPhone != "" || in.PickupTime != nil
	switch in.OrderType {
	case model.OrderDineIn:
		if in.TableID == nil {
			return fail(InvalidInput, "dine-in orders require a table")
		}
	case model.OrderQuickSale:
		if in.TableID != nil {
			return fail(InvalidInput, "quick sales cannot be assigned to a table")
		}
	case model.OrderToGo:
		if in.CustomerName == "" {
			return fail(InvalidInput, "to-go orders require a customer name")
		}
	}
	if in.OrderType != model.OrderToGo && hasCustomer {
		return fail(InvalidInput, "customer details are only accepted on to-go orders")
	}
	if in.TableID != nil && *in.TableID == 0 {
		return fail(InvalidInput, "invalid table id")
	}
	return nil
}

// CreateOrder validates and stores a new order, snapshots catalog prices,
// prices it and occupies its table.
func (s *Service) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (*OrderDetail, error) {
	if !actor.frontOfHouse() {
		return nil, fail(Unauthorized, "role %s cannot create orders", actor.Role)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		detail *OrderDetail
		box    outbox
	)
	err := s.run(ctx, "create order", func(tx repository.Tx) error {
		box.reset()
		items, bundles, err := s.buildLines(ctx, in.OrderType, in.Items)
		if err != nil {
			return err
		}

		o := model.Order{
			OrderType:       in.OrderType,
			CustomerName:    in.CustomerName,
			CustomerPhone:   in.CustomerPhone,
			PickupTime:      in.PickupTime,
			SurchargesCents: in.SurchargesCents,
			Status:          initialOrderStatus(items),
			CreatedBy:       actor.StaffID,
		}
		if in.TableID != nil {
			table, err := s.occupyTable(ctx, tx, *in.TableID)
			if err != nil {
				return err
			}
			o.TableID = &table.ID
		}
		if o.OrderNumber, err = tx.NextOrderNumber(ctx); err != nil {
			return err
		}
		if err := tx.InsertOrder(ctx, &o); err != nil {
			return err
		}
		if err := s.insertLines(ctx, tx, o.ID, items, bundles); err != nil {
			return err
		}
		if _, err := s.reprice(ctx, tx, &o); err != nil {
			return err
		}
		if err := tx.InsertStatusChange(ctx, model.StatusChange{
			OrderID: o.ID, To: o.Status, ChangedBy: actor.StaffID, Note: "created",
		}); err != nil {
			return err
		}
		box.add(queue.EventOrderCreated, o, actor, s.now())
		detail, err = s.loadDetail(ctx, tx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.flush(ctx, &box)
	return detail, nil
}

// AddItems appends lines to an open order and reprices it from its full
// item set.  The manual discount is kept as is; bundle savings are derived
// again from every bundle instance on the order.
func (s *Service) AddItems(ctx context.Context, actor Actor, orderID uint64, inputs []ItemInput) (*OrderDetail, error) {
	if !actor.frontOfHouse() {
		return nil, fail(Unauthorized, "role %s cannot add items", actor.Role)
	}
	var (
		detail *OrderDetail
		box    outbox
	)
	err := s.run(ctx, "add items", func(tx repository.Tx) error {
		box.reset()
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return missing(err, "order %d", orderID)
		}
		if o.Status.Terminal() {
			return fail(OrderClosed, "order %d is %s", o.ID, o.Status)
		}
		items, bundles, err := s.buildLines(ctx, o.OrderType, inputs)
		if err != nil {
			return err
		}
		if err := s.insertLines(ctx, tx, o.ID, items, bundles); err != nil {
			return err
		}
		if o.Status == model.OrderReady && !allDone(items) {
			if err := s.setStatus(ctx, tx, &o, model.OrderPreparing, actor, "items added", &box); err != nil {
				return err
			}
		}
		if _, err := s.reprice(ctx, tx, &o); err != nil {
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

// RemoveItem deletes a line that has not been sent to preparation.
func (s *Service) RemoveItem(ctx context.Context, actor Actor, orderID, itemID uint64) (*OrderDetail, error) {
	if !actor.frontOfHouse() {
		return nil, fail(Unauthorized, "role %s cannot remove items", actor.Role)
	}
	var (
		detail *OrderDetail
		box    outbox
	)
	err := s.run(ctx, "remove item", func(tx repository.Tx) error {
		box.reset()
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return missing(err, "order %d", orderID)
		}
		if o.Status.Terminal() {
			return fail(OrderClosed, "order %d is %s", o.ID, o.Status)
		}
		it, err := tx.LockOrderItem(ctx, itemID)
		if err != nil {
			return missing(err, "order item %d", itemID)
		}
		if it.OrderID != o.ID {
			return fail(InvalidReference, "order item %d does not belong to order %d", itemID, o.ID)
		}
		if it.Status != model.ItemPending {
			return fail(ItemNotRemovable, "order item %d is %s; only pending items can be removed", itemID, it.Status)
		}
		if err := tx.DeleteOrderItem(ctx, it.ID); err != nil {
			return err
		}
		items, err := tx.ListOrderItems(ctx, o.ID)
		if err != nil {
			return err
		}
		if o.Status == model.OrderPreparing && allDone(items) {
			if err := s.setStatus(ctx, tx, &o, model.OrderReady, actor, "remaining items ready", &box); err != nil {
				return err
			}
		}
		if _, err := s.reprice(ctx, tx, &o); err != nil {
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

// GetOrder returns an order with its lines, bundles, history and quote.
func (s *Service) GetOrder(ctx context.Context, orderID uint64) (*OrderDetail, error) {
	var detail *OrderDetail
	err := s.run(ctx, "get order", func(tx repository.Tx) error {
		var err error
		detail, err = s.loadDetail(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Quote returns the current price breakdown of an order including a
// prospective tip.  Nothing is written.
func (s *Service) Quote(ctx context.Context, orderID uint64, tipCents int64) (pricing.Quote, error) {
	if tipCents < 0 {
		return pricing.Quote{}, fail(InvalidInput, "tip cannot be negative")
	}
	var q pricing.Quote
	err := s.run(ctx, "quote", func(tx repository.Tx) error {
		o, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return missing(err, "order %d", orderID)
		}
		in, err := s.quoteInput(ctx, tx, o)
		if err != nil {
			return err
		}
		in.TipCents = tipCents
		if q, err = s.pricing.Quote(in); err != nil {
			return pricingError(err)
		}
		return nil
	})
	return q, err
}

// buildLines resolves requested lines against the catalog.  Prices, names
// and stations are snapshotted; bundle lines are grouped into one instance
// per promotion.
func (s *Service) buildLines(ctx context.Context, orderType model.OrderType, inputs []ItemInput) ([]model.OrderItem, []model.OrderBundle, error) {
	if len(inputs) == 0 {
		return nil, nil, fail(InvalidInput, "at least one item is required")
	}
	items := make([]model.OrderItem, 0, len(inputs))
	wantsBundle := false
	for i, in := range inputs {
		if in.Quantity <= 0 {
			return nil, nil, fail(InvalidInput, "item %d: quantity must be positive", i+1)
		}
		if in.MenuItemID == 0 {
			return nil, nil, fail(InvalidInput, "item %d: menu_item_id is required", i+1)
		}
		mi, err := s.catalog.GetMenuItem(ctx, in.MenuItemID)
		if err != nil {
			return nil, nil, missing(err, "menu item %d", in.MenuItemID)
		}
		if !mi.Available {
			return nil, nil, fail(InvalidInput, "menu item %q is not available", mi.Name)
		}
		allergies := append([]uint64{}, in.AllergyIDs...)
		items = append(items, model.OrderItem{
			MenuItemID: mi.ID,
			Name:       mi.Name,
			Quantity:   in.Quantity,
			Notes:      strings.TrimSpace(in.Notes),
			AllergyIDs: allergies,
			Status:     initialItemStatus(orderType, mi.Station),
			PriceCents: mi.PriceCents,
			Station:    mi.Station,
		})
		if in.PromotionID != 0 {
			wantsBundle = true
		}
	}
	if !wantsBundle {
		return items, nil, nil
	}

	active, err := s.catalog.ListActivePromotions(ctx, s.now())
	if err != nil {
		return nil, nil, err
	}
	var bundles []model.OrderBundle
	instances := map[uint64]int{} // promotion id -> index in bundles
	for i, in := range inputs {
		if in.PromotionID == 0 {
			continue
		}
		idx, seen := instances[in.PromotionID]
		if !seen {
			promo, ok := pricing.BundleFor(active, in.PromotionID)
			if !ok {
				return nil, nil, fail(InvalidReference, "promotion %d is not an active bundle", in.PromotionID)
			}
			idx = len(bundles)
			instances[in.PromotionID] = idx
			bundles = append(bundles, model.OrderBundle{
				Instance:         uuid.NewString(),
				PromotionID:      promo.ID,
				Name:             promo.Name,
				BundlePriceCents: promo.BundlePriceCents,
			})
		}
		bundles[idx].ItemCount++
		items[i].BundleInstance = bundles[idx].Instance
	}
	for _, b := range bundles {
		promo, _ := pricing.BundleFor(active, b.PromotionID)
		if err := checkBundleLines(promo, items, b.Instance); err != nil {
			return nil, nil, err
		}
	}
	return items, bundles, nil
}

// checkBundleLines requires the instance's lines to be exactly the
// promotion's items: nothing foreign, nothing missing.
func checkBundleLines(promo model.Promotion, items []model.OrderItem, instance string) error {
	present := map[uint64]bool{}
	for _, it := range items {
		if it.BundleInstance != instance {
			continue
		}
		if !promo.Includes(it.MenuItemID) {
			return fail(InvalidInput, "%s is not part of bundle %q", it.Name, promo.Name)
		}
		present[it.MenuItemID] = true
	}
	for _, id := range promo.MenuItemIDs {
		if !present[id] {
			return fail(InvalidInput, "bundle %q requires menu item %d", promo.Name, id)
		}
	}
	return nil
}

func (s *Service) insertLines(ctx context.Context, tx repository.Tx, orderID uint64, items []model.OrderItem, bundles []model.OrderBundle) error {
	for i := range bundles {
		bundles[i].OrderID = orderID
		if err := tx.InsertOrderBundle(ctx, &bundles[i]); err != nil {
			return err
		}
	}
	for i := range items {
		items[i].OrderID = orderID
		if err := tx.InsertOrderItem(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

// reprice recomputes the order's amounts from its current lines and writes
// the order row.
func (s *Service) reprice(ctx context.Context, tx repository.Tx, o *model.Order) (pricing.Quote, error) {
	items, err := tx.ListOrderItems(ctx, o.ID)
	if err != nil {
		return pricing.Quote{}, err
	}
	bundles, err := tx.ListOrderBundles(ctx, o.ID)
	if err != nil {
		return pricing.Quote{}, err
	}
	q, err := s.pricing.Reprice(o, items, bundles)
	if err != nil {
		return pricing.Quote{}, pricingError(err)
	}
	if err := tx.UpdateOrder(ctx, o); err != nil {
		return pricing.Quote{}, err
	}
	return q, nil
}

func (s *Service) quoteInput(ctx context.Context, tx repository.Tx, o model.Order) (pricing.QuoteInput, error) {
	items, err := tx.ListOrderItems(ctx, o.ID)
	if err != nil {
		return pricing.QuoteInput{}, err
	}
	bundles, err := tx.ListOrderBundles(ctx, o.ID)
	if err != nil {
		return pricing.QuoteInput{}, err
	}
	return pricing.QuoteInput{
		Items:           items,
		Bundles:         bundles,
		DiscountType:    o.DiscountType,
		DiscountValue:   o.DiscountValue,
		SurchargesCents: o.SurchargesCents,
	}, nil
}

func (s *Service) loadDetail(ctx context.Context, tx repository.Tx, orderID uint64) (*OrderDetail, error) {
	o, err := tx.GetOrder(ctx, orderID)
	if err != nil {
		return nil, missing(err, "order %d", orderID)
	}
	in, err := s.quoteInput(ctx, tx, o)
	if err != nil {
		return nil, err
	}
	q, err := s.pricing.Quote(in)
	if err != nil {
		return nil, pricingError(err)
	}
	history, err := tx.ListStatusChanges(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{
		Order:                 o,
		EffectiveDiscountType: o.EffectiveDiscountType(),
		Items:                 in.Items,
		Bundles:               in.Bundles,
		History:               history,
		Quote:                 q,
	}, nil
}

// initialItemStatus: lines that need a station start PENDING.  Instant
// lines are handed over at once on a counter sale and are ready otherwise.
func initialItemStatus(orderType model.OrderType, station model.Station) model.ItemStatus {
	if !station.Instant() {
		return model.ItemPending
	}
	if orderType == model.OrderQuickSale {
		return model.ItemServed
	}
	return model.ItemReady
}

// initialOrderStatus is READY when no line needs preparation.
func initialOrderStatus(items []model.OrderItem) model.OrderStatus {
	for _, it := range items {
		if !it.Station.Instant() {
			return model.OrderCreated
		}
	}
	return model.OrderReady
}

// pricingError reports a rejected amount as invalid input.
func pricingError(err error) error {
	return &Error{Kind: InvalidInput, Message: err.Error(), Err: err}
}

func allDone(items []model.OrderItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !it.Status.Done() {
			return false
		}
	}
	return true
}
