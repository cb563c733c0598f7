package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
)

var menuByName = map[string]uint64{
	"Burger":       burger,
	"Side Salad":   side,
	"Water":        water,
	"Cheeseburger": comboBurger,
	"Fries":        comboFries,
	"Pastry":       pastry,
}

var promoByName = map[string]uint64{
	"Burger Combo": comboPromo,
}

type lifecycleContext struct {
	t     *testing.T
	f     *fixture
	order *OrderDetail
	err   error
}

func (c *lifecycleContext) reset() {
	c.f = newFixture(c.t)
	c.order = nil
	c.err = nil
}

func (c *lifecycleContext) tableID(label string) (uint64, error) {
	for _, t := range c.f.tables {
		if t.Label == label {
			return t.ID, nil
		}
	}
	return 0, fmt.Errorf("no table %q", label)
}

func (c *lifecycleContext) tableIDs(labels string) ([]uint64, error) {
	var ids []uint64
	for _, l := range strings.Split(labels, ",") {
		id, err := c.tableID(strings.TrimSpace(l))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// record keeps the outcome of a When step; failures are asserted later.
func (c *lifecycleContext) record(o *OrderDetail, err error) error {
	c.err = err
	if err == nil && o != nil {
		c.order = o
	}
	return nil
}

func (c *lifecycleContext) openDineIn(label string, lines []ItemInput) error {
	id, err := c.tableID(label)
	if err != nil {
		return err
	}
	o, err := c.f.svc.CreateOrder(context.Background(), staff, CreateOrderInput{
		OrderType: model.OrderDineIn, TableID: &id, Items: lines,
	})
	if err != nil {
		return err
	}
	c.order = o
	return nil
}

func (c *lifecycleContext) staffOpensDineInWith(label string, table *godog.Table) error {
	var lines []ItemInput
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		id, ok := menuByName[row.Cells[0].Value]
		if !ok {
			return fmt.Errorf("unknown menu item %q", row.Cells[0].Value)
		}
		qty, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		lines = append(lines, ItemInput{MenuItemID: id, Quantity: qty})
	}
	return c.openDineIn(label, lines)
}

func (c *lifecycleContext) dineInOrderWith(label string, qtyA int, nameA string, qtyB int, nameB string) error {
	return c.openDineIn(label, []ItemInput{
		{MenuItemID: menuByName[nameA], Quantity: qtyA},
		{MenuItemID: menuByName[nameB], Quantity: qtyB},
	})
}

func (c *lifecycleContext) ringUpBundle(promo, a, b, customer string) error {
	pid := promoByName[promo]
	return c.record(c.f.svc.CreateOrder(context.Background(), staff, CreateOrderInput{
		OrderType:    model.OrderToGo,
		CustomerName: customer,
		Items: []ItemInput{
			{MenuItemID: menuByName[a], Quantity: 1, PromotionID: pid},
			{MenuItemID: menuByName[b], Quantity: 1, PromotionID: pid},
		},
	}))
}

func (c *lifecycleContext) applyPercent(actor Actor) func(int) error {
	return func(pct int) error {
		return c.record(c.f.svc.ApplyDiscount(context.Background(), actor, c.order.ID,
			model.DiscountPercentage, decimal.NewFromInt(int64(pct)), "feature"))
	}
}

func (c *lifecycleContext) managerRemovesDiscount() error {
	return c.record(c.f.svc.RemoveDiscount(context.Background(), manager, c.order.ID))
}

func (c *lifecycleContext) line(n int) (uint64, error) {
	if n < 1 || n > len(c.order.Items) {
		return 0, fmt.Errorf("order has no line %d", n)
	}
	return c.order.Items[n-1].ID, nil
}

func (c *lifecycleContext) kitchenMovesLine(n int, status string) error {
	id, err := c.line(n)
	if err != nil {
		return err
	}
	return c.record(c.f.svc.TransitionItemStatus(context.Background(), kitchen, id, model.ItemStatus(status)))
}

func (c *lifecycleContext) staffRemovesLine(n int) error {
	id, err := c.line(n)
	if err != nil {
		return err
	}
	return c.record(c.f.svc.RemoveItem(context.Background(), staff, c.order.ID, id))
}

func (c *lifecycleContext) kitchenMarksAllReady() error {
	return c.record(c.f.svc.MarkAllReady(context.Background(), kitchen, c.order.ID))
}

func (c *lifecycleContext) staffSettles(amount, method string) error {
	cents, err := pricing.ParseAmount(amount)
	if err != nil {
		return err
	}
	r, err := c.f.svc.Settle(context.Background(), staff, SettleInput{
		OrderID: c.order.ID, AmountCents: cents, Method: model.PaymentMethod(method),
	})
	c.err = err
	if err == nil {
		c.order.Order = r.Order
	}
	return nil
}

func (c *lifecycleContext) tablesMerged(labels string) error {
	ids, err := c.tableIDs(labels)
	if err != nil {
		return err
	}
	_, err = c.f.svc.MergeTables(context.Background(), staff, ids)
	return err
}

func (c *lifecycleContext) staffMerges(labels string) error {
	ids, err := c.tableIDs(labels)
	if err != nil {
		return err
	}
	_, c.err = c.f.svc.MergeTables(context.Background(), staff, ids)
	return nil
}

func (c *lifecycleContext) staffUnmerges(label string) error {
	id, err := c.tableID(label)
	if err != nil {
		return err
	}
	_, c.err = c.f.svc.UnmergeTables(context.Background(), staff, id)
	return nil
}

func (c *lifecycleContext) expectAmount(field string, got func(*OrderDetail) int64) func(string) error {
	return func(want string) error {
		if c.err != nil {
			return fmt.Errorf("previous step failed: %w", c.err)
		}
		if g := pricing.Format(got(c.order)); g != want {
			return fmt.Errorf("expected %s %s, got %s", field, want, g)
		}
		return nil
	}
}

func (c *lifecycleContext) orderStatusIs(want string) error {
	if c.err != nil {
		return fmt.Errorf("previous step failed: %w", c.err)
	}
	if string(c.order.Status) != want {
		return fmt.Errorf("expected order status %s, got %s", want, c.order.Status)
	}
	return nil
}

func (c *lifecycleContext) effectiveDiscountTypeIs(want string) error {
	if string(c.order.EffectiveDiscountType) != want {
		return fmt.Errorf("expected discount type %s, got %s", want, c.order.EffectiveDiscountType)
	}
	return nil
}

func (c *lifecycleContext) discountReasonIs(want string) error {
	if c.order.BundleReason != want {
		return fmt.Errorf("expected reason %q, got %q", want, c.order.BundleReason)
	}
	return nil
}

func (c *lifecycleContext) lastOperationFails(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected %s, operation succeeded", kind)
	}
	if !IsKind(c.err, Kind(kind)) {
		return fmt.Errorf("expected %s, got %v", kind, c.err)
	}
	c.err = nil
	return nil
}

func (c *lifecycleContext) tableIs(label, status string) error {
	id, err := c.tableID(label)
	if err != nil {
		return err
	}
	v, err := c.f.svc.GetTable(context.Background(), id)
	if err != nil {
		return err
	}
	if string(v.Status) != status {
		return fmt.Errorf("expected table %s %s, got %s", label, status, v.Status)
	}
	return nil
}

func (c *lifecycleContext) tableSeats(label string, seats int) error {
	id, err := c.tableID(label)
	if err != nil {
		return err
	}
	v, err := c.f.svc.GetTable(context.Background(), id)
	if err != nil {
		return err
	}
	if v.EffectiveCapacity != seats {
		return fmt.Errorf("expected table %s to seat %d, got %d", label, seats, v.EffectiveCapacity)
	}
	return nil
}

func (c *lifecycleContext) tablesVacantAndUnmerged(labels string) error {
	ids, err := c.tableIDs(labels)
	if err != nil {
		return err
	}
	for _, id := range ids {
		v, err := c.f.svc.GetTable(context.Background(), id)
		if err != nil {
			return err
		}
		if v.Status != model.TableVacant || v.MergedWithID != nil || len(v.Satellites) > 0 {
			return fmt.Errorf("table %s is %s (merged_with=%v, satellites=%d)", v.Label, v.Status, v.MergedWithID, len(v.Satellites))
		}
	}
	return nil
}

func initializeLifecycle(t *testing.T) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		c := &lifecycleContext{t: t}
		sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
			c.reset()
			return ctx, nil
		})

		sc.Step(`^staff opens a dine-in order at table "([^"]*)" with:$`, c.staffOpensDineInWith)
		sc.Step(`^a dine-in order at table "([^"]*)" with (\d+) "([^"]*)" and (\d+) "([^"]*)"$`, c.dineInOrderWith)
		sc.Step(`^staff rings up a "([^"]*)" bundle of "([^"]*)" and "([^"]*)" to go for "([^"]*)"$`, c.ringUpBundle)
		sc.Step(`^a manager applies a (\d+) percent discount$`, c.applyPercent(manager))
		sc.Step(`^staff applies a (\d+) percent discount$`, c.applyPercent(staff))
		sc.Step(`^a manager removes the discount$`, c.managerRemovesDiscount)
		sc.Step(`^the kitchen moves line (\d+) to "([^"]*)"$`, c.kitchenMovesLine)
		sc.Step(`^the kitchen marks every line ready$`, c.kitchenMarksAllReady)
		sc.Step(`^staff removes line (\d+)$`, c.staffRemovesLine)
		sc.Step(`^staff settles "([^"]*)" by "([^"]*)"$`, c.staffSettles)
		sc.Step(`^tables "([^"]*)" are merged$`, c.tablesMerged)
		sc.Step(`^staff merges tables "([^"]*)"$`, c.staffMerges)
		sc.Step(`^staff unmerges table "([^"]*)"$`, c.staffUnmerges)

		sc.Step(`^the order subtotal is "([^"]*)"$`, c.expectAmount("subtotal", func(o *OrderDetail) int64 { return o.SubtotalCents }))
		sc.Step(`^the order discount is "([^"]*)"$`, c.expectAmount("discount", func(o *OrderDetail) int64 { return o.DiscountCents }))
		sc.Step(`^the order tax is "([^"]*)"$`, c.expectAmount("tax", func(o *OrderDetail) int64 { return o.TaxCents }))
		sc.Step(`^the order total is "([^"]*)"$`, c.expectAmount("total", func(o *OrderDetail) int64 { return o.TotalAmountCents }))
		sc.Step(`^the bundle savings are "([^"]*)"$`, c.expectAmount("bundle savings", func(o *OrderDetail) int64 { return o.BundleSavingsCents }))
		sc.Step(`^the order status is "([^"]*)"$`, c.orderStatusIs)
		sc.Step(`^the effective discount type is "([^"]*)"$`, c.effectiveDiscountTypeIs)
		sc.Step(`^the discount reason is "([^"]*)"$`, c.discountReasonIs)
		sc.Step(`^the last operation fails with "([^"]*)"$`, c.lastOperationFails)
		sc.Step(`^table "([^"]*)" is "([^"]*)"$`, c.tableIs)
		sc.Step(`^table "([^"]*)" seats (\d+)$`, c.tableSeats)
		sc.Step(`^tables "([^"]*)" are vacant and unmerged$`, c.tablesVacantAndUnmerged)
	}
}

func TestLifecycleFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeLifecycle(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
