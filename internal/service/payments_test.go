package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
)

func TestSettleReleasesTableAndMerges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.tables[0].ID, f.tables[1].ID
	_, err := f.svc.MergeTables(ctx, staff, []uint64{a, b})
	require.NoError(t, err)

	o := f.dineIn(t)
	_, err = f.svc.MarkAllReady(ctx, kitchen, o.ID)
	require.NoError(t, err)

	r, err := f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 3125, Method: model.MethodCard, TipCents: 300})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaid, r.Order.Status)
	assert.Equal(t, int64(2825), r.Quote.TotalCents)
	assert.Equal(t, int64(3125), r.Quote.GrandTotalCents)
	assert.Equal(t, int64(0), r.Payment.ChangeCents)
	assert.NotEmpty(t, r.Payment.Reference)

	for _, id := range []uint64{a, b} {
		v := f.table(t, id)
		assert.Equal(t, model.TableVacant, v.Status)
		assert.Nil(t, v.MergedWithID)
	}

	detail, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	n := len(detail.History)
	require.GreaterOrEqual(t, n, 2)
	assert.Equal(t, model.OrderServed, detail.History[n-2].To)
	assert.Equal(t, model.OrderPaid, detail.History[n-1].To)
	for _, it := range detail.Items {
		assert.Equal(t, model.ItemServed, it.Status)
	}

	types := f.events.types()
	assert.Equal(t, queue.EventOrderPaid, types[len(types)-1])
}

func TestSettleTablelessLeavesTablesAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.UpdateTableStatus(ctx, staff, f.tables[2].ID, model.TableOccupied)
	require.NoError(t, err)
	before, err := f.svc.ListTables(ctx)
	require.NoError(t, err)

	o, err := f.svc.CreateOrder(ctx, staff, CreateOrderInput{
		OrderType: model.OrderQuickSale,
		Items:     []ItemInput{{MenuItemID: water, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, model.OrderReady, o.Status)

	r, err := f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 500, Method: model.MethodCash})
	require.NoError(t, err)
	assert.Equal(t, int64(226), r.Quote.TotalCents)
	assert.Equal(t, int64(274), r.Payment.ChangeCents)

	after, err := f.svc.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Status, after[i].Status)
	}
}

func TestSettleValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.dineIn(t)

	_, err := f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 5000, Method: model.MethodCash})
	requireKind(t, err, InvalidTransition)

	_, err = f.svc.MarkAllReady(ctx, kitchen, o.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor Actor
		in    SettleInput
		kind  Kind
	}{
		{"unknown method", staff, SettleInput{OrderID: o.ID, AmountCents: 2825, Method: "CHEQUE"}, InvalidInput},
		{"zero amount", staff, SettleInput{OrderID: o.ID, Method: model.MethodCash}, InvalidInput},
		{"negative tip", staff, SettleInput{OrderID: o.ID, AmountCents: 2825, Method: model.MethodCash, TipCents: -1}, InvalidInput},
		{"short cash", staff, SettleInput{OrderID: o.ID, AmountCents: 2824, Method: model.MethodCash}, InvalidInput},
		{"card over total", staff, SettleInput{OrderID: o.ID, AmountCents: 3000, Method: model.MethodCard}, InvalidInput},
		{"unknown order", staff, SettleInput{OrderID: 999, AmountCents: 100, Method: model.MethodCash}, InvalidReference},
		{"kitchen", kitchen, SettleInput{OrderID: o.ID, AmountCents: 2825, Method: model.MethodCard}, Unauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Settle(ctx, tt.actor, tt.in)
			requireKind(t, err, tt.kind)
		})
	}

	_, err = f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 2825, Method: model.MethodCard})
	require.NoError(t, err)
	_, err = f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 2825, Method: model.MethodCard})
	requireKind(t, err, AlreadyPaid)

	_, err = f.svc.AddItems(ctx, staff, o.ID, []ItemInput{{MenuItemID: water, Quantity: 1}})
	requireKind(t, err, OrderClosed)
}

func TestSettleCancelledOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.dineIn(t)
	_, err := f.svc.TransitionOrderStatus(ctx, staff, o.ID, model.OrderCancelled)
	require.NoError(t, err)

	_, err = f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 2825, Method: model.MethodCard})
	requireKind(t, err, OrderClosed)
}

func TestSettleRequiresEveryItemDone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.dineIn(t)
	_, err := f.svc.MarkAllReady(ctx, kitchen, o.ID)
	require.NoError(t, err)

	o, err = f.svc.AddItems(ctx, staff, o.ID, []ItemInput{{MenuItemID: side, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPreparing, o.Status)
	_, err = f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 100000, Method: model.MethodCash})
	requireKind(t, err, InvalidTransition)

	_, err = f.svc.MarkAllReady(ctx, kitchen, o.ID)
	require.NoError(t, err)
	r, err := f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 100000, Method: model.MethodCash})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaid, r.Order.Status)

	detail, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 3)
	for _, it := range detail.Items {
		assert.Equal(t, model.ItemServed, it.Status)
	}
}

func TestSettleServedOrderWithLateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.dineIn(t)
	_, err := f.svc.MarkAllReady(ctx, kitchen, o.ID)
	require.NoError(t, err)
	_, err = f.svc.TransitionOrderStatus(ctx, staff, o.ID, model.OrderServed)
	require.NoError(t, err)

	o, err = f.svc.AddItems(ctx, staff, o.ID, []ItemInput{{MenuItemID: side, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, model.OrderServed, o.Status)
	_, err = f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 100000, Method: model.MethodCash})
	requireKind(t, err, InvalidTransition)

	_, err = f.svc.MarkAllReady(ctx, kitchen, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 100000, Method: model.MethodCash})
	require.NoError(t, err)

	detail, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	for _, it := range detail.Items {
		assert.Equal(t, model.ItemServed, it.Status)
	}
}

func TestConcurrentSettleExactlyOneSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.dineIn(t)
	_, err := f.svc.MarkAllReady(ctx, kitchen, o.ID)
	require.NoError(t, err)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Settle(ctx, staff, SettleInput{OrderID: o.ID, AmountCents: 2825, Method: model.MethodCard})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireKind(t, err, AlreadyPaid)
	}
	assert.Equal(t, 1, succeeded)
}
