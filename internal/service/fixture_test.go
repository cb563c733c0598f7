package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/repository/memstore"
)

const (
	burger      uint64 = 1 // 10.00, kitchen
	side        uint64 = 2 // 5.00, kitchen
	water       uint64 = 3 // 2.00, instant
	comboBurger uint64 = 4 // 8.99, kitchen
	comboFries  uint64 = 5 // 4.99, kitchen
	soldOut     uint64 = 6
	pastry      uint64 = 7 // 12.50, instant

	comboPromo   uint64 = 10
	expiredPromo uint64 = 11
)

var (
	staff   = Actor{StaffID: 1, Role: model.RoleStaff}
	manager = Actor{StaffID: 2, Role: model.RoleManager, CanDiscount: true}
	kitchen = Actor{StaffID: 3, Role: model.RoleKitchen}
)

type recorder struct {
	mu     sync.Mutex
	events []queue.OrderEvent
}

func (r *recorder) Publish(_ context.Context, ev queue.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []queue.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]queue.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc    *Service
	store  *memstore.Store
	events *recorder
	tables []model.Table
}

var testNow = time.Date(2026, 6, 15, 18, 30, 0, 0, time.UTC)

func newFixture(t testing.TB) *fixture {
	t.Helper()
	store := memstore.New()
	tables := []model.Table{
		store.AddTable("A", 4),
		store.AddTable("B", 2),
		store.AddTable("C", 6),
		store.AddTable("D", 4),
	}
	catalog := memstore.NewCatalog([]model.MenuItem{
		{ID: burger, Name: "Burger", PriceCents: 1000, Available: true, Station: model.StationKitchen},
		{ID: side, Name: "Side Salad", PriceCents: 500, Available: true, Station: model.StationKitchen},
		{ID: water, Name: "Water", PriceCents: 200, Available: true, Station: model.StationNone},
		{ID: comboBurger, Name: "Cheeseburger", PriceCents: 899, Available: true, Station: model.StationKitchen},
		{ID: comboFries, Name: "Fries", PriceCents: 499, Available: true, Station: model.StationKitchen},
		{ID: soldOut, Name: "Soup", PriceCents: 700, Available: false, Station: model.StationKitchen},
		{ID: pastry, Name: "Pastry", PriceCents: 1250, Available: true, Station: model.StationNone},
	}, []model.Promotion{
		{
			ID: comboPromo, Name: "Burger Combo", Type: model.PromotionBundle, BundlePriceCents: 1099,
			StartDate: testNow.AddDate(0, -1, 0), EndDate: testNow.AddDate(0, 1, 0), IsActive: true,
			MenuItemIDs: []uint64{comboBurger, comboFries},
		},
		{
			ID: expiredPromo, Name: "Old Combo", Type: model.PromotionBundle, BundlePriceCents: 500,
			StartDate: testNow.AddDate(-1, 0, 0), EndDate: testNow.AddDate(0, -1, 0), IsActive: true,
			MenuItemIDs: []uint64{burger, side},
		},
	})
	events := &recorder{}
	svc := New(store, catalog, pricing.NewEngine(decimal.RequireFromString("0.13")), zap.NewNop(),
		WithPublisher(events),
		WithClock(func() time.Time { return testNow }),
	)
	return &fixture{svc: svc, store: store, events: events, tables: tables}
}

func requireKind(t testing.TB, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, IsKind(err, kind), "want %s, got %v", kind, err)
}

func (f *fixture) table(t testing.TB, id uint64) *model.TableView {
	t.Helper()
	v, err := f.svc.GetTable(context.Background(), id)
	require.NoError(t, err)
	return v
}

// dineIn creates the 25.00 order used by most tests at table A.
func (f *fixture) dineIn(t testing.TB) *OrderDetail {
	t.Helper()
	tableID := f.tables[0].ID
	o, err := f.svc.CreateOrder(context.Background(), staff, CreateOrderInput{
		OrderType: model.OrderDineIn,
		TableID:   &tableID,
		Items: []ItemInput{
			{MenuItemID: burger, Quantity: 2},
			{MenuItemID: side, Quantity: 1},
		},
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) combo(t testing.TB) *OrderDetail {
	t.Helper()
	o, err := f.svc.CreateOrder(context.Background(), staff, CreateOrderInput{
		OrderType:    model.OrderToGo,
		CustomerName: "Sam",
		Items: []ItemInput{
			{MenuItemID: comboBurger, Quantity: 1, PromotionID: comboPromo},
			{MenuItemID: comboFries, Quantity: 1, PromotionID: comboPromo},
		},
	})
	require.NoError(t, err)
	return o
}

func ptr[T any](v T) *T { return &v }

type downStore struct{ err error }

func (d downStore) WithTx(context.Context, func(repository.Tx) error) error { return d.err }
func (d downStore) Ping(context.Context) error                              { return d.err }
