// Package memstore is an in-process implementation of repository.Store and
// repository.Catalog.  It backs tests and the STORE_DRIVER=memory mode.
//
// A unit of work holds the store's writer lock for its whole duration and
// runs against a deep copy of the state; the copy replaces the live state
// only when the work function returns nil.  Units of work are therefore
// serialized and atomic.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

type state struct {
	orderNumber int64
	nextID      uint64

	orders   map[uint64]model.Order
	items    map[uint64]model.OrderItem
	bundles  map[uint64]model.OrderBundle
	tables   map[uint64]model.Table
	payments map[uint64]model.Payment // keyed by order id
	log      []model.StatusChange
}

func newState() *state {
	return &state{
		orders:   map[uint64]model.Order{},
		items:    map[uint64]model.OrderItem{},
		bundles:  map[uint64]model.OrderBundle{},
		tables:   map[uint64]model.Table{},
		payments: map[uint64]model.Payment{},
	}
}

func (s *state) clone() *state {
	c := &state{
		orderNumber: s.orderNumber,
		nextID:      s.nextID,
		orders:      make(map[uint64]model.Order, len(s.orders)),
		items:       make(map[uint64]model.OrderItem, len(s.items)),
		bundles:     make(map[uint64]model.OrderBundle, len(s.bundles)),
		tables:      make(map[uint64]model.Table, len(s.tables)),
		payments:    make(map[uint64]model.Payment, len(s.payments)),
		log:         append([]model.StatusChange(nil), s.log...),
	}
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range s.items {
		c.items[k] = copyItem(v)
	}
	for k, v := range s.bundles {
		c.bundles[k] = v
	}
	for k, v := range s.tables {
		c.tables[k] = copyTable(v)
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	return c
}

func (s *state) id() uint64 {
	s.nextID++
	return s.nextID
}

// Store is the in-memory repository.Store.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// WithTx runs fn against a private copy of the state and publishes the copy
// when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&tx{st: work, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// AddTable seeds a vacant table and returns it.
func (s *Store) AddTable(label string, capacity int) model.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Table{
		ID:        s.st.id(),
		Label:     label,
		Capacity:  capacity,
		Status:    model.TableVacant,
		UpdatedAt: s.now(),
	}
	s.st.tables[t.ID] = t
	return t
}

func copyOrder(o model.Order) model.Order {
	if o.TableID != nil {
		v := *o.TableID
		o.TableID = &v
	}
	if o.DiscountAppliedBy != nil {
		v := *o.DiscountAppliedBy
		o.DiscountAppliedBy = &v
	}
	if o.PickupTime != nil {
		v := *o.PickupTime
		o.PickupTime = &v
	}
	return o
}

func copyItem(it model.OrderItem) model.OrderItem {
	it.AllergyIDs = append([]uint64{}, it.AllergyIDs...)
	return it
}

func copyTable(t model.Table) model.Table {
	if t.MergedWithID != nil {
		v := *t.MergedWithID
		t.MergedWithID = &v
	}
	return t
}
