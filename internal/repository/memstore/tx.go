package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// tx implements repository.Tx on a private state copy.  Locks are implicit:
// the store lock is already held for the whole unit of work.
type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) NextOrderNumber(context.Context) (int64, error) {
	t.st.orderNumber++
	return t.st.orderNumber, nil
}

func (t *tx) InsertOrder(_ context.Context, o *model.Order) error {
	for _, existing := range t.st.orders {
		if existing.OrderNumber == o.OrderNumber {
			return repository.ErrDuplicate
		}
	}
	o.ID = t.st.id()
	o.CreatedAt = t.now()
	o.UpdatedAt = o.CreatedAt
	t.st.orders[o.ID] = copyOrder(*o)
	return nil
}

func (t *tx) GetOrder(_ context.Context, id uint64) (model.Order, error) {
	o, ok := t.st.orders[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return copyOrder(o), nil
}

func (t *tx) LockOrder(ctx context.Context, id uint64) (model.Order, error) {
	return t.GetOrder(ctx, id)
}

func (t *tx) UpdateOrder(_ context.Context, o *model.Order) error {
	cur, ok := t.st.orders[o.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// Identity columns are immutable.
	o.OrderNumber = cur.OrderNumber
	o.OrderType = cur.OrderType
	o.CreatedBy = cur.CreatedBy
	o.CreatedAt = cur.CreatedAt
	o.UpdatedAt = t.now()
	t.st.orders[o.ID] = copyOrder(*o)
	return nil
}

func (t *tx) ListOrderItems(_ context.Context, orderID uint64) ([]model.OrderItem, error) {
	items := []model.OrderItem{}
	for _, it := range t.st.items {
		if it.OrderID == orderID {
			items = append(items, copyItem(it))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (t *tx) GetOrderItem(ctx context.Context, id uint64) (model.OrderItem, error) {
	return t.LockOrderItem(ctx, id)
}

func (t *tx) LockOrderItem(_ context.Context, id uint64) (model.OrderItem, error) {
	it, ok := t.st.items[id]
	if !ok {
		return model.OrderItem{}, repository.ErrNotFound
	}
	return copyItem(it), nil
}

func (t *tx) InsertOrderItem(_ context.Context, it *model.OrderItem) error {
	if _, ok := t.st.orders[it.OrderID]; !ok {
		return repository.ErrNotFound
	}
	it.ID = t.st.id()
	it.CreatedAt = t.now()
	if it.AllergyIDs == nil {
		it.AllergyIDs = []uint64{}
	}
	t.st.items[it.ID] = copyItem(*it)
	return nil
}

func (t *tx) UpdateOrderItemStatus(_ context.Context, id uint64, status model.ItemStatus) error {
	it, ok := t.st.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	it.Status = status
	t.st.items[id] = it
	return nil
}

func (t *tx) DeleteOrderItem(_ context.Context, id uint64) error {
	if _, ok := t.st.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.st.items, id)
	return nil
}

func (t *tx) InsertOrderBundle(_ context.Context, b *model.OrderBundle) error {
	for _, existing := range t.st.bundles {
		if existing.Instance == b.Instance {
			return repository.ErrDuplicate
		}
	}
	b.ID = t.st.id()
	t.st.bundles[b.ID] = *b
	return nil
}

func (t *tx) ListOrderBundles(_ context.Context, orderID uint64) ([]model.OrderBundle, error) {
	bundles := []model.OrderBundle{}
	for _, b := range t.st.bundles {
		if b.OrderID == orderID {
			bundles = append(bundles, b)
		}
	}
	sort.Slice(bundles, func(i, j int) bool { return bundles[i].ID < bundles[j].ID })
	return bundles, nil
}

func (t *tx) GetTable(_ context.Context, id uint64) (model.Table, error) {
	tb, ok := t.st.tables[id]
	if !ok {
		return model.Table{}, repository.ErrNotFound
	}
	return copyTable(tb), nil
}

func (t *tx) LockTables(_ context.Context, ids []uint64) ([]model.Table, error) {
	seen := map[uint64]bool{}
	tables := []model.Table{}
	for _, id := range ids {
		tb, ok := t.st.tables[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		tables = append(tables, copyTable(tb))
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	return tables, nil
}

func (t *tx) ListTables(context.Context) ([]model.Table, error) {
	tables := make([]model.Table, 0, len(t.st.tables))
	for _, tb := range t.st.tables {
		tables = append(tables, copyTable(tb))
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	return tables, nil
}

func (t *tx) ListSatellites(_ context.Context, primaryID uint64) ([]model.Table, error) {
	sats := []model.Table{}
	for _, tb := range t.st.tables {
		if tb.MergedWithID != nil && *tb.MergedWithID == primaryID {
			sats = append(sats, copyTable(tb))
		}
	}
	sort.Slice(sats, func(i, j int) bool { return sats[i].ID < sats[j].ID })
	return sats, nil
}

func (t *tx) UpdateTable(_ context.Context, tb *model.Table) error {
	cur, ok := t.st.tables[tb.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Status = tb.Status
	cur.MergedWithID = tb.MergedWithID
	cur.UpdatedAt = t.now()
	t.st.tables[tb.ID] = copyTable(cur)
	tb.UpdatedAt = cur.UpdatedAt
	return nil
}

func (t *tx) GetPaymentByOrder(_ context.Context, orderID uint64) (model.Payment, error) {
	p, ok := t.st.payments[orderID]
	if !ok {
		return model.Payment{}, repository.ErrNotFound
	}
	return p, nil
}

func (t *tx) InsertPayment(_ context.Context, p *model.Payment) error {
	if _, ok := t.st.payments[p.OrderID]; ok {
		return repository.ErrDuplicate
	}
	p.ID = t.st.id()
	p.CreatedAt = t.now()
	t.st.payments[p.OrderID] = *p
	return nil
}

func (t *tx) InsertStatusChange(_ context.Context, c model.StatusChange) error {
	c.ChangedAt = t.now()
	t.st.log = append(t.st.log, c)
	return nil
}

func (t *tx) ListStatusChanges(_ context.Context, orderID uint64) ([]model.StatusChange, error) {
	out := []model.StatusChange{}
	for _, c := range t.st.log {
		if c.OrderID == orderID {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ repository.Tx = (*tx)(nil)
var _ repository.Store = (*Store)(nil)
