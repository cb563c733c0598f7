package repository

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Store runs units of work.  Every service operation executes inside a
// single WithTx call: fn either returns nil and all of its writes become
// visible together, or returns an error and none of them do.  The error
// returned by fn is passed back unchanged.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
}

// Tx is the set of reads and writes available inside a unit of work.
// Lock* methods take row locks held until the unit of work ends; callers
// lock an order before reading its items and lock tables in ascending id
// order.  Reads of a missing row return ErrNotFound.
type Tx interface {
	NextOrderNumber(ctx context.Context) (int64, error)
	InsertOrder(ctx context.Context, o *model.Order) error
	GetOrder(ctx context.Context, id uint64) (model.Order, error)
	LockOrder(ctx context.Context, id uint64) (model.Order, error)
	UpdateOrder(ctx context.Context, o *model.Order) error

	ListOrderItems(ctx context.Context, orderID uint64) ([]model.OrderItem, error)
	GetOrderItem(ctx context.Context, id uint64) (model.OrderItem, error)
	LockOrderItem(ctx context.Context, id uint64) (model.OrderItem, error)
	InsertOrderItem(ctx context.Context, it *model.OrderItem) error
	UpdateOrderItemStatus(ctx context.Context, id uint64, status model.ItemStatus) error
	DeleteOrderItem(ctx context.Context, id uint64) error

	InsertOrderBundle(ctx context.Context, b *model.OrderBundle) error
	ListOrderBundles(ctx context.Context, orderID uint64) ([]model.OrderBundle, error)

	GetTable(ctx context.Context, id uint64) (model.Table, error)
	// LockTables returns the existing tables among ids sorted by id.
	LockTables(ctx context.Context, ids []uint64) ([]model.Table, error)
	ListTables(ctx context.Context) ([]model.Table, error)
	ListSatellites(ctx context.Context, primaryID uint64) ([]model.Table, error)
	UpdateTable(ctx context.Context, t *model.Table) error

	GetPaymentByOrder(ctx context.Context, orderID uint64) (model.Payment, error)
	// InsertPayment returns ErrDuplicate when the order is already paid.
	InsertPayment(ctx context.Context, p *model.Payment) error

	InsertStatusChange(ctx context.Context, c model.StatusChange) error
	ListStatusChanges(ctx context.Context, orderID uint64) ([]model.StatusChange, error)
}

// Catalog is the read-only menu and promotion source.
type Catalog interface {
	GetMenuItem(ctx context.Context, id uint64) (model.MenuItem, error)
	ListMenuItems(ctx context.Context) ([]model.MenuItem, error)
	// ListActivePromotions returns promotions effective at now.
	ListActivePromotions(ctx context.Context, now time.Time) ([]model.Promotion, error)
}
