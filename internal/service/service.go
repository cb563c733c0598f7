// Package service implements the order lifecycle, table registry, discount
// and settlement operations of the POS core.  Each operation runs in one
// repository unit of work, so every rule it checks and every row it writes
// is consistent with concurrent callers; events are published only after
// the unit of work commits.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// Actor identifies the staff member on whose behalf an operation runs.
// CanDiscount is decided by the caller (role or manager override) and is
// only consulted for manual discounts.
type Actor struct {
	StaffID     uint64
	Role        model.Role
	CanDiscount bool
}

// frontOfHouse reports whether the actor may take orders, manage tables
// and settle.
func (a Actor) frontOfHouse() bool {
	return a.Role == model.RoleStaff || a.Role == model.RoleManager
}

// Service is the POS core.
type Service struct {
	store     repository.Store
	catalog   repository.Catalog
	pricing   *pricing.Engine
	publisher queue.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher sets the event publisher.  The default drops events.
func WithPublisher(p queue.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the time source used for promotion windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service.  All arguments are required.
func New(store repository.Store, catalog repository.Catalog, engine *pricing.Engine, logger *zap.Logger, opts ...Option) *Service {
	if store == nil || catalog == nil || engine == nil || logger == nil {
		panic("service: nil dependency passed to New")
	}
	s := &Service{
		store:     store,
		catalog:   catalog,
		pricing:   engine,
		publisher: queue.NopPublisher{},
		logger:    logger.Named("service"),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return &Error{Kind: StorageUnavailable, Message: "storage unavailable", Err: err}
	}
	return nil
}

// run executes fn in a unit of work and classifies whatever comes back.
// Service errors pass through; a stray ErrNotFound becomes
// InvalidReference; anything else is a storage failure.
func (s *Service) run(ctx context.Context, op string, fn func(tx repository.Tx) error) error {
	err := s.store.WithTx(ctx, fn)
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, repository.ErrNotFound) {
		return &Error{Kind: InvalidReference, Message: op + ": referenced record not found", Err: err}
	}
	s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
	return &Error{Kind: StorageUnavailable, Message: "storage unavailable", Err: err}
}

// missing turns ErrNotFound into an InvalidReference naming what was
// looked up and leaves other errors alone.
func missing(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		e := fail(InvalidReference, format+" not found", args...)
		e.Err = err
		return e
	}
	return err
}
