package uow

import (
	"context"
	"errors"

	domainavailability "gearshare/internal/domain/availability"
	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
	domainreviews "gearshare/internal/domain/reviews"
)

// ErrConcurrentUpdate is returned by repositories when a version-checked save
// loses the race to another writer. Callers retry or surface a conflict.
var ErrConcurrentUpdate = errors.New("uow: concurrent update")

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Items() domainitems.Repository
	Bookings() domainbooking.Repository
	Availability() domainavailability.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
