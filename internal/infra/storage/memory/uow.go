package memory

import (
	"context"
	"errors"

	"gearshare/internal/app/uow"
	domainavailability "gearshare/internal/domain/availability"
	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
	domainreviews "gearshare/internal/domain/reviews"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ItemsRepo        domainitems.Repository
	BookingRepo      domainbooking.Repository
	AvailabilityRepo domainavailability.Repository
	ReviewsRepo      domainreviews.Repository
}

// NewFactory builds a factory over fresh in-memory stores.
func NewFactory() Factory {
	return Factory{
		ItemsRepo:        NewItemRepository(),
		BookingRepo:      NewBookingRepository(),
		AvailabilityRepo: NewAvailabilityRepository(),
		ReviewsRepo:      NewReviewRepository(),
	}
}

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ItemsRepo == nil || f.BookingRepo == nil || f.AvailabilityRepo == nil || f.ReviewsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		items:        f.ItemsRepo,
		booking:      f.BookingRepo,
		availability: f.AvailabilityRepo,
		reviews:      f.ReviewsRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	items        domainitems.Repository
	booking      domainbooking.Repository
	availability domainavailability.Repository
	reviews      domainreviews.Repository
}

func (u *Unit) Items() domainitems.Repository { return u.items }

func (u *Unit) Bookings() domainbooking.Repository { return u.booking }

func (u *Unit) Availability() domainavailability.Repository { return u.availability }

func (u *Unit) Reviews() domainreviews.Repository { return u.reviews }

func (u *Unit) Commit(ctx context.Context) error { return nil }

func (u *Unit) Rollback(ctx context.Context) error { return nil }

var _ uow.UoWFactory = Factory{}
