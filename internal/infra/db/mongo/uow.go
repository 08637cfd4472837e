package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gearshare/internal/app/uow"
	domainavailability "gearshare/internal/domain/availability"
	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
	domainreviews "gearshare/internal/domain/reviews"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ItemsRepo        domainitems.Repository
	BookingRepo      domainbooking.Repository
	AvailabilityRepo domainavailability.Repository
	ReviewsRepo      domainreviews.Repository
}

// NewFactory builds a factory with the default collection-backed repositories.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:               db,
		ItemsRepo:        NewItemRepository(db),
		BookingRepo:      NewBookingRepository(db),
		AvailabilityRepo: NewAvailabilityRepository(db),
		ReviewsRepo:      NewReviewRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:           f.DB,
		session:      session,
		items:        f.ItemsRepo,
		booking:      f.BookingRepo,
		availability: f.AvailabilityRepo,
		reviews:      f.ReviewsRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	items        domainitems.Repository
	booking      domainbooking.Repository
	availability domainavailability.Repository
	reviews      domainreviews.Repository
}

func (u *Unit) Items() domainitems.Repository { return u.items }

func (u *Unit) Bookings() domainbooking.Repository { return u.booking }

func (u *Unit) Availability() domainavailability.Repository { return u.availability }

func (u *Unit) Reviews() domainreviews.Repository { return u.reviews }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repository calls.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
