package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gearshare/internal/app/uow"
	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/dateset"
	"gearshare/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return uow.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return uow.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByItem(ctx context.Context, itemID domainitems.ItemID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"item_id": itemID})
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterEmail string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"renter_email": renterEmail})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookings := make([]*domainbooking.Booking, 0)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		agg, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, agg)
	}
	return bookings, cursor.Err()
}

type bookingDocument struct {
	ID          string      `bson:"_id"`
	ItemID      string      `bson:"item_id"`
	RenterEmail string      `bson:"renter_email"`
	OwnerEmail  string      `bson:"owner_email"`
	StartDate   string      `bson:"start_date"`
	EndDate     string      `bson:"end_date"`
	TotalDays   int         `bson:"total_days"`
	TotalAmount money.Money `bson:"total_amount"`
	State       string      `bson:"state"`
	CreatedAt   int64       `bson:"created_at"`
	UpdatedAt   int64       `bson:"updated_at"`
	Version     int64       `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:          string(b.ID),
		ItemID:      string(b.ItemID),
		RenterEmail: b.RenterEmail,
		OwnerEmail:  b.OwnerEmail,
		StartDate:   b.StartDate.String(),
		EndDate:     b.EndDate.String(),
		TotalDays:   b.TotalDays,
		TotalAmount: b.TotalAmount,
		State:       string(b.State),
		CreatedAt:   b.CreatedAt.UnixMilli(),
		UpdatedAt:   b.UpdatedAt.UnixMilli(),
		Version:     b.Version,
	}
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	start, err := dateset.Parse(d.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := dateset.Parse(d.EndDate)
	if err != nil {
		return nil, err
	}
	return &domainbooking.Booking{
		ID:          domainbooking.BookingID(d.ID),
		ItemID:      domainitems.ItemID(d.ItemID),
		RenterEmail: d.RenterEmail,
		OwnerEmail:  d.OwnerEmail,
		StartDate:   start,
		EndDate:     end,
		TotalDays:   d.TotalDays,
		TotalAmount: d.TotalAmount,
		State:       domainbooking.BookingState(d.State),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}, nil
}
