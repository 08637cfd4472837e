package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
	domainreviews "gearshare/internal/domain/reviews"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("agg_review")}
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListByItem(ctx context.Context, itemID domainitems.ItemID, limit, offset int) ([]*domainreviews.Review, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts = opts.SetSkip(int64(offset))
	}
	cursor, err := r.col.Find(ctx, bson.M{"item_id": itemID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := make([]*domainreviews.Review, 0)
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		reviews = append(reviews, doc.toAggregate())
	}
	return reviews, cursor.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, opts)
	return err
}

type reviewDocument struct {
	ID          string `bson:"_id"`
	BookingID   string `bson:"booking_id"`
	ItemID      string `bson:"item_id"`
	AuthorEmail string `bson:"author_email"`
	Rating      int    `bson:"rating"`
	Text        string `bson:"text"`
	CreatedAt   int64  `bson:"created_at"`
}

func newReviewDocument(review *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:          string(review.ID),
		BookingID:   string(review.BookingID),
		ItemID:      string(review.ItemID),
		AuthorEmail: review.AuthorEmail,
		Rating:      review.Rating,
		Text:        review.Text,
		CreatedAt:   review.CreatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:          domainreviews.ReviewID(d.ID),
		BookingID:   domainbooking.BookingID(d.BookingID),
		ItemID:      domainitems.ItemID(d.ItemID),
		AuthorEmail: d.AuthorEmail,
		Rating:      d.Rating,
		Text:        d.Text,
		CreatedAt:   timestampToTime(d.CreatedAt),
	}
}
