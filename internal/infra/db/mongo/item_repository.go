package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gearshare/internal/app/uow"
	domainitems "gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/money"
)

type ItemRepository struct {
	col *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{col: db.Collection("agg_item")}
}

func (r *ItemRepository) ByID(ctx context.Context, id domainitems.ItemID) (*domainitems.Item, error) {
	var doc itemDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainitems.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ItemRepository) Save(ctx context.Context, item *domainitems.Item) error {
	doc := newItemDocument(item)
	filter := bson.M{"_id": doc.ID, "version": item.Version}
	doc.Version = item.Version + 1
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
	item.Version = doc.Version
	return nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*domainitems.Item, error) {
	cursor, err := r.col.Find(ctx, bson.M{"owner_email": ownerEmail})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]*domainitems.Item, 0)
	for cursor.Next(ctx) {
		var doc itemDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toAggregate())
	}
	return items, cursor.Err()
}

type itemDocument struct {
	ID          string      `bson:"_id"`
	OwnerEmail  string      `bson:"owner_email"`
	Title       string      `bson:"title"`
	Description string      `bson:"description"`
	Category    string      `bson:"category"`
	PricePerDay money.Money `bson:"price_per_day"`
	State       string      `bson:"state"`
	Photos      []string    `bson:"photos"`
	CreatedAt   int64       `bson:"created_at"`
	UpdatedAt   int64       `bson:"updated_at"`
	Version     int64       `bson:"version"`
}

func newItemDocument(item *domainitems.Item) itemDocument {
	return itemDocument{
		ID:          string(item.ID),
		OwnerEmail:  item.OwnerEmail,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		PricePerDay: item.PricePerDay,
		State:       string(item.State),
		Photos:      item.Photos,
		CreatedAt:   item.CreatedAt.UnixMilli(),
		UpdatedAt:   item.UpdatedAt.UnixMilli(),
		Version:     item.Version,
	}
}

func (d itemDocument) toAggregate() *domainitems.Item {
	return &domainitems.Item{
		ID:          domainitems.ItemID(d.ID),
		OwnerEmail:  d.OwnerEmail,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		PricePerDay: d.PricePerDay,
		State:       domainitems.ItemState(d.State),
		Photos:      d.Photos,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
