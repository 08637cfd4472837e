package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gearshare/internal/app/uow"
	domainavailability "gearshare/internal/domain/availability"
	domainitems "gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/dateset"
)

type AvailabilityRepository struct {
	col *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{col: db.Collection("proj_availability")}
}

// Calendar loads the item's projection, lazily creating an empty one for
// items that have never been booked or blocked.
func (r *AvailabilityRepository) Calendar(ctx context.Context, itemID domainitems.ItemID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	err := r.col.FindOne(ctx, bson.M{"_id": itemID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domainavailability.NewCalendar(itemID), nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toProjection()
}

// Save writes the projection with a version check. A concurrent projector
// write loses and surfaces uow.ErrConcurrentUpdate so the command retries
// against the fresh state instead of dropping dates.
func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	doc := newCalendarDocument(calendar)
	filter := bson.M{"_id": doc.ID, "version": calendar.Version}
	doc.Version = calendar.Version + 1
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
	calendar.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID        string   `bson:"_id"`
	Booked    []string `bson:"booked"`
	Blocked   []string `bson:"blocked"`
	UpdatedAt int64    `bson:"updated_at"`
	Version   int64    `bson:"version"`
}

func newCalendarDocument(calendar *domainavailability.Calendar) calendarDocument {
	return calendarDocument{
		ID:        string(calendar.ItemID),
		Booked:    calendar.Booked.Strings(),
		Blocked:   calendar.Blocked.Strings(),
		UpdatedAt: calendar.UpdatedAt.UnixMilli(),
		Version:   calendar.Version,
	}
}

func (d calendarDocument) toProjection() (*domainavailability.Calendar, error) {
	booked, err := parseDateSet(d.Booked)
	if err != nil {
		return nil, err
	}
	blocked, err := parseDateSet(d.Blocked)
	if err != nil {
		return nil, err
	}
	return &domainavailability.Calendar{
		ItemID:    domainitems.ItemID(d.ID),
		Booked:    booked,
		Blocked:   blocked,
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}, nil
}

func parseDateSet(values []string) (dateset.Set, error) {
	set := dateset.NewSet()
	for _, value := range values {
		d, err := dateset.Parse(value)
		if err != nil {
			return nil, err
		}
		set.Add(d)
	}
	return set, nil
}
