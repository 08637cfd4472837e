package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "gearshare/internal/app/outbox"
)

const (
	statusPending = "pending"
	statusClaimed = "claimed"
	statusSent    = "sent"
)

// EventDocument is one stored outbox entry.
type EventDocument struct {
	ID            string            `bson:"_id"`
	Name          string            `bson:"name"`
	Aggregate     string            `bson:"aggregate"`
	Payload       []byte            `bson:"payload"`
	Headers       map[string]string `bson:"headers,omitempty"`
	OccurredAt    time.Time         `bson:"occurred_at"`
	Status        string            `bson:"status"`
	Attempts      int               `bson:"attempts"`
	NextAttemptAt time.Time         `bson:"next_attempt_at"`
	ClaimedBy     string            `bson:"claimed_by,omitempty"`
	LastError     string            `bson:"last_error,omitempty"`
	SentAt        time.Time         `bson:"sent_at,omitempty"`
}

// Store persists outbox entries in Mongo. Appends ride the caller's session
// context, so an entry commits atomically with the aggregate write that
// produced it.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection("outbox_events")}
}

func (s *Store) Append(ctx context.Context, record appoutbox.EventRecord) error {
	doc := EventDocument{
		ID:            uuid.NewString(),
		Name:          record.Name,
		Aggregate:     record.Aggregate,
		Payload:       record.Payload,
		Headers:       record.Headers,
		OccurredAt:    record.OccurredAt,
		Status:        statusPending,
		NextAttemptAt: time.Now().UTC(),
	}
	_, err := s.col.InsertOne(ctx, doc)
	return err
}

// Claim atomically takes the oldest due pending entry for this worker.
// Returns nil when nothing is due.
func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"status":          bson.M{"$in": []string{statusPending, statusClaimed}},
		"next_attempt_at": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{
		"status":          statusClaimed,
		"claimed_by":      workerID,
		"next_attempt_at": now.Add(30 * time.Second),
	}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.M{"occurred_at": 1}).
		SetReturnDocument(options.After)

	var doc EventDocument
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":  statusSent,
		"sent_at": time.Now().UTC(),
	}})
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id string, nextAttempt time.Time, reason string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":          statusPending,
			"next_attempt_at": nextAttempt.UTC(),
			"last_error":      reason,
		},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

// TransactionalOutbox adapts the store to the application outbox port. Add
// inserts inside the ambient transaction; Flush is a no-op because the worker
// publishes from the collection after commit.
type TransactionalOutbox struct {
	Store *Store
}

func (o TransactionalOutbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if o.Store == nil {
		return errors.New("outbox: store not configured")
	}
	return o.Store.Append(ctx, record)
}

func (o TransactionalOutbox) Flush(ctx context.Context) error { return nil }

var _ appoutbox.Outbox = TransactionalOutbox{}
