package outbox

import (
	"context"
	"encoding/json"
	"time"

	"gearshare/internal/domain/shared/events"
)

// EventRecord is a serialized domain event awaiting publication.
type EventRecord struct {
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
}

// Outbox buffers event records inside the current transaction boundary.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// EventEncoder turns a domain event into a wire payload.
type EventEncoder interface {
	Encode(event events.DomainEvent) ([]byte, error)
}

// JSONEventEncoder marshals the event struct as-is.
type JSONEventEncoder struct{}

func (JSONEventEncoder) Encode(event events.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// RecordDomainEvents encodes and appends the given events to the outbox.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evts []events.DomainEvent) error {
	if box == nil || len(evts) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, event := range evts {
		payload, err := encoder.Encode(event)
		if err != nil {
			return err
		}
		record := EventRecord{
			Name:       event.EventName(),
			Aggregate:  event.AggregateID(),
			Payload:    payload,
			OccurredAt: event.OccurredAt(),
		}
		if err := box.Add(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
