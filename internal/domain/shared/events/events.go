package events

import "time"

// DomainEvent is implemented by every event an aggregate records.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder collects events raised during an aggregate mutation until the
// application layer drains them into the outbox.
type EventRecorder struct {
	pending []DomainEvent
}

// Record appends an event to the pending list.
func (r *EventRecorder) Record(event DomainEvent) {
	r.pending = append(r.pending, event)
}

// PendingEvents returns the recorded events in order.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	return r.pending
}

// ClearEvents drops recorded events after they have been persisted.
func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}
