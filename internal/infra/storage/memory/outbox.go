package memory

import (
	"context"
	"sync"

	appoutbox "gearshare/internal/app/outbox"
)

// Outbox buffers event records in memory. Flush hands them to the sink when
// one is configured; without a sink the records are dropped, which is the
// demo-mode behavior.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
	sink    func(ctx context.Context, records []appoutbox.EventRecord) error
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

// NewOutboxWithSink forwards flushed records to fn.
func NewOutboxWithSink(fn func(ctx context.Context, records []appoutbox.EventRecord) error) *Outbox {
	return &Outbox{sink: fn}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()
	if o.sink == nil || len(pending) == 0 {
		return nil
	}
	return o.sink(ctx, pending)
}

// Records returns a snapshot of the unflushed buffer.
func (o *Outbox) Records() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, len(o.records))
	copy(out, o.records)
	return out
}

var _ appoutbox.Outbox = (*Outbox)(nil)
