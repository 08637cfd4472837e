package availability

import (
	"context"
	"errors"
	"time"

	"gearshare/internal/domain/booking"
	"gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/dateset"
	"gearshare/internal/domain/shared/events"
)

var (
	ErrNotOwner = errors.New("availability: actor is not the item owner")
	ErrNoDates  = errors.New("availability: at least one date required")
)

// Reason tags why a date is unavailable, for display only. The underlying
// sets are the source of the tag, so a reason never outlives the booking or
// block that produced it.
type Reason string

const (
	ReasonBooking    Reason = "booking"
	ReasonOwnerBlock Reason = "owner-block"
)

// Entry is one unavailable date with its display reason.
type Entry struct {
	Date   dateset.Date
	Reason Reason
}

// Calendar is the per-item projection of unavailable dates. It is derived
// state: Booked must always equal the union of the item's confirmed
// bookings' date sets, and Recompute rebuilds it from them. Booked and
// Blocked are kept apart so removals can respect their origin.
type Calendar struct {
	ItemID    items.ItemID
	Booked    dateset.Set
	Blocked   dateset.Set
	Version   int64
	UpdatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	// Calendar loads the item's calendar, lazily creating an empty one.
	Calendar(ctx context.Context, itemID items.ItemID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
}

func NewCalendar(itemID items.ItemID) *Calendar {
	return &Calendar{
		ItemID:  itemID,
		Booked:  dateset.NewSet(),
		Blocked: dateset.NewSet(),
	}
}

// Unavailable returns every date the item cannot be booked on.
func (c *Calendar) Unavailable() dateset.Set {
	return dateset.Union(c.Booked, c.Blocked)
}

// Conflicts returns the subset of requested dates that are unavailable.
func (c *Calendar) Conflicts(requested dateset.Set) dateset.Set {
	return dateset.Intersect(requested, c.Unavailable())
}

// Entries lists unavailable dates in ascending order with reasons. A date
// both booked and owner-blocked reports as booked.
func (c *Calendar) Entries() []Entry {
	dates := c.Unavailable().Sorted()
	out := make([]Entry, 0, len(dates))
	for _, d := range dates {
		reason := ReasonOwnerBlock
		if c.Booked.Contains(d) {
			reason = ReasonBooking
		}
		out = append(out, Entry{Date: d, Reason: reason})
	}
	return out
}

// MergeBooked unions a confirmed booking's dates into the projection.
// Merging the same set twice is a no-op.
func (c *Calendar) MergeBooked(dates dateset.Set, now time.Time) {
	c.Booked = dateset.Union(c.Booked, dates)
	c.UpdatedAt = now.UTC()
}

// ReleaseBooked removes a cancelled booking's dates, keeping any date still
// covered by another confirmed booking. Callers pass the union of the
// remaining confirmed bookings' date sets.
func (c *Calendar) ReleaseBooked(dates, stillBooked dateset.Set, now time.Time) {
	c.Booked = dateset.Difference(c.Booked, dateset.Difference(dates, stillBooked))
	c.UpdatedAt = now.UTC()
}

// AddBlock records owner-declared unavailable dates.
func (c *Calendar) AddBlock(dates dateset.Set, now time.Time) error {
	if len(dates) == 0 {
		return ErrNoDates
	}
	c.Blocked = dateset.Union(c.Blocked, dates)
	c.UpdatedAt = now.UTC()
	c.Record(BlockAdded{ItemID: c.ItemID, Dates: dates.Strings(), At: c.UpdatedAt})
	return nil
}

// RemoveBlock lifts owner blocks for the given dates. Only the owner-block
// set is touched: a date still covered by a confirmed booking stays
// unavailable no matter what is removed here.
func (c *Calendar) RemoveBlock(dates dateset.Set, now time.Time) error {
	if len(dates) == 0 {
		return ErrNoDates
	}
	c.Blocked = dateset.Difference(c.Blocked, dates)
	c.UpdatedAt = now.UTC()
	c.Record(BlockRemoved{ItemID: c.ItemID, Dates: dates.Strings(), At: c.UpdatedAt})
	return nil
}

// Recompute rebuilds the booked set from scratch as the union of the item's
// confirmed bookings, repairing any drift. Owner blocks are preserved.
func (c *Calendar) Recompute(bookings []*booking.Booking, now time.Time) dateset.Set {
	rebuilt := dateset.NewSet()
	for _, b := range bookings {
		if b.ItemID != c.ItemID || b.State != booking.StateConfirmed {
			continue
		}
		rebuilt = dateset.Union(rebuilt, b.Dates())
	}
	c.Booked = rebuilt
	c.UpdatedAt = now.UTC()
	return c.Unavailable()
}

type BlockAdded struct {
	ItemID items.ItemID
	Dates  []string
	At     time.Time
}

func (e BlockAdded) EventName() string     { return "availability.block_added" }
func (e BlockAdded) AggregateID() string   { return string(e.ItemID) }
func (e BlockAdded) OccurredAt() time.Time { return e.At }

type BlockRemoved struct {
	ItemID items.ItemID
	Dates  []string
	At     time.Time
}

func (e BlockRemoved) EventName() string     { return "availability.block_removed" }
func (e BlockRemoved) AggregateID() string   { return string(e.ItemID) }
func (e BlockRemoved) OccurredAt() time.Time { return e.At }
