package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/dateset"
	"gearshare/internal/domain/shared/events"
	"gearshare/internal/domain/shared/money"
)

var (
	ErrNotFound       = errors.New("booking: not found")
	ErrInvalidState   = errors.New("booking: invalid state transition")
	ErrNotOwner       = errors.New("booking: actor is not the item owner")
	ErrNotParticipant = errors.New("booking: actor is neither renter nor owner")
	ErrRenterRequired = errors.New("booking: renter email required")
	ErrSelfBooking    = errors.New("booking: owner cannot book own item")
)

// ConflictError reports which requested dates are already unavailable.
type ConflictError struct {
	Dates dateset.Set
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking: dates unavailable: %s", strings.Join(e.Dates.Strings(), ", "))
}

type BookingID string

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateConfirmed BookingState = "CONFIRMED"
	StateRejected  BookingState = "REJECTED"
	StateCompleted BookingState = "COMPLETED"
	StateCancelled BookingState = "CANCELLED"
)

// BlockingStates are the statuses whose date ranges exclude an item from
// being re-booked.
var BlockingStates = []BookingState{StatePending, StateConfirmed}

// IsTerminal reports whether no further transition is permitted.
func (s BookingState) IsTerminal() bool {
	switch s {
	case StateRejected, StateCompleted, StateCancelled:
		return true
	}
	return false
}

// Booking is a renter's request to use an item over an inclusive range of
// calendar days. The range, day count and total are frozen at creation; only
// the state and timestamps change afterwards.
type Booking struct {
	ID          BookingID
	ItemID      items.ItemID
	RenterEmail string
	OwnerEmail  string
	StartDate   dateset.Date
	EndDate     dateset.Date
	TotalDays   int
	TotalAmount money.Money
	State       BookingState
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByItem(ctx context.Context, itemID items.ItemID) ([]*Booking, error)
	ListByRenter(ctx context.Context, renterEmail string) ([]*Booking, error)
}

type CreateParams struct {
	ID          BookingID
	Item        *items.Item
	RenterEmail string
	StartDate   dateset.Date
	EndDate     dateset.Date
	CreatedAt   time.Time
}

// NewBooking builds a pending booking, pricing it against the item's current
// daily rate. The requested range is validated here; conflict checking
// against the item's availability is the caller's job.
func NewBooking(params CreateParams) (*Booking, error) {
	renter := strings.ToLower(strings.TrimSpace(params.RenterEmail))
	if renter == "" {
		return nil, ErrRenterRequired
	}
	if params.Item == nil {
		return nil, items.ErrNotFound
	}
	if params.Item.OwnedBy(renter) {
		return nil, ErrSelfBooking
	}
	if params.EndDate.Before(params.StartDate) {
		return nil, dateset.ErrInvalidRange
	}
	days := dateset.CountDays(params.StartDate, params.EndDate)
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:          params.ID,
		ItemID:      params.Item.ID,
		RenterEmail: renter,
		OwnerEmail:  params.Item.OwnerEmail,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		TotalDays:   days,
		TotalAmount: params.Item.PricePerDay.Multiply(int64(days)),
		State:       StatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Record(BookingRequested{BookingID: b.ID, ItemID: b.ItemID, RenterEmail: b.RenterEmail, StartDate: b.StartDate, EndDate: b.EndDate, Total: b.TotalAmount, At: now})
	return b, nil
}

// Dates expands the booking's frozen range into its inclusive date set.
func (b *Booking) Dates() dateset.Set {
	set, err := dateset.FromRange(b.StartDate, b.EndDate)
	if err != nil {
		// The range was validated at creation and never mutates.
		return dateset.NewSet()
	}
	return set
}

// Blocking reports whether the booking's dates currently exclude re-booking.
func (b *Booking) Blocking() bool {
	return b.State == StatePending || b.State == StateConfirmed
}

// Confirm transitions pending → confirmed; only the item's owner may decide.
func (b *Booking) Confirm(deciderEmail string, now time.Time) error {
	if !b.ownedBy(deciderEmail) {
		return ErrNotOwner
	}
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, ItemID: b.ItemID, StartDate: b.StartDate, EndDate: b.EndDate, Total: b.TotalAmount, At: b.UpdatedAt})
	return nil
}

// Reject transitions pending → rejected; only the item's owner may decide.
func (b *Booking) Reject(deciderEmail, reason string, now time.Time) error {
	if !b.ownedBy(deciderEmail) {
		return ErrNotOwner
	}
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateRejected
	b.UpdatedAt = now.UTC()
	b.Record(BookingRejected{BookingID: b.ID, ItemID: b.ItemID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Cancel is permitted while pending or confirmed, by the renter or the owner.
// It reports whether the booking had reached a blocking-confirmed state, so
// the caller knows whether projector dates need to be released.
func (b *Booking) Cancel(requesterEmail, reason string, now time.Time) (wasConfirmed bool, err error) {
	actor := strings.ToLower(strings.TrimSpace(requesterEmail))
	if actor != b.RenterEmail && actor != b.OwnerEmail {
		return false, ErrNotParticipant
	}
	switch b.State {
	case StatePending, StateConfirmed:
	default:
		return false, ErrInvalidState
	}
	wasConfirmed = b.State == StateConfirmed
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, ItemID: b.ItemID, Reason: reason, At: b.UpdatedAt})
	return wasConfirmed, nil
}

// Complete transitions confirmed → completed at end of rental. The dates stay
// blocked; completion never touches the availability projection.
func (b *Booking) Complete(now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	b.State = StateCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, ItemID: b.ItemID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) ownedBy(email string) bool {
	return b.OwnerEmail == strings.ToLower(strings.TrimSpace(email))
}
