package items

import (
	"context"
	"errors"
	"strings"
	"time"

	"gearshare/internal/domain/shared/events"
	"gearshare/internal/domain/shared/money"
)

var (
	ErrNotFound      = errors.New("items: not found")
	ErrTitleRequired = errors.New("items: title is required")
	ErrOwnerRequired = errors.New("items: owner email is required")
	ErrDailyRate     = errors.New("items: price per day must be non-negative")
	ErrInvalidState  = errors.New("items: invalid state transition")
)

type ItemID string

type ItemState string

const (
	StateDraft     ItemState = "DRAFT"
	StateActive    ItemState = "ACTIVE"
	StateSuspended ItemState = "SUSPENDED"
)

// Item is a rentable thing offered by an owner. Its availability projection
// lives in the availability package; the item itself only carries the pricing
// and ownership facts bookings snapshot at creation time.
type Item struct {
	ID          ItemID
	OwnerEmail  string
	Title       string
	Description string
	Category    string
	PricePerDay money.Money
	State       ItemState
	Photos      []string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ItemID) (*Item, error)
	Save(ctx context.Context, item *Item) error
	ListByOwner(ctx context.Context, ownerEmail string) ([]*Item, error)
}

type CreateParams struct {
	ID          ItemID
	OwnerEmail  string
	Title       string
	Description string
	Category    string
	PricePerDay money.Money
	Photos      []string
	Now         time.Time
}

func NewItem(params CreateParams) (*Item, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("items: id is required")
	}
	if strings.TrimSpace(params.OwnerEmail) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.PricePerDay.Amount < 0 {
		return nil, ErrDailyRate
	}
	now := params.Now.UTC()
	item := &Item{
		ID:          params.ID,
		OwnerEmail:  strings.ToLower(strings.TrimSpace(params.OwnerEmail)),
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Category:    strings.TrimSpace(params.Category),
		PricePerDay: params.PricePerDay,
		State:       StateDraft,
		Photos:      append([]string(nil), params.Photos...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.Record(ItemListed{ItemID: item.ID, OwnerEmail: item.OwnerEmail, At: now})
	return item, nil
}

// OwnedBy reports whether the given actor owns the item. Emails are compared
// case-insensitively, matching how they are normalized at creation.
func (i *Item) OwnedBy(email string) bool {
	return i.OwnerEmail == strings.ToLower(strings.TrimSpace(email))
}

func (i *Item) Activate(now time.Time) error {
	if i.State == StateActive {
		return nil
	}
	if i.Title == "" {
		return ErrTitleRequired
	}
	i.State = StateActive
	i.UpdatedAt = now.UTC()
	i.Record(ItemActivated{ItemID: i.ID, At: i.UpdatedAt})
	return nil
}

func (i *Item) Suspend(now time.Time, reason string) error {
	if i.State != StateActive {
		return ErrInvalidState
	}
	i.State = StateSuspended
	i.UpdatedAt = now.UTC()
	i.Record(ItemSuspended{ItemID: i.ID, Reason: reason, At: i.UpdatedAt})
	return nil
}

type ItemListed struct {
	ItemID     ItemID
	OwnerEmail string
	At         time.Time
}

func (e ItemListed) EventName() string     { return "item.listed" }
func (e ItemListed) AggregateID() string   { return string(e.ItemID) }
func (e ItemListed) OccurredAt() time.Time { return e.At }

type ItemActivated struct {
	ItemID ItemID
	At     time.Time
}

func (e ItemActivated) EventName() string     { return "item.activated" }
func (e ItemActivated) AggregateID() string   { return string(e.ItemID) }
func (e ItemActivated) OccurredAt() time.Time { return e.At }

type ItemSuspended struct {
	ItemID ItemID
	Reason string
	At     time.Time
}

func (e ItemSuspended) EventName() string     { return "item.suspended" }
func (e ItemSuspended) AggregateID() string   { return string(e.ItemID) }
func (e ItemSuspended) OccurredAt() time.Time { return e.At }
