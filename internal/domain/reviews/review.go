package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"gearshare/internal/domain/booking"
	"gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/events"
)

var (
	ErrInvalidRating = errors.New("reviews: rating must be between 1 and 5")
	ErrNotFound      = errors.New("reviews: not found")
)

type ReviewID string

// Review is a renter's feedback on an item, tied to exactly one completed
// booking.
type Review struct {
	ID          ReviewID
	BookingID   booking.BookingID
	ItemID      items.ItemID
	AuthorEmail string
	Rating      int
	Text        string
	CreatedAt   time.Time
	events.EventRecorder
}

type Repository interface {
	ByBooking(ctx context.Context, bookingID booking.BookingID) (*Review, error)
	ListByItem(ctx context.Context, itemID items.ItemID, limit, offset int) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID          ReviewID
	BookingID   booking.BookingID
	ItemID      items.ItemID
	AuthorEmail string
	Rating      int
	Text        string
	CreatedAt   time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	review := &Review{
		ID:          params.ID,
		BookingID:   params.BookingID,
		ItemID:      params.ItemID,
		AuthorEmail: strings.ToLower(strings.TrimSpace(params.AuthorEmail)),
		Rating:      params.Rating,
		Text:        strings.TrimSpace(params.Text),
		CreatedAt:   params.CreatedAt.UTC(),
	}
	review.Record(ReviewSubmitted{ReviewID: review.ID, BookingID: review.BookingID, ItemID: review.ItemID, Rating: review.Rating, At: review.CreatedAt})
	return review, nil
}

type ReviewSubmitted struct {
	ReviewID  ReviewID
	BookingID booking.BookingID
	ItemID    items.ItemID
	Rating    int
	At        time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
