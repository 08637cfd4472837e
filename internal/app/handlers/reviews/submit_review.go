package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/uow"
	domainbooking "gearshare/internal/domain/booking"
	domainreviews "gearshare/internal/domain/reviews"
)

const submitReviewKey = "reviews.submit"

var (
	ErrBookingOwnership   = errors.New("reviews: booking does not belong to current user")
	ErrRentalNotCompleted = errors.New("reviews: booking is not completed")
	ErrDuplicateReview    = errors.New("reviews: review already exists for booking")
)

// SubmitReviewCommand creates a new review for a completed booking.
type SubmitReviewCommand struct {
	BookingID   string
	AuthorEmail string
	Rating      int
	Text        string
	Now         time.Time
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

// SubmitReviewHandler enforces that only the renter of a completed booking
// may review, once per booking.
type SubmitReviewHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return dto.Review{}, uow.ErrUnitOfWorkMissing
	}

	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	bk, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.Review{}, err
	}
	if bk.RenterEmail != cmd.AuthorEmail {
		return dto.Review{}, ErrBookingOwnership
	}
	if bk.State != domainbooking.StateCompleted {
		return dto.Review{}, ErrRentalNotCompleted
	}

	if existing, err := unit.Reviews().ByBooking(ctx, bk.ID); err == nil && existing != nil {
		return dto.Review{}, ErrDuplicateReview
	} else if err != nil && !errors.Is(err, domainreviews.ErrNotFound) {
		return dto.Review{}, err
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:          domainreviews.ReviewID(uuid.NewString()),
		BookingID:   bk.ID,
		ItemID:      bk.ItemID,
		AuthorEmail: cmd.AuthorEmail,
		Rating:      cmd.Rating,
		Text:        cmd.Text,
		CreatedAt:   now,
	})
	if err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.Review{}, err
	}

	pending := review.PendingEvents()
	review.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return dto.Review{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("review submitted", "booking_id", bk.ID, "item_id", bk.ItemID, "rating", cmd.Rating)
	}

	return dto.MapReview(review), nil
}

func (h *SubmitReviewHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
