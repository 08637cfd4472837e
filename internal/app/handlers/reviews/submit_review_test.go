package reviews_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingapp "gearshare/internal/app/handlers/booking"
	reviewsapp "gearshare/internal/app/handlers/reviews"
	"gearshare/internal/app/uow"
	domainitems "gearshare/internal/domain/items"
	domainreviews "gearshare/internal/domain/reviews"
	"gearshare/internal/domain/shared/dateset"
	"gearshare/internal/domain/shared/money"
	"gearshare/internal/infra/storage/memory"
)

type env struct {
	factory memory.Factory
	box     *memory.Outbox
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{factory: memory.NewFactory(), box: memory.NewOutbox()}
}

func (e *env) ctx(t *testing.T) context.Context {
	t.Helper()
	unit, err := e.factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return uow.ContextWithUnitOfWork(context.Background(), unit)
}

// bookAndFinish runs a booking to the given terminal point so review rules
// can be exercised against real lifecycle state.
func (e *env) bookAndFinish(t *testing.T, ctx context.Context, bookingID string, complete bool) {
	t.Helper()
	item, err := domainitems.NewItem(domainitems.CreateParams{
		ID:          "item-1",
		OwnerEmail:  "owner@example.com",
		Title:       "DSLR camera",
		PricePerDay: money.INR(1200),
		Now:         time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, item.Activate(time.Now()))
	item.ClearEvents()
	require.NoError(t, e.factory.ItemsRepo.Save(context.Background(), item))

	request := &bookingapp.RequestBookingHandler{UoWFactory: e.factory, Outbox: e.box}
	_, err = request.Handle(ctx, bookingapp.RequestBookingCommand{
		CommandID:   bookingID,
		ItemID:      "item-1",
		RenterEmail: "renter@example.com",
		StartDate:   dateset.MustParse("2026-07-01"),
		EndDate:     dateset.MustParse("2026-07-02"),
	})
	require.NoError(t, err)

	decide := &bookingapp.DecideBookingHandler{Outbox: e.box}
	_, err = decide.Handle(ctx, bookingapp.DecideBookingCommand{
		BookingID:    bookingID,
		DeciderEmail: "owner@example.com",
		Outcome:      bookingapp.OutcomeConfirmed,
	})
	require.NoError(t, err)

	if complete {
		completeHandler := &bookingapp.CompleteBookingHandler{Outbox: e.box}
		_, err = completeHandler.Handle(ctx, bookingapp.CompleteBookingCommand{BookingID: bookingID})
		require.NoError(t, err)
	}
}

func TestSubmitReview(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx(t)
	e.bookAndFinish(t, ctx, "bk-1", true)

	handler := &reviewsapp.SubmitReviewHandler{Outbox: e.box}
	review, err := handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
		BookingID:   "bk-1",
		AuthorEmail: "renter@example.com",
		Rating:      5,
		Text:        "Great camera, fast handover.",
	})
	require.NoError(t, err)
	assert.Equal(t, "bk-1", review.BookingID)
	assert.Equal(t, "item-1", review.ItemID)
	assert.Equal(t, 5, review.Rating)
}

func TestSubmitReviewOnlyRenter(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx(t)
	e.bookAndFinish(t, ctx, "bk-1", true)

	handler := &reviewsapp.SubmitReviewHandler{Outbox: e.box}
	_, err := handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
		BookingID:   "bk-1",
		AuthorEmail: "owner@example.com",
		Rating:      4,
	})
	assert.ErrorIs(t, err, reviewsapp.ErrBookingOwnership)
}

func TestSubmitReviewRequiresCompletedBooking(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx(t)
	e.bookAndFinish(t, ctx, "bk-1", false)

	handler := &reviewsapp.SubmitReviewHandler{Outbox: e.box}
	_, err := handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
		BookingID:   "bk-1",
		AuthorEmail: "renter@example.com",
		Rating:      4,
	})
	assert.ErrorIs(t, err, reviewsapp.ErrRentalNotCompleted)
}

func TestSubmitReviewOncePerBooking(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx(t)
	e.bookAndFinish(t, ctx, "bk-1", true)

	handler := &reviewsapp.SubmitReviewHandler{Outbox: e.box}
	_, err := handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
		BookingID:   "bk-1",
		AuthorEmail: "renter@example.com",
		Rating:      5,
	})
	require.NoError(t, err)

	_, err = handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
		BookingID:   "bk-1",
		AuthorEmail: "renter@example.com",
		Rating:      3,
	})
	assert.ErrorIs(t, err, reviewsapp.ErrDuplicateReview)
}

func TestSubmitReviewInvalidRating(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx(t)
	e.bookAndFinish(t, ctx, "bk-1", true)

	handler := &reviewsapp.SubmitReviewHandler{Outbox: e.box}
	for _, rating := range []int{0, 6, -1} {
		_, err := handler.Handle(ctx, reviewsapp.SubmitReviewCommand{
			BookingID:   "bk-1",
			AuthorEmail: "renter@example.com",
			Rating:      rating,
		})
		assert.ErrorIs(t, err, domainreviews.ErrInvalidRating)
	}
}

func TestListItemReviews(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx(t)
	e.bookAndFinish(t, ctx, "bk-1", true)

	submit := &reviewsapp.SubmitReviewHandler{Outbox: e.box}
	_, err := submit.Handle(ctx, reviewsapp.SubmitReviewCommand{
		BookingID:   "bk-1",
		AuthorEmail: "renter@example.com",
		Rating:      5,
		Text:        "Worked perfectly.",
	})
	require.NoError(t, err)

	list := &reviewsapp.ListItemReviewsHandler{UoWFactory: e.factory}
	result, err := list.Handle(context.Background(), reviewsapp.ListItemReviewsQuery{ItemID: "item-1"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "renter@example.com", result.Items[0].AuthorEmail)
}
