package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingapp "gearshare/internal/app/handlers/booking"
	"gearshare/internal/app/uow"
	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
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

func (e *env) seedItem(t *testing.T, id, owner string, pricePerDay int64, activate bool) {
	t.Helper()
	item, err := domainitems.NewItem(domainitems.CreateParams{
		ID:          domainitems.ItemID(id),
		OwnerEmail:  owner,
		Title:       "Trekking tent",
		PricePerDay: money.INR(pricePerDay),
		Now:         time.Now(),
	})
	require.NoError(t, err)
	if activate {
		require.NoError(t, item.Activate(time.Now()))
	}
	item.ClearEvents()
	require.NoError(t, e.factory.ItemsRepo.Save(context.Background(), item))
}

func (e *env) request(t *testing.T, ctx context.Context, id, item, renter, start, end string) (*bookingapp.RequestBookingResult, error) {
	t.Helper()
	handler := &bookingapp.RequestBookingHandler{UoWFactory: e.factory, Outbox: e.box}
	return handler.Handle(ctx, bookingapp.RequestBookingCommand{
		CommandID:   id,
		ItemID:      item,
		RenterEmail: renter,
		StartDate:   dateset.MustParse(start),
		EndDate:     dateset.MustParse(end),
	})
}

func (e *env) decide(t *testing.T, ctx context.Context, bookingID, decider string, outcome bookingapp.Outcome) (*bookingapp.DecideBookingResult, error) {
	t.Helper()
	handler := &bookingapp.DecideBookingHandler{Outbox: e.box}
	return handler.Handle(ctx, bookingapp.DecideBookingCommand{
		BookingID:    bookingID,
		DeciderEmail: decider,
		Outcome:      outcome,
	})
}

func (e *env) calendarDates(t *testing.T, ctx context.Context, item string) []string {
	t.Helper()
	unit, ok := uow.FromContext(ctx)
	require.True(t, ok)
	cal, err := unit.Availability().Calendar(ctx, domainitems.ItemID(item))
	require.NoError(t, err)
	return cal.Unavailable().Strings()
}

func TestRequestBookingCreatesPending(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	ctx := e.ctx(t)

	result, err := e.request(t, ctx, "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-03")
	require.NoError(t, err)

	assert.Equal(t, "bk-1", result.BookingID)
	assert.Equal(t, 3, result.TotalDays)
	assert.Equal(t, int64(1500), result.TotalAmount)
	assert.Equal(t, "PENDING", result.Status)

	// A pending request never touches the availability projection.
	assert.Empty(t, e.calendarDates(t, ctx, "item-1"))

	records := e.box.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "booking.requested", records[0].Name)
}

func TestRequestBookingUnknownItem(t *testing.T) {
	e := newEnv(t)
	_, err := e.request(t, e.ctx(t), "bk-1", "missing", "renter@example.com", "2026-07-01", "2026-07-02")
	assert.ErrorIs(t, err, domainitems.ErrNotFound)
}

func TestRequestBookingInactiveItem(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, false)
	_, err := e.request(t, e.ctx(t), "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-02")
	assert.ErrorIs(t, err, bookingapp.ErrItemNotBookable)
}

func TestRequestBookingInvalidRange(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	_, err := e.request(t, e.ctx(t), "bk-1", "item-1", "renter@example.com", "2026-07-05", "2026-07-01")
	assert.ErrorIs(t, err, dateset.ErrInvalidRange)
}

func TestRequestBookingSelfBooking(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	_, err := e.request(t, e.ctx(t), "bk-1", "item-1", "owner@example.com", "2026-07-01", "2026-07-02")
	assert.ErrorIs(t, err, domainbooking.ErrSelfBooking)
}

func TestRequestBookingConflictsWithConfirmed(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	ctx := e.ctx(t)

	_, err := e.request(t, ctx, "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-03")
	require.NoError(t, err)
	_, err = e.decide(t, ctx, "bk-1", "owner@example.com", bookingapp.OutcomeConfirmed)
	require.NoError(t, err)

	_, err = e.request(t, ctx, "bk-2", "item-1", "other@example.com", "2026-07-03", "2026-07-05")
	var conflict *domainbooking.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"2026-07-03"}, conflict.Dates.Strings())

	// Adjacent dates book fine.
	_, err = e.request(t, ctx, "bk-3", "item-1", "other@example.com", "2026-07-04", "2026-07-05")
	assert.NoError(t, err)
}

func TestRequestBookingConflictsWithPending(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	ctx := e.ctx(t)

	_, err := e.request(t, ctx, "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-03")
	require.NoError(t, err)

	_, err = e.request(t, ctx, "bk-2", "item-1", "other@example.com", "2026-07-02", "2026-07-04")
	var conflict *domainbooking.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"2026-07-02", "2026-07-03"}, conflict.Dates.Strings())
}

func TestDecideConfirmMergesCalendar(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	ctx := e.ctx(t)

	_, err := e.request(t, ctx, "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-03")
	require.NoError(t, err)

	result, err := e.decide(t, ctx, "bk-1", "owner@example.com", bookingapp.OutcomeConfirmed)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", result.Status)
	assert.Equal(t, []string{"2026-07-01", "2026-07-02", "2026-07-03"}, e.calendarDates(t, ctx, "item-1"))

	// A decision is final.
	_, err = e.decide(t, ctx, "bk-1", "owner@example.com", bookingapp.OutcomeRejected)
	assert.ErrorIs(t, err, domainbooking.ErrInvalidState)
}

func TestDecideRequiresOwner(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	ctx := e.ctx(t)

	_, err := e.request(t, ctx, "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-02")
	require.NoError(t, err)

	_, err = e.decide(t, ctx, "bk-1", "renter@example.com", bookingapp.OutcomeConfirmed)
	assert.ErrorIs(t, err, domainbooking.ErrNotOwner)
}

func TestDecideRejectFreesDatesForRebooking(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	ctx := e.ctx(t)

	_, err := e.request(t, ctx, "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-03")
	require.NoError(t, err)
	_, err = e.decide(t, ctx, "bk-1", "owner@example.com", bookingapp.OutcomeRejected)
	require.NoError(t, err)

	assert.Empty(t, e.calendarDates(t, ctx, "item-1"))

	_, err = e.request(t, ctx, "bk-2", "item-1", "other@example.com", "2026-07-01", "2026-07-03")
	assert.NoError(t, err)
}

func TestDecideInvalidOutcome(t *testing.T) {
	e := newEnv(t)
	_, err := e.decide(t, e.ctx(t), "bk-1", "owner@example.com", "maybe")
	assert.ErrorIs(t, err, bookingapp.ErrInvalidOutcome)
}

func TestDecideUnknownBooking(t *testing.T) {
	e := newEnv(t)
	_, err := e.decide(t, e.ctx(t), "missing", "owner@example.com", bookingapp.OutcomeConfirmed)
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestCancelConfirmedReleasesOnlyItsDates(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	ctx := e.ctx(t)

	_, err := e.request(t, ctx, "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-03")
	require.NoError(t, err)
	_, err = e.decide(t, ctx, "bk-1", "owner@example.com", bookingapp.OutcomeConfirmed)
	require.NoError(t, err)

	_, err = e.request(t, ctx, "bk-2", "item-1", "other@example.com", "2026-07-05", "2026-07-06")
	require.NoError(t, err)
	_, err = e.decide(t, ctx, "bk-2", "owner@example.com", bookingapp.OutcomeConfirmed)
	require.NoError(t, err)

	cancel := &bookingapp.CancelBookingHandler{Outbox: e.box}
	result, err := cancel.Handle(ctx, bookingapp.CancelBookingCommand{
		BookingID:      "bk-1",
		RequesterEmail: "renter@example.com",
		Reason:         "changed plans",
	})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", result.Status)

	assert.Equal(t, []string{"2026-07-05", "2026-07-06"}, e.calendarDates(t, ctx, "item-1"))
}

func TestCancelByStranger(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	ctx := e.ctx(t)

	_, err := e.request(t, ctx, "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-02")
	require.NoError(t, err)

	cancel := &bookingapp.CancelBookingHandler{Outbox: e.box}
	_, err = cancel.Handle(ctx, bookingapp.CancelBookingCommand{
		BookingID:      "bk-1",
		RequesterEmail: "stranger@example.com",
	})
	assert.ErrorIs(t, err, domainbooking.ErrNotParticipant)
}

func TestCompleteKeepsDatesBlocked(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	ctx := e.ctx(t)

	_, err := e.request(t, ctx, "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-02")
	require.NoError(t, err)
	_, err = e.decide(t, ctx, "bk-1", "owner@example.com", bookingapp.OutcomeConfirmed)
	require.NoError(t, err)

	complete := &bookingapp.CompleteBookingHandler{Outbox: e.box}
	result, err := complete.Handle(ctx, bookingapp.CompleteBookingCommand{BookingID: "bk-1"})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.Status)

	assert.Equal(t, []string{"2026-07-01", "2026-07-02"}, e.calendarDates(t, ctx, "item-1"))

	_, err = complete.Handle(ctx, bookingapp.CompleteBookingCommand{BookingID: "bk-1"})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidState)
}

func TestListBookings(t *testing.T) {
	e := newEnv(t)
	e.seedItem(t, "item-1", "owner@example.com", 500, true)
	e.seedItem(t, "item-2", "owner@example.com", 300, true)
	ctx := e.ctx(t)

	_, err := e.request(t, ctx, "bk-1", "item-1", "renter@example.com", "2026-07-01", "2026-07-02")
	require.NoError(t, err)
	_, err = e.request(t, ctx, "bk-2", "item-2", "renter@example.com", "2026-07-05", "2026-07-06")
	require.NoError(t, err)
	_, err = e.decide(t, ctx, "bk-2", "owner@example.com", bookingapp.OutcomeConfirmed)
	require.NoError(t, err)

	renterList := &bookingapp.ListRenterBookingsHandler{UoWFactory: e.factory}
	mine, err := renterList.Handle(context.Background(), bookingapp.ListRenterBookingsQuery{RenterEmail: "renter@example.com"})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 2)
	assert.Equal(t, "Trekking tent", mine.Items[0].ItemTitle)

	ownerList := &bookingapp.ListOwnerBookingsHandler{UoWFactory: e.factory}

	pending, err := ownerList.Handle(context.Background(), bookingapp.ListOwnerBookingsQuery{OwnerEmail: "owner@example.com"})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "bk-1", pending.Items[0].ID)

	all, err := ownerList.Handle(context.Background(), bookingapp.ListOwnerBookingsQuery{OwnerEmail: "owner@example.com", Status: "ALL"})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	confirmed, err := ownerList.Handle(context.Background(), bookingapp.ListOwnerBookingsQuery{OwnerEmail: "owner@example.com", Status: "confirmed"})
	require.NoError(t, err)
	require.Len(t, confirmed.Items, 1)
	assert.Equal(t, "bk-2", confirmed.Items[0].ID)
}
