package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearshare/internal/domain/booking"
	"gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/dateset"
	"gearshare/internal/domain/shared/money"
)

func testItem(t *testing.T) *items.Item {
	t.Helper()
	item, err := items.NewItem(items.CreateParams{
		ID:          "item-1",
		OwnerEmail:  "owner@example.com",
		Title:       "Trekking tent",
		PricePerDay: money.INR(500),
		Now:         time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, item.Activate(time.Now()))
	item.ClearEvents()
	return item
}

func newPendingBooking(t *testing.T) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(booking.CreateParams{
		ID:          "bk-1",
		Item:        testItem(t),
		RenterEmail: "renter@example.com",
		StartDate:   dateset.MustParse("2026-07-01"),
		EndDate:     dateset.MustParse("2026-07-03"),
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	b.ClearEvents()
	return b
}

func TestNewBookingFreezesTotals(t *testing.T) {
	b := newPendingBooking(t)

	assert.Equal(t, booking.StatePending, b.State)
	assert.Equal(t, 3, b.TotalDays)
	assert.Equal(t, money.INR(1500), b.TotalAmount)
	assert.Equal(t, "owner@example.com", b.OwnerEmail)
	assert.Equal(t, []string{"2026-07-01", "2026-07-02", "2026-07-03"}, b.Dates().Strings())
}

func TestNewBookingSingleDay(t *testing.T) {
	b, err := booking.NewBooking(booking.CreateParams{
		ID:          "bk-2",
		Item:        testItem(t),
		RenterEmail: "renter@example.com",
		StartDate:   dateset.MustParse("2026-07-01"),
		EndDate:     dateset.MustParse("2026-07-01"),
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, b.TotalDays)
	assert.Equal(t, money.INR(500), b.TotalAmount)
}

func TestNewBookingValidation(t *testing.T) {
	item := testItem(t)

	_, err := booking.NewBooking(booking.CreateParams{
		ID:          "bk-3",
		Item:        item,
		RenterEmail: "renter@example.com",
		StartDate:   dateset.MustParse("2026-07-03"),
		EndDate:     dateset.MustParse("2026-07-01"),
		CreatedAt:   time.Now(),
	})
	assert.ErrorIs(t, err, dateset.ErrInvalidRange)

	_, err = booking.NewBooking(booking.CreateParams{
		ID:          "bk-4",
		Item:        item,
		RenterEmail: "Owner@Example.com",
		StartDate:   dateset.MustParse("2026-07-01"),
		EndDate:     dateset.MustParse("2026-07-02"),
		CreatedAt:   time.Now(),
	})
	assert.ErrorIs(t, err, booking.ErrSelfBooking)

	_, err = booking.NewBooking(booking.CreateParams{
		ID:        "bk-5",
		Item:      item,
		StartDate: dateset.MustParse("2026-07-01"),
		EndDate:   dateset.MustParse("2026-07-02"),
		CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, booking.ErrRenterRequired)
}

func TestConfirmRequiresOwner(t *testing.T) {
	b := newPendingBooking(t)
	err := b.Confirm("somebody@else.com", time.Now())
	assert.ErrorIs(t, err, booking.ErrNotOwner)
	assert.Equal(t, booking.StatePending, b.State)

	require.NoError(t, b.Confirm("owner@example.com", time.Now()))
	assert.Equal(t, booking.StateConfirmed, b.State)
}

func TestDecideOnlyOncePending(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Confirm("owner@example.com", time.Now()))

	assert.ErrorIs(t, b.Confirm("owner@example.com", time.Now()), booking.ErrInvalidState)
	assert.ErrorIs(t, b.Reject("owner@example.com", "late", time.Now()), booking.ErrInvalidState)
}

func TestRejectIsTerminal(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Reject("owner@example.com", "not available", time.Now()))
	assert.Equal(t, booking.StateRejected, b.State)
	assert.True(t, b.State.IsTerminal())

	_, err := b.Cancel("renter@example.com", "", time.Now())
	assert.ErrorIs(t, err, booking.ErrInvalidState)
}

func TestCancelByParticipants(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		confirm   bool
		wantErr   error
		wantWas   bool
	}{
		{name: "renter cancels pending", requester: "renter@example.com"},
		{name: "owner cancels pending", requester: "owner@example.com"},
		{name: "renter cancels confirmed", requester: "renter@example.com", confirm: true, wantWas: true},
		{name: "stranger cannot cancel", requester: "other@example.com", wantErr: booking.ErrNotParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newPendingBooking(t)
			if tt.confirm {
				require.NoError(t, b.Confirm("owner@example.com", time.Now()))
			}
			was, err := b.Cancel(tt.requester, "changed plans", time.Now())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWas, was)
			assert.Equal(t, booking.StateCancelled, b.State)
		})
	}
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	b := newPendingBooking(t)
	assert.ErrorIs(t, b.Complete(time.Now()), booking.ErrInvalidState)

	require.NoError(t, b.Confirm("owner@example.com", time.Now()))
	require.NoError(t, b.Complete(time.Now()))
	assert.Equal(t, booking.StateCompleted, b.State)
	assert.ErrorIs(t, b.Complete(time.Now()), booking.ErrInvalidState)
}

func TestBlockingStates(t *testing.T) {
	b := newPendingBooking(t)
	assert.True(t, b.Blocking())

	require.NoError(t, b.Confirm("owner@example.com", time.Now()))
	assert.True(t, b.Blocking())

	require.NoError(t, b.Complete(time.Now()))
	assert.False(t, b.Blocking())
}

func TestLifecycleRecordsEvents(t *testing.T) {
	b, err := booking.NewBooking(booking.CreateParams{
		ID:          "bk-evt",
		Item:        testItem(t),
		RenterEmail: "renter@example.com",
		StartDate:   dateset.MustParse("2026-07-01"),
		EndDate:     dateset.MustParse("2026-07-02"),
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, b.Confirm("owner@example.com", time.Now()))
	events := b.PendingEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "booking.requested", events[0].EventName())
	assert.Equal(t, "booking.confirmed", events[1].EventName())

	b.ClearEvents()
	assert.Empty(t, b.PendingEvents())
}
