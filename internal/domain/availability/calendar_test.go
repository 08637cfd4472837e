package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearshare/internal/domain/availability"
	"gearshare/internal/domain/booking"
	"gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/dateset"
	"gearshare/internal/domain/shared/money"
)

func mustRange(t *testing.T, start, end string) dateset.Set {
	t.Helper()
	set, err := dateset.FromRange(dateset.MustParse(start), dateset.MustParse(end))
	require.NoError(t, err)
	return set
}

func TestMergeBookedIsIdempotent(t *testing.T) {
	cal := availability.NewCalendar("item-1")
	dates := mustRange(t, "2026-07-01", "2026-07-03")

	cal.MergeBooked(dates, time.Now())
	cal.MergeBooked(dates, time.Now())

	assert.Equal(t, []string{"2026-07-01", "2026-07-02", "2026-07-03"}, cal.Unavailable().Strings())
}

func TestConflictsReturnsOnlyOverlap(t *testing.T) {
	cal := availability.NewCalendar("item-1")
	cal.MergeBooked(mustRange(t, "2026-07-03", "2026-07-05"), time.Now())

	conflicts := cal.Conflicts(mustRange(t, "2026-07-01", "2026-07-03"))
	assert.Equal(t, []string{"2026-07-03"}, conflicts.Strings())

	assert.Empty(t, cal.Conflicts(mustRange(t, "2026-07-06", "2026-07-08")))
}

func TestRemoveBlockLeavesBookedDates(t *testing.T) {
	cal := availability.NewCalendar("item-1")
	cal.MergeBooked(mustRange(t, "2026-07-01", "2026-07-02"), time.Now())
	require.NoError(t, cal.AddBlock(mustRange(t, "2026-07-02", "2026-07-04"), time.Now()))

	// Removing a block across booked dates only lifts the block.
	require.NoError(t, cal.RemoveBlock(mustRange(t, "2026-07-01", "2026-07-04"), time.Now()))

	assert.Equal(t, []string{"2026-07-01", "2026-07-02"}, cal.Unavailable().Strings())
	assert.Empty(t, cal.Blocked)
}

func TestReleaseBookedKeepsOtherBookingsDates(t *testing.T) {
	cal := availability.NewCalendar("item-1")
	cancelled := mustRange(t, "2026-07-01", "2026-07-04")
	still := mustRange(t, "2026-07-03", "2026-07-06")
	cal.MergeBooked(cancelled, time.Now())
	cal.MergeBooked(still, time.Now())

	cal.ReleaseBooked(cancelled, still, time.Now())

	assert.Equal(t, []string{"2026-07-03", "2026-07-04", "2026-07-05", "2026-07-06"}, cal.Unavailable().Strings())
}

func TestAddBlockRequiresDates(t *testing.T) {
	cal := availability.NewCalendar("item-1")
	assert.ErrorIs(t, cal.AddBlock(dateset.NewSet(), time.Now()), availability.ErrNoDates)
	assert.ErrorIs(t, cal.RemoveBlock(dateset.NewSet(), time.Now()), availability.ErrNoDates)
}

func TestEntriesReportBookedOverBlocked(t *testing.T) {
	cal := availability.NewCalendar("item-1")
	cal.MergeBooked(mustRange(t, "2026-07-02", "2026-07-02"), time.Now())
	require.NoError(t, cal.AddBlock(mustRange(t, "2026-07-02", "2026-07-03"), time.Now()))

	entries := cal.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "2026-07-02", entries[0].Date.String())
	assert.Equal(t, availability.ReasonBooking, entries[0].Reason)
	assert.Equal(t, "2026-07-03", entries[1].Date.String())
	assert.Equal(t, availability.ReasonOwnerBlock, entries[1].Reason)
}

func TestRecomputeRebuildsFromConfirmedBookings(t *testing.T) {
	item, err := items.NewItem(items.CreateParams{
		ID:          "item-1",
		OwnerEmail:  "owner@example.com",
		Title:       "Tent",
		PricePerDay: money.INR(500),
		Now:         time.Now(),
	})
	require.NoError(t, err)

	confirmed, err := booking.NewBooking(booking.CreateParams{
		ID:          "bk-confirmed",
		Item:        item,
		RenterEmail: "renter@example.com",
		StartDate:   dateset.MustParse("2026-07-01"),
		EndDate:     dateset.MustParse("2026-07-02"),
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, confirmed.Confirm("owner@example.com", time.Now()))

	pending, err := booking.NewBooking(booking.CreateParams{
		ID:          "bk-pending",
		Item:        item,
		RenterEmail: "renter2@example.com",
		StartDate:   dateset.MustParse("2026-07-10"),
		EndDate:     dateset.MustParse("2026-07-12"),
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	cal := availability.NewCalendar(item.ID)
	// Seed drifted state: a stale date that no confirmed booking covers.
	cal.MergeBooked(mustRange(t, "2026-08-01", "2026-08-01"), time.Now())
	require.NoError(t, cal.AddBlock(mustRange(t, "2026-07-20", "2026-07-20"), time.Now()))

	unavailable := cal.Recompute([]*booking.Booking{confirmed, pending}, time.Now())

	// Confirmed dates plus preserved owner block; drift and pending excluded.
	assert.Equal(t, []string{"2026-07-01", "2026-07-02", "2026-07-20"}, unavailable.Strings())
}

func TestBlockEventsRecorded(t *testing.T) {
	cal := availability.NewCalendar("item-1")
	require.NoError(t, cal.AddBlock(mustRange(t, "2026-07-01", "2026-07-01"), time.Now()))
	require.NoError(t, cal.RemoveBlock(mustRange(t, "2026-07-01", "2026-07-01"), time.Now()))

	events := cal.PendingEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "availability.block_added", events[0].EventName())
	assert.Equal(t, "availability.block_removed", events[1].EventName())
}
