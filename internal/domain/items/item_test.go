package items_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/money"
)

func newDraftItem(t *testing.T) *items.Item {
	t.Helper()
	item, err := items.NewItem(items.CreateParams{
		ID:          "item-1",
		OwnerEmail:  "Owner@Example.com",
		Title:       "  Trekking tent ",
		PricePerDay: money.INR(500),
		Now:         time.Now(),
	})
	require.NoError(t, err)
	return item
}

func TestNewItemNormalizes(t *testing.T) {
	item := newDraftItem(t)

	assert.Equal(t, items.StateDraft, item.State)
	assert.Equal(t, "owner@example.com", item.OwnerEmail)
	assert.Equal(t, "Trekking tent", item.Title)
	assert.True(t, item.OwnedBy("OWNER@example.com"))
	assert.False(t, item.OwnedBy("other@example.com"))
}

func TestNewItemValidation(t *testing.T) {
	base := items.CreateParams{
		ID:          "item-1",
		OwnerEmail:  "owner@example.com",
		Title:       "Tent",
		PricePerDay: money.INR(500),
		Now:         time.Now(),
	}

	missingOwner := base
	missingOwner.OwnerEmail = " "
	_, err := items.NewItem(missingOwner)
	assert.ErrorIs(t, err, items.ErrOwnerRequired)

	missingTitle := base
	missingTitle.Title = ""
	_, err = items.NewItem(missingTitle)
	assert.ErrorIs(t, err, items.ErrTitleRequired)

	negativeRate := base
	negativeRate.PricePerDay = money.INR(-1)
	_, err = items.NewItem(negativeRate)
	assert.ErrorIs(t, err, items.ErrDailyRate)
}

func TestActivateAndSuspend(t *testing.T) {
	item := newDraftItem(t)

	// Suspend is only valid from the active state.
	assert.ErrorIs(t, item.Suspend(time.Now(), "damaged"), items.ErrInvalidState)

	require.NoError(t, item.Activate(time.Now()))
	assert.Equal(t, items.StateActive, item.State)

	// Activating twice is a no-op.
	require.NoError(t, item.Activate(time.Now()))

	require.NoError(t, item.Suspend(time.Now(), "damaged"))
	assert.Equal(t, items.StateSuspended, item.State)
}

func TestLifecycleRecordsEvents(t *testing.T) {
	item := newDraftItem(t)
	require.NoError(t, item.Activate(time.Now()))
	require.NoError(t, item.Suspend(time.Now(), "damaged"))

	events := item.PendingEvents()
	require.Len(t, events, 3)
	assert.Equal(t, "item.listed", events[0].EventName())
	assert.Equal(t, "item.activated", events[1].EventName())
	assert.Equal(t, "item.suspended", events[2].EventName())

	suspended, ok := events[2].(items.ItemSuspended)
	require.True(t, ok)
	assert.Equal(t, "damaged", suspended.Reason)
	assert.Equal(t, "item-1", suspended.AggregateID())
}
