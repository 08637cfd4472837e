package listings_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	listingsapp "gearshare/internal/app/handlers/listings"
	domainitems "gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/money"
	"gearshare/internal/infra/storage/memory"
)

func seedItem(t *testing.T, factory memory.Factory, id, owner string, createdAt time.Time) {
	t.Helper()
	item, err := domainitems.NewItem(domainitems.CreateParams{
		ID:          domainitems.ItemID(id),
		OwnerEmail:  owner,
		Title:       "Item " + id,
		PricePerDay: money.INR(500),
		Now:         createdAt,
	})
	require.NoError(t, err)
	require.NoError(t, item.Activate(createdAt))
	item.ClearEvents()
	require.NoError(t, factory.ItemsRepo.Save(context.Background(), item))
}

func TestListOwnerItems(t *testing.T) {
	factory := memory.NewFactory()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	seedItem(t, factory, "item-1", "owner@example.com", base)
	seedItem(t, factory, "item-2", "owner@example.com", base.Add(time.Hour))
	seedItem(t, factory, "item-3", "other@example.com", base)

	handler := &listingsapp.ListOwnerItemsHandler{UoWFactory: factory}
	result, err := handler.Handle(context.Background(), listingsapp.ListOwnerItemsQuery{OwnerEmail: "owner@example.com"})
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	// Newest first.
	assert.Equal(t, "item-2", result.Items[0].ID)
	assert.Equal(t, "item-1", result.Items[1].ID)
}

func TestGetItem(t *testing.T) {
	factory := memory.NewFactory()
	seedItem(t, factory, "item-1", "owner@example.com", time.Now())

	handler := &listingsapp.GetItemHandler{UoWFactory: factory}
	item, err := handler.Handle(context.Background(), listingsapp.GetItemQuery{ItemID: "item-1"})
	require.NoError(t, err)
	assert.Equal(t, "item-1", item.ID)
	assert.Equal(t, "owner@example.com", item.OwnerEmail)
	assert.Equal(t, int64(500), item.PricePerDay)

	_, err = handler.Handle(context.Background(), listingsapp.GetItemQuery{ItemID: "missing"})
	assert.ErrorIs(t, err, domainitems.ErrNotFound)
}
