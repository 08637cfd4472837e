package listings

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gearshare/internal/app/dto"
	handlersupport "gearshare/internal/app/handlers/support"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
	domainitems "gearshare/internal/domain/items"
)

const (
	listOwnerItemsKey = "listings.owner.list"
	getItemKey        = "listings.get"
)

type ListOwnerItemsQuery struct {
	OwnerEmail string
}

func (q ListOwnerItemsQuery) Key() string { return listOwnerItemsKey }

// ListOwnerItemsHandler lists everything an owner has put up for rent,
// drafts included.
type ListOwnerItemsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListOwnerItemsHandler) Handle(ctx context.Context, q ListOwnerItemsQuery) (dto.ItemCollection, error) {
	owner := strings.ToLower(strings.TrimSpace(q.OwnerEmail))
	if owner == "" {
		return dto.ItemCollection{}, errors.New("owner email is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ItemCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Items().ListByOwner(execCtx, owner)
	if err != nil {
		return dto.ItemCollection{}, err
	}

	out := make([]dto.Item, 0, len(items))
	for _, item := range items {
		out = append(out, dto.MapItem(item))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return dto.ItemCollection{Items: out}, nil
}

type GetItemQuery struct {
	ItemID string
}

func (q GetItemQuery) Key() string { return getItemKey }

type GetItemHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetItemHandler) Handle(ctx context.Context, q GetItemQuery) (dto.Item, error) {
	itemID := strings.TrimSpace(q.ItemID)
	if itemID == "" {
		return dto.Item{}, errors.New("item id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Item{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	item, err := unit.Items().ByID(execCtx, domainitems.ItemID(itemID))
	if err != nil {
		return dto.Item{}, err
	}
	return dto.MapItem(item), nil
}

var _ queries.Handler[ListOwnerItemsQuery, dto.ItemCollection] = (*ListOwnerItemsHandler)(nil)
var _ queries.Handler[GetItemQuery, dto.Item] = (*GetItemHandler)(nil)
