package reviews

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

const listItemReviewsKey = "reviews.item.list"

const defaultReviewPageSize = 50

type ListItemReviewsQuery struct {
	ItemID string
	Limit  int
	Offset int
}

func (q ListItemReviewsQuery) Key() string { return listItemReviewsKey }

// ListItemReviewsHandler returns an item's reviews, newest first.
type ListItemReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListItemReviewsHandler) Handle(ctx context.Context, q ListItemReviewsQuery) (dto.ReviewCollection, error) {
	itemID := strings.TrimSpace(q.ItemID)
	if itemID == "" {
		return dto.ReviewCollection{}, errors.New("item id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	item, err := unit.Items().ByID(execCtx, domainitems.ItemID(itemID))
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultReviewPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	list, err := unit.Reviews().ListByItem(execCtx, item.ID, limit, offset)
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	out := make([]dto.Review, 0, len(list))
	for _, review := range list {
		out = append(out, dto.MapReview(review))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return dto.ReviewCollection{Items: out}, nil
}

var _ queries.Handler[ListItemReviewsQuery, dto.ReviewCollection] = (*ListItemReviewsHandler)(nil)
