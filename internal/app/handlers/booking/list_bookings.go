package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"gearshare/internal/app/dto"
	handlersupport "gearshare/internal/app/handlers/support"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
	domainitems "gearshare/internal/domain/items"
)

const (
	listRenterBookingsKey  = "booking.renter.list"
	listOwnerBookingsKey   = "booking.owner.list"
	allStatusesFilterValue = "ALL"
)

type ListRenterBookingsQuery struct {
	RenterEmail string
}

func (q ListRenterBookingsQuery) Key() string { return listRenterBookingsKey }

type ListRenterBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListRenterBookingsHandler) Handle(ctx context.Context, q ListRenterBookingsQuery) (dto.BookingCollection, error) {
	renter := strings.ToLower(strings.TrimSpace(q.RenterEmail))
	if renter == "" {
		return dto.BookingCollection{}, errors.New("renter email is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByRenter(execCtx, renter)
	if err != nil {
		return dto.BookingCollection{}, err
	}

	itemCache := make(map[domainitems.ItemID]*domainitems.Item)
	summaries := make([]dto.BookingSummary, 0, len(bookings))
	for _, bk := range bookings {
		item, ok := itemCache[bk.ItemID]
		if !ok {
			item, err = unit.Items().ByID(execCtx, bk.ItemID)
			if err != nil && h.Logger != nil {
				h.Logger.Warn("item missing for booking", "booking_id", bk.ID, "item_id", bk.ItemID, "error", err)
			}
			itemCache[bk.ItemID] = item
		}
		summaries = append(summaries, dto.MapBookingSummary(bk, item))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	return dto.BookingCollection{Items: summaries}, nil
}

type ListOwnerBookingsQuery struct {
	OwnerEmail string
	Status     string
}

func (q ListOwnerBookingsQuery) Key() string { return listOwnerBookingsKey }

// ListOwnerBookingsHandler lists bookings across all of an owner's items,
// defaulting to the pending ones awaiting a decision.
type ListOwnerBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListOwnerBookingsHandler) Handle(ctx context.Context, q ListOwnerBookingsQuery) (dto.BookingCollection, error) {
	owner := strings.ToLower(strings.TrimSpace(q.OwnerEmail))
	if owner == "" {
		return dto.BookingCollection{}, errors.New("owner email is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	ownerItems, err := unit.Items().ListByOwner(execCtx, owner)
	if err != nil {
		return dto.BookingCollection{}, err
	}

	statusFilter := strings.ToUpper(strings.TrimSpace(q.Status))
	if statusFilter == "" {
		statusFilter = "PENDING"
	}
	allStatuses := statusFilter == allStatusesFilterValue

	summaries := make([]dto.BookingSummary, 0)
	for _, item := range ownerItems {
		bookings, err := unit.Bookings().ListByItem(execCtx, item.ID)
		if err != nil {
			return dto.BookingCollection{}, err
		}
		for _, bk := range bookings {
			if !allStatuses && string(bk.State) != statusFilter {
				continue
			}
			summaries = append(summaries, dto.MapBookingSummary(bk, item))
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("owner bookings listed", "owner", owner, "count", len(summaries), "status", statusFilter)
	}

	return dto.BookingCollection{Items: summaries}, nil
}

var _ queries.Handler[ListRenterBookingsQuery, dto.BookingCollection] = (*ListRenterBookingsHandler)(nil)
var _ queries.Handler[ListOwnerBookingsQuery, dto.BookingCollection] = (*ListOwnerBookingsHandler)(nil)
