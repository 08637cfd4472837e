package availability

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	handlersupport "gearshare/internal/app/handlers/support"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
	domainitems "gearshare/internal/domain/items"
)

const (
	getCalendarKey       = "availability.calendar"
	recomputeCalendarKey = "availability.recompute"
)

type GetCalendarQuery struct {
	ItemID string
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	itemID := strings.TrimSpace(q.ItemID)
	if itemID == "" {
		return dto.Calendar{}, errors.New("item id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Resolving the item first turns an unknown id into a not-found error
	// instead of an empty lazily-created calendar.
	item, err := unit.Items().ByID(execCtx, domainitems.ItemID(itemID))
	if err != nil {
		return dto.Calendar{}, err
	}

	calendar, err := unit.Availability().Calendar(execCtx, item.ID)
	if err != nil {
		return dto.Calendar{}, err
	}
	return dto.MapCalendar(calendar), nil
}

// RecomputeCalendarCommand rebuilds an item's booked-dates projection from
// its confirmed bookings. It is the repair path for the partial-failure
// window between a booking write and its projector merge.
type RecomputeCalendarCommand struct {
	ItemID string
}

func (c RecomputeCalendarCommand) Key() string { return recomputeCalendarKey }

type RecomputeCalendarHandler struct {
	Logger *slog.Logger
}

func (h *RecomputeCalendarHandler) Handle(ctx context.Context, cmd RecomputeCalendarCommand) (dto.Calendar, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return dto.Calendar{}, uow.ErrUnitOfWorkMissing
	}

	item, err := unit.Items().ByID(ctx, domainitems.ItemID(strings.TrimSpace(cmd.ItemID)))
	if err != nil {
		return dto.Calendar{}, err
	}
	bookings, err := unit.Bookings().ListByItem(ctx, item.ID)
	if err != nil {
		return dto.Calendar{}, err
	}
	calendar, err := unit.Availability().Calendar(ctx, item.ID)
	if err != nil {
		return dto.Calendar{}, err
	}

	calendar.Recompute(bookings, time.Now().UTC())
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return dto.Calendar{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("availability recomputed", "item_id", item.ID, "unavailable", len(calendar.Unavailable()))
	}

	return dto.MapCalendar(calendar), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
var _ commands.Handler[RecomputeCalendarCommand, dto.Calendar] = (*RecomputeCalendarHandler)(nil)
