package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/middleware"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/uow"
	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/dateset"
)

const requestBookingKey = "booking.request"

var (
	ErrUnitOfWorkRequired = errors.New("booking: unit of work required")
	ErrItemNotBookable    = errors.New("booking: item is not active")
)

type RequestBookingCommand struct {
	CommandID       string
	ItemID          string
	RenterEmail     string
	StartDate       dateset.Date
	EndDate         dateset.Date
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

type RequestBookingResult struct {
	BookingID   string `json:"booking_id"`
	TotalDays   int    `json:"total_days"`
	TotalAmount int64  `json:"total_amount"`
	Status      string `json:"status"`
}

// RequestBookingHandler creates a pending booking after checking the
// requested dates against the item's availability projection and every
// still-pending request for the item. Overlapping pending requests are
// rejected up front rather than racing for the same dates at decide time.
type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	requested, err := dateset.FromRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}

	item, err := unit.Items().ByID(ctx, domainitems.ItemID(cmd.ItemID))
	if err != nil {
		return nil, err
	}
	if item.State != domainitems.StateActive {
		return nil, ErrItemNotBookable
	}

	calendar, err := unit.Availability().Calendar(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	conflicts := calendar.Conflicts(requested)

	// Pending bookings block too, but are never merged into the projection:
	// a rejected request must leave no trace there.
	existing, err := unit.Bookings().ListByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if other.State != domainbooking.StatePending {
			continue
		}
		conflicts = dateset.Union(conflicts, dateset.Intersect(requested, other.Dates()))
	}
	if len(conflicts) > 0 {
		return nil, &domainbooking.ConflictError{Dates: conflicts}
	}

	now := time.Now().UTC()
	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:          domainbooking.BookingID(cmd.CommandID),
		Item:        item,
		RenterEmail: cmd.RenterEmail,
		StartDate:   cmd.StartDate,
		EndDate:     cmd.EndDate,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("booking requested", "booking_id", bk.ID, "item_id", bk.ItemID, "renter", bk.RenterEmail, "days", bk.TotalDays)
	}

	return &RequestBookingResult{
		BookingID:   string(bk.ID),
		TotalDays:   bk.TotalDays,
		TotalAmount: bk.TotalAmount.Amount,
		Status:      string(bk.State),
	}, nil
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
