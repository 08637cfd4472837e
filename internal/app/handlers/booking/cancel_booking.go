package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/uow"
	domainbooking "gearshare/internal/domain/booking"
	"gearshare/internal/domain/shared/dateset"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID      string
	RequesterEmail string
	Reason         string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CancelBookingHandler cancels a pending or confirmed booking. A confirmed
// cancellation releases the booking's dates from the projection, except
// dates still covered by another confirmed booking for the same item.
type CancelBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	bk, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(strings.TrimSpace(cmd.BookingID)))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wasConfirmed, err := bk.Cancel(cmd.RequesterEmail, cmd.Reason, now)
	if err != nil {
		return nil, err
	}

	if wasConfirmed {
		others, err := unit.Bookings().ListByItem(ctx, bk.ItemID)
		if err != nil {
			return nil, err
		}
		stillBooked := dateset.NewSet()
		for _, other := range others {
			if other.ID == bk.ID || other.State != domainbooking.StateConfirmed {
				continue
			}
			stillBooked = dateset.Union(stillBooked, other.Dates())
		}
		calendar, err := unit.Availability().Calendar(ctx, bk.ItemID)
		if err != nil {
			return nil, err
		}
		calendar.ReleaseBooked(bk.Dates(), stillBooked, now)
		if err := unit.Availability().Save(ctx, calendar); err != nil {
			return nil, err
		}
	}

	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking cancelled", "booking_id", bk.ID, "item_id", bk.ItemID, "was_confirmed", wasConfirmed)
	}

	return &CancelBookingResult{BookingID: string(bk.ID), Status: string(bk.State)}, nil
}

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
