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
)

const completeBookingKey = "booking.complete"

type CompleteBookingCommand struct {
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

type CompleteBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CompleteBookingHandler marks a confirmed booking completed at end of
// rental. The trigger (owner action or scheduled job) lives outside this
// core. Dates stay blocked; completion never touches the projection.
type CompleteBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (*CompleteBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	bk, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(strings.TrimSpace(cmd.BookingID)))
	if err != nil {
		return nil, err
	}

	if err := bk.Complete(time.Now().UTC()); err != nil {
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

	if h.Logger != nil {
		h.Logger.Info("booking completed", "booking_id", bk.ID, "item_id", bk.ItemID)
	}

	return &CompleteBookingResult{BookingID: string(bk.ID), Status: string(bk.State)}, nil
}

func (h *CompleteBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CompleteBookingCommand, *CompleteBookingResult] = (*CompleteBookingHandler)(nil)
