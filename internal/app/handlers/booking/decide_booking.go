package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/uow"
	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
)

const decideBookingKey = "booking.decide"

// Outcome is the owner's verdict on a pending booking.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeRejected  Outcome = "rejected"
)

var ErrInvalidOutcome = errors.New("booking: outcome must be confirmed or rejected")

type DecideBookingCommand struct {
	BookingID    string
	ItemID       string
	DeciderEmail string
	Outcome      Outcome
	Reason       string
}

func (c DecideBookingCommand) Key() string { return decideBookingKey }

type DecideBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// DecideBookingHandler confirms or rejects a pending booking. Confirmation
// merges the booking's dates into the item's availability projection inside
// the same unit of work; rejection touches the projection not at all, since
// pending dates were never merged in.
type DecideBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *DecideBookingHandler) Handle(ctx context.Context, cmd DecideBookingCommand) (*DecideBookingResult, error) {
	if cmd.Outcome != OutcomeConfirmed && cmd.Outcome != OutcomeRejected {
		return nil, ErrInvalidOutcome
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	bk, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(strings.TrimSpace(cmd.BookingID)))
	if err != nil {
		return nil, err
	}
	if cmd.ItemID != "" && bk.ItemID != domainitems.ItemID(cmd.ItemID) {
		return nil, domainbooking.ErrNotFound
	}

	now := time.Now().UTC()
	switch cmd.Outcome {
	case OutcomeConfirmed:
		if err := bk.Confirm(cmd.DeciderEmail, now); err != nil {
			return nil, err
		}
		calendar, err := unit.Availability().Calendar(ctx, bk.ItemID)
		if err != nil {
			return nil, err
		}
		calendar.MergeBooked(bk.Dates(), now)
		if err := unit.Availability().Save(ctx, calendar); err != nil {
			return nil, err
		}
	case OutcomeRejected:
		if err := bk.Reject(cmd.DeciderEmail, cmd.Reason, now); err != nil {
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
		h.Logger.Info("booking decided", "booking_id", bk.ID, "item_id", bk.ItemID, "outcome", cmd.Outcome)
	}

	return &DecideBookingResult{BookingID: string(bk.ID), Status: string(bk.State)}, nil
}

func (h *DecideBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[DecideBookingCommand, *DecideBookingResult] = (*DecideBookingHandler)(nil)
