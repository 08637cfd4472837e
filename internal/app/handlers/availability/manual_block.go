package availability

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/uow"
	domainavailability "gearshare/internal/domain/availability"
	domainitems "gearshare/internal/domain/items"
	"gearshare/internal/domain/shared/dateset"
)

const (
	addManualBlockKey = "availability.block.add"
	removeBlockKey    = "availability.block.remove"
)

type AddManualBlockCommand struct {
	ItemID     string
	OwnerEmail string
	Dates      []dateset.Date
}

func (c AddManualBlockCommand) Key() string { return addManualBlockKey }

// AddManualBlockHandler records owner-declared unavailable dates (personal
// use, maintenance). Only the item's owner may block.
type AddManualBlockHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *AddManualBlockHandler) Handle(ctx context.Context, cmd AddManualBlockCommand) (dto.Calendar, error) {
	calendar, err := mutateBlocks(ctx, cmd.ItemID, cmd.OwnerEmail, func(cal *domainavailability.Calendar, now time.Time) error {
		return cal.AddBlock(dateset.NewSet(cmd.Dates...), now)
	}, h.Outbox, h.encoder())
	if err != nil {
		return dto.Calendar{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("manual block added", "item_id", cmd.ItemID, "dates", len(cmd.Dates))
	}
	return dto.MapCalendar(calendar), nil
}

func (h *AddManualBlockHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

type RemoveBlockCommand struct {
	ItemID     string
	OwnerEmail string
	Dates      []dateset.Date
}

func (c RemoveBlockCommand) Key() string { return removeBlockKey }

// RemoveBlockHandler lifts owner blocks. Removal respects origin: dates
// covered by a confirmed booking are untouched.
type RemoveBlockHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *RemoveBlockHandler) Handle(ctx context.Context, cmd RemoveBlockCommand) (dto.Calendar, error) {
	calendar, err := mutateBlocks(ctx, cmd.ItemID, cmd.OwnerEmail, func(cal *domainavailability.Calendar, now time.Time) error {
		return cal.RemoveBlock(dateset.NewSet(cmd.Dates...), now)
	}, h.Outbox, h.encoder())
	if err != nil {
		return dto.Calendar{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("manual block removed", "item_id", cmd.ItemID, "dates", len(cmd.Dates))
	}
	return dto.MapCalendar(calendar), nil
}

func (h *RemoveBlockHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func mutateBlocks(
	ctx context.Context,
	itemID, ownerEmail string,
	mutate func(cal *domainavailability.Calendar, now time.Time) error,
	box outbox.Outbox,
	encoder outbox.EventEncoder,
) (*domainavailability.Calendar, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	item, err := unit.Items().ByID(ctx, domainitems.ItemID(strings.TrimSpace(itemID)))
	if err != nil {
		return nil, err
	}
	if !item.OwnedBy(ownerEmail) {
		return nil, domainavailability.ErrNotOwner
	}

	calendar, err := unit.Availability().Calendar(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if err := mutate(calendar, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return nil, err
	}

	pending := calendar.PendingEvents()
	calendar.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, box, encoder, pending); err != nil {
		return nil, err
	}
	return calendar, nil
}

var _ commands.Handler[AddManualBlockCommand, dto.Calendar] = (*AddManualBlockHandler)(nil)
var _ commands.Handler[RemoveBlockCommand, dto.Calendar] = (*RemoveBlockHandler)(nil)
