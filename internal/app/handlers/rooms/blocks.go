package rooms

import (
	"context"

	"stayhost/internal/app/commands"
	"stayhost/internal/app/dto"
	"stayhost/internal/app/handlers/support"
	"stayhost/internal/domain/bookings"
)

type BlockDatesHandler struct {
	Deps
}

func (h *BlockDatesHandler) Handle(ctx context.Context, cmd BlockDatesCommand) (*dto.Room, error) {
	dr, err := parseRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}
	unit, err := support.CurrentUnit(ctx)
	if err != nil {
		return nil, err
	}
	room, err := loadOwned(ctx, unit, cmd.RoomID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	active, err := activeBookings(ctx, unit, room.ID, dr)
	if err != nil {
		return nil, err
	}
	block, err := room.BlockDates(h.newID(), dr, cmd.Reason, bookings.Ranges(active), h.now())
	if err != nil {
		return nil, err
	}
	if err := h.persist(ctx, unit, room); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "dates blocked", "room_id", room.ID, "block_id", block.ID, "range", block.Range.String())
	result := dto.MapRoom(room)
	return &result, nil
}

type UnblockDatesHandler struct {
	Deps
}

func (h *UnblockDatesHandler) Handle(ctx context.Context, cmd UnblockDatesCommand) (*dto.Room, error) {
	dr, err := parseRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}
	unit, err := support.CurrentUnit(ctx)
	if err != nil {
		return nil, err
	}
	room, err := loadOwned(ctx, unit, cmd.RoomID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	if err := room.UnblockDates(dr, h.newID, h.now()); err != nil {
		return nil, err
	}
	if err := h.persist(ctx, unit, room); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "dates unblocked", "room_id", room.ID, "range", dr.String())
	result := dto.MapRoom(room)
	return &result, nil
}

var _ commands.Handler[BlockDatesCommand, *dto.Room] = (*BlockDatesHandler)(nil)
var _ commands.Handler[UnblockDatesCommand, *dto.Room] = (*UnblockDatesHandler)(nil)
