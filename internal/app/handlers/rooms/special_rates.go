package rooms

import (
	"context"

	"stayhost/internal/app/commands"
	"stayhost/internal/app/dto"
	"stayhost/internal/app/handlers/support"
)

type AddSpecialRateHandler struct {
	Deps
}

// Handle appends a rate. Overlap with existing rates is allowed; the newest rate prices shared nights.
func (h *AddSpecialRateHandler) Handle(ctx context.Context, cmd AddSpecialRateCommand) (*dto.Room, error) {
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
	rate, err := room.AddSpecialRate(h.newID(), dr, cmd.rule(), h.now())
	if err != nil {
		return nil, err
	}
	if err := h.persist(ctx, unit, room); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "special rate added", "room_id", room.ID, "rate_id", rate.ID, "range", dr.String())
	result := dto.MapRoom(room)
	return &result, nil
}

type UpdateSpecialRateHandler struct {
	Deps
}

func (h *UpdateSpecialRateHandler) Handle(ctx context.Context, cmd UpdateSpecialRateCommand) (*dto.Room, error) {
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
	if _, err := room.UpdateSpecialRate(cmd.RateID, dr, cmd.rule(), h.now()); err != nil {
		return nil, err
	}
	if err := h.persist(ctx, unit, room); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "special rate updated", "room_id", room.ID, "rate_id", cmd.RateID)
	result := dto.MapRoom(room)
	return &result, nil
}

type RemoveSpecialRateHandler struct {
	Deps
}

func (h *RemoveSpecialRateHandler) Handle(ctx context.Context, cmd RemoveSpecialRateCommand) (*dto.Room, error) {
	unit, err := support.CurrentUnit(ctx)
	if err != nil {
		return nil, err
	}
	room, err := loadOwned(ctx, unit, cmd.RoomID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	if err := room.RemoveSpecialRate(cmd.RateID, h.now()); err != nil {
		return nil, err
	}
	if err := h.persist(ctx, unit, room); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "special rate removed", "room_id", room.ID, "rate_id", cmd.RateID)
	result := dto.MapRoom(room)
	return &result, nil
}

var _ commands.Handler[AddSpecialRateCommand, *dto.Room] = (*AddSpecialRateHandler)(nil)
var _ commands.Handler[UpdateSpecialRateCommand, *dto.Room] = (*UpdateSpecialRateHandler)(nil)
var _ commands.Handler[RemoveSpecialRateCommand, *dto.Room] = (*RemoveSpecialRateHandler)(nil)
