package rooms

import (
	"context"
	"errors"
	"strings"

	"stayhost/internal/app/commands"
	"stayhost/internal/app/dto"
	"stayhost/internal/app/handlers/support"
	"stayhost/internal/app/middleware"
	domainrooms "stayhost/internal/domain/rooms"
)

type CreateRoomHandler struct {
	Deps
}

func (h *CreateRoomHandler) Handle(ctx context.Context, cmd CreateRoomCommand) (*dto.Room, error) {
	unit, err := support.CurrentUnit(ctx)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(cmd.RoomID)
	if id == "" {
		id = h.newID()
	} else if _, err := unit.Rooms().ByID(ctx, domainrooms.RoomID(id)); err == nil {
		return nil, domainrooms.ErrRoomExists
	} else if !errors.Is(err, domainrooms.ErrNotFound) {
		return nil, err
	}

	room, err := domainrooms.New(domainrooms.CreateParams{
		ID:          domainrooms.RoomID(id),
		Host:        domainrooms.HostID(cmd.HostID),
		Name:        cmd.Name,
		Currency:    cmd.Currency,
		BasePrice:   cmd.BasePrice,
		CleaningFee: cmd.CleaningFee,
		ServiceFee:  cmd.ServiceFee,
		Now:         h.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := h.persist(ctx, unit, room); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "room created", "room_id", room.ID, "host_id", room.Host)
	result := dto.MapRoom(room)
	return &result, nil
}

type DeleteRoomHandler struct {
	Deps
}

// Handle removes the room together with its special rates and blocks.
func (h *DeleteRoomHandler) Handle(ctx context.Context, cmd DeleteRoomCommand) (*dto.Deleted, error) {
	unit, err := support.CurrentUnit(ctx)
	if err != nil {
		return nil, err
	}
	room, err := loadOwned(ctx, unit, cmd.RoomID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	room.MarkDeleted(h.now())
	if err := unit.Rooms().Delete(ctx, room.ID); err != nil {
		return nil, err
	}
	if err := recordEvents(ctx, unit, h.encoder(), room); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "room deleted", "room_id", room.ID)
	return &dto.Deleted{ID: string(room.ID), Deleted: true}, nil
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

var _ commands.Handler[CreateRoomCommand, *dto.Room] = (*CreateRoomHandler)(nil)
var _ commands.Handler[DeleteRoomCommand, *dto.Deleted] = (*DeleteRoomHandler)(nil)
var _ middleware.IdempotentCommand = CreateRoomCommand{}
var _ middleware.RoomScoped = DeleteRoomCommand{}
