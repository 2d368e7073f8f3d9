package rooms

import (
	"context"

	"stayhost/internal/app/commands"
	"stayhost/internal/app/dto"
	"stayhost/internal/app/handlers/support"
	domainrooms "stayhost/internal/domain/rooms"
)

type UpdatePricesHandler struct {
	Deps
}

func (h *UpdatePricesHandler) Handle(ctx context.Context, cmd UpdatePricesCommand) (*dto.Room, error) {
	unit, err := support.CurrentUnit(ctx)
	if err != nil {
		return nil, err
	}
	room, err := loadOwned(ctx, unit, cmd.RoomID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	update := domainrooms.PriceUpdate{
		BasePrice:   cmd.BasePrice,
		CleaningFee: cmd.CleaningFee,
		ServiceFee:  cmd.ServiceFee,
	}
	if err := room.UpdatePrices(update, h.now()); err != nil {
		return nil, err
	}
	if err := h.persist(ctx, unit, room); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "room prices updated", "room_id", room.ID, "base_price", room.BasePrice.Amount)
	result := dto.MapRoom(room)
	return &result, nil
}

var _ commands.Handler[UpdatePricesCommand, *dto.Room] = (*UpdatePricesHandler)(nil)
