package rooms

import (
	"stayhost/internal/app/dto"
	domainrooms "stayhost/internal/domain/rooms"
)

const (
	createRoomKey        = "rooms.create"
	deleteRoomKey        = "rooms.delete"
	addSpecialRateKey    = "rooms.special_rates.add"
	updateSpecialRateKey = "rooms.special_rates.update"
	removeSpecialRateKey = "rooms.special_rates.remove"
	blockDatesKey        = "rooms.blocks.block"
	unblockDatesKey      = "rooms.blocks.unblock"
	updatePricesKey      = "rooms.prices.update"
	exportCalendarKey    = "rooms.calendar.export"
)

// HostCommand carries the identity and idempotency key shared by every room command.
type HostCommand struct {
	HostID          string `json:"host_id" validate:"required"`
	IdempotencyKeyV string `json:"idempotency_key" validate:"omitempty,max=128"`
}

func (c HostCommand) ActingHost() domainrooms.HostID { return domainrooms.HostID(c.HostID) }

func (c HostCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

type RoomCommand struct {
	HostCommand
	RoomID string `json:"room_id" validate:"required"`
}

func (c RoomCommand) TargetRoom() domainrooms.RoomID { return domainrooms.RoomID(c.RoomID) }

func (RoomCommand) ResultPrototype() any { return &dto.Room{} }

// ForRoom builds the shared part of a command acting on one room.
func ForRoom(host, room, idempotencyKey string) RoomCommand {
	return RoomCommand{HostCommand: HostCommand{HostID: host, IdempotencyKeyV: idempotencyKey}, RoomID: room}
}

type CreateRoomCommand struct {
	HostCommand
	RoomID      string `json:"room_id" validate:"omitempty,max=64"`
	Name        string `json:"name" validate:"required,max=200"`
	Currency    string `json:"currency" validate:"required,len=3"`
	BasePrice   int64  `json:"base_price" validate:"gte=0"`
	CleaningFee int64  `json:"cleaning_fee" validate:"gte=0"`
	ServiceFee  int64  `json:"service_fee" validate:"gte=0"`
}

func (CreateRoomCommand) Key() string { return createRoomKey }

func (CreateRoomCommand) ResultPrototype() any { return &dto.Room{} }

type DeleteRoomCommand struct {
	RoomCommand
}

func (DeleteRoomCommand) Key() string { return deleteRoomKey }

func (DeleteRoomCommand) ResultPrototype() any { return &dto.Deleted{} }

type RateInput struct {
	StartDate string `json:"start_date" validate:"required,isodate"`
	EndDate   string `json:"end_date" validate:"required,isodate"`
	Kind      string `json:"kind" validate:"required,rulekind"`
	Amount    int64  `json:"amount" validate:"gte=0"`
	Percent   int64  `json:"percent" validate:"gte=-100,lte=1000"`
}

func (in RateInput) rule() domainrooms.PriceRule {
	return domainrooms.PriceRule{Kind: domainrooms.RuleKind(upper(in.Kind)), Amount: in.Amount, Percent: in.Percent}
}

type AddSpecialRateCommand struct {
	RoomCommand
	RateInput
}

func (AddSpecialRateCommand) Key() string { return addSpecialRateKey }

type UpdateSpecialRateCommand struct {
	RoomCommand
	RateID string `json:"rate_id" validate:"required"`
	RateInput
}

func (UpdateSpecialRateCommand) Key() string { return updateSpecialRateKey }

type RemoveSpecialRateCommand struct {
	RoomCommand
	RateID string `json:"rate_id" validate:"required"`
}

func (RemoveSpecialRateCommand) Key() string { return removeSpecialRateKey }

type BlockDatesCommand struct {
	RoomCommand
	StartDate string `json:"start_date" validate:"required,isodate"`
	EndDate   string `json:"end_date" validate:"required,isodate"`
	Reason    string `json:"reason" validate:"max=500"`
}

func (BlockDatesCommand) Key() string { return blockDatesKey }

type UnblockDatesCommand struct {
	RoomCommand
	StartDate string `json:"start_date" validate:"required,isodate"`
	EndDate   string `json:"end_date" validate:"required,isodate"`
}

func (UnblockDatesCommand) Key() string { return unblockDatesKey }

// UpdatePricesCommand changes the provided prices only.
type UpdatePricesCommand struct {
	RoomCommand
	BasePrice   *int64 `json:"base_price" validate:"omitempty,gte=0"`
	CleaningFee *int64 `json:"cleaning_fee" validate:"omitempty,gte=0"`
	ServiceFee  *int64 `json:"service_fee" validate:"omitempty,gte=0"`
}

func (UpdatePricesCommand) Key() string { return updatePricesKey }

type ExportCalendarCommand struct {
	RoomCommand
	StartDate string `json:"start_date" validate:"required,isodate"`
	EndDate   string `json:"end_date" validate:"required,isodate"`
}

func (ExportCalendarCommand) Key() string { return exportCalendarKey }

func (ExportCalendarCommand) ResultPrototype() any { return &dto.CalendarExport{} }
