package rooms

import (
	"context"
	"strings"

	"stayhost/internal/app/dto"
	"stayhost/internal/app/handlers/support"
	"stayhost/internal/app/queries"
	"stayhost/internal/app/uow"
	domainrooms "stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
)

const (
	getRoomKey          = "rooms.get"
	listRoomsKey        = "rooms.list"
	resolveNightsKey    = "rooms.nights"
	unavailableDatesKey = "rooms.unavailable_dates"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// GetRoomQuery returns the room; when both dates are set the nights and a quote are included.
type GetRoomQuery struct {
	RoomID    string `json:"room_id" validate:"required"`
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date" validate:"omitempty,isodate"`
}

func (GetRoomQuery) Key() string { return getRoomKey }

type ListRoomsQuery struct {
	HostID string `json:"host_id"`
	Limit  int    `json:"limit" validate:"gte=0,lte=200"`
	Offset int    `json:"offset" validate:"gte=0"`
}

func (ListRoomsQuery) Key() string { return listRoomsKey }

type ResolveNightsQuery struct {
	RoomID    string `json:"room_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required,isodate"`
	EndDate   string `json:"end_date" validate:"required,isodate"`
}

func (ResolveNightsQuery) Key() string { return resolveNightsKey }

// UnavailableDatesQuery lists only the nights that cannot be booked.
type UnavailableDatesQuery struct {
	ResolveNightsQuery
}

func (UnavailableDatesQuery) Key() string { return unavailableDatesKey }

type GetRoomHandler struct {
	Deps
	UoWFactory uow.UoWFactory
}

func (h *GetRoomHandler) Handle(ctx context.Context, q GetRoomQuery) (dto.RoomDetails, error) {
	var zero dto.RoomDetails
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	room, err := unit.Rooms().ByID(execCtx, domainrooms.RoomID(q.RoomID))
	if err != nil {
		return zero, err
	}
	details := dto.RoomDetails{Room: dto.MapRoom(room)}
	if strings.TrimSpace(q.StartDate) == "" && strings.TrimSpace(q.EndDate) == "" {
		return details, nil
	}

	dr, err := parseRange(q.StartDate, q.EndDate)
	if err != nil {
		return zero, err
	}
	active, err := activeBookings(execCtx, unit, room.ID, dr)
	if err != nil {
		return zero, err
	}
	quote, err := h.resolver().Quote(room, active, dr)
	if err != nil {
		return zero, err
	}
	h.observeNights(len(quote.Nights))
	mapped := dto.MapQuote(quote)
	details.Nights = dto.MapNights(quote.Nights)
	details.Quote = &mapped
	return details, nil
}

type ListRoomsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRoomsHandler) Handle(ctx context.Context, q ListRoomsQuery) (dto.RoomList, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RoomList{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	limit := q.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	list, err := unit.Rooms().List(execCtx, domainrooms.ListFilter{
		Host:   domainrooms.HostID(q.HostID),
		Limit:  limit,
		Offset: q.Offset,
	})
	if err != nil {
		return dto.RoomList{}, err
	}
	out := dto.RoomList{Items: make([]dto.Room, 0, len(list)), Limit: limit, Offset: q.Offset}
	for _, room := range list {
		out.Items = append(out.Items, dto.MapRoom(room))
	}
	return out, nil
}

type ResolveNightsHandler struct {
	Deps
	UoWFactory uow.UoWFactory
}

func (h *ResolveNightsHandler) Handle(ctx context.Context, q ResolveNightsQuery) (dto.Nights, error) {
	return h.resolve(ctx, q, false)
}

type UnavailableDatesHandler struct {
	ResolveNightsHandler
}

func (h *UnavailableDatesHandler) Handle(ctx context.Context, q UnavailableDatesQuery) (dto.Nights, error) {
	return h.resolve(ctx, q.ResolveNightsQuery, true)
}

func (h *ResolveNightsHandler) resolve(ctx context.Context, q ResolveNightsQuery, unavailableOnly bool) (dto.Nights, error) {
	var zero dto.Nights
	dr, err := parseRange(q.StartDate, q.EndDate)
	if err != nil {
		return zero, err
	}
	if err := h.resolver().Check(dr); err != nil {
		return zero, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	room, err := unit.Rooms().ByID(execCtx, domainrooms.RoomID(q.RoomID))
	if err != nil {
		return zero, err
	}
	active, err := activeBookings(execCtx, unit, room.ID, dr)
	if err != nil {
		return zero, err
	}
	res := h.resolver()
	resolve := res.Resolve
	if unavailableOnly {
		resolve = res.UnavailableDates
	}
	nights, err := resolve(room, active, dr)
	if err != nil {
		return zero, err
	}
	h.observeNights(dr.Nights())
	return dto.Nights{
		RoomID:    string(room.ID),
		StartDate: dr.Start.Format(daterange.Layout),
		EndDate:   dr.End.Format(daterange.Layout),
		Nights:    dto.MapNights(nights),
	}, nil
}

var _ queries.Handler[GetRoomQuery, dto.RoomDetails] = (*GetRoomHandler)(nil)
var _ queries.Handler[ListRoomsQuery, dto.RoomList] = (*ListRoomsHandler)(nil)
var _ queries.Handler[ResolveNightsQuery, dto.Nights] = (*ResolveNightsHandler)(nil)
var _ queries.Handler[UnavailableDatesQuery, dto.Nights] = (*UnavailableDatesHandler)(nil)
