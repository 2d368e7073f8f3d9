package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayhost/internal/app/commands"
	"stayhost/internal/app/dto"
	roomsapp "stayhost/internal/app/handlers/rooms"
	"stayhost/internal/app/queries"
)

const (
	hostHeader        = "X-Host-ID"
	idempotencyHeader = "Idempotency-Key"
)

type RoomHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createRoomRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Currency    string `json:"currency"`
	BasePrice   int64  `json:"base_price"`
	CleaningFee int64  `json:"cleaning_fee"`
	ServiceFee  int64  `json:"service_fee"`
}

type rateRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Kind      string `json:"kind"`
	Amount    int64  `json:"amount"`
	Percent   int64  `json:"percent"`
}

func (r rateRequest) input() roomsapp.RateInput {
	return roomsapp.RateInput{StartDate: r.StartDate, EndDate: r.EndDate, Kind: r.Kind, Amount: r.Amount, Percent: r.Percent}
}

type rangeRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

type pricesRequest struct {
	BasePrice   *int64 `json:"base_price"`
	CleaningFee *int64 `json:"cleaning_fee"`
	ServiceFee  *int64 `json:"service_fee"`
}

func (h RoomHandler) List(c *gin.Context) {
	host := strings.TrimSpace(c.Query("host_id"))
	if host == "" {
		host = hostID(c)
	}
	query := roomsapp.ListRoomsQuery{
		HostID: host,
		Limit:  parseIntWithDefault(c.Query("limit"), 0),
		Offset: parseIntWithDefault(c.Query("offset"), 0),
	}
	result, err := queries.Ask[roomsapp.ListRoomsQuery, dto.RoomList](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) Create(c *gin.Context) {
	var req createRoomRequest
	if !h.bind(c, &req) {
		return
	}
	cmd := roomsapp.CreateRoomCommand{
		HostCommand: roomsapp.HostCommand{HostID: hostID(c), IdempotencyKeyV: c.GetHeader(idempotencyHeader)},
		RoomID:      req.ID,
		Name:        req.Name,
		Currency:    req.Currency,
		BasePrice:   req.BasePrice,
		CleaningFee: req.CleaningFee,
		ServiceFee:  req.ServiceFee,
	}
	result, err := commands.Dispatch[roomsapp.CreateRoomCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/rooms/%s", result.ID))
	c.JSON(http.StatusCreated, result)
}

func (h RoomHandler) Get(c *gin.Context) {
	query := roomsapp.GetRoomQuery{
		RoomID:    c.Param("id"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	result, err := queries.Ask[roomsapp.GetRoomQuery, dto.RoomDetails](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) Delete(c *gin.Context) {
	cmd := roomsapp.DeleteRoomCommand{RoomCommand: h.target(c)}
	result, err := commands.Dispatch[roomsapp.DeleteRoomCommand, *dto.Deleted](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) Nights(c *gin.Context) {
	result, err := queries.Ask[roomsapp.ResolveNightsQuery, dto.Nights](c.Request.Context(), h.Queries, nightsQuery(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) UnavailableDates(c *gin.Context) {
	query := roomsapp.UnavailableDatesQuery{ResolveNightsQuery: nightsQuery(c)}
	result, err := queries.Ask[roomsapp.UnavailableDatesQuery, dto.Nights](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) AddSpecialRate(c *gin.Context) {
	var req rateRequest
	if !h.bind(c, &req) {
		return
	}
	cmd := roomsapp.AddSpecialRateCommand{RoomCommand: h.target(c), RateInput: req.input()}
	result, err := commands.Dispatch[roomsapp.AddSpecialRateCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h RoomHandler) UpdateSpecialRate(c *gin.Context) {
	var req rateRequest
	if !h.bind(c, &req) {
		return
	}
	cmd := roomsapp.UpdateSpecialRateCommand{RoomCommand: h.target(c), RateID: c.Param("rateID"), RateInput: req.input()}
	result, err := commands.Dispatch[roomsapp.UpdateSpecialRateCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) RemoveSpecialRate(c *gin.Context) {
	cmd := roomsapp.RemoveSpecialRateCommand{RoomCommand: h.target(c), RateID: c.Param("rateID")}
	result, err := commands.Dispatch[roomsapp.RemoveSpecialRateCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) BlockDates(c *gin.Context) {
	var req rangeRequest
	if !h.bind(c, &req) {
		return
	}
	cmd := roomsapp.BlockDatesCommand{RoomCommand: h.target(c), StartDate: req.StartDate, EndDate: req.EndDate, Reason: req.Reason}
	result, err := commands.Dispatch[roomsapp.BlockDatesCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) UnblockDates(c *gin.Context) {
	var req rangeRequest
	if !h.bind(c, &req) {
		return
	}
	cmd := roomsapp.UnblockDatesCommand{RoomCommand: h.target(c), StartDate: req.StartDate, EndDate: req.EndDate}
	result, err := commands.Dispatch[roomsapp.UnblockDatesCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) UpdatePrices(c *gin.Context) {
	var req pricesRequest
	if !h.bind(c, &req) {
		return
	}
	cmd := roomsapp.UpdatePricesCommand{
		RoomCommand: h.target(c),
		BasePrice:   req.BasePrice,
		CleaningFee: req.CleaningFee,
		ServiceFee:  req.ServiceFee,
	}
	result, err := commands.Dispatch[roomsapp.UpdatePricesCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) ExportCalendar(c *gin.Context) {
	var req rangeRequest
	if !h.bind(c, &req) {
		return
	}
	cmd := roomsapp.ExportCalendarCommand{RoomCommand: h.target(c), StartDate: req.StartDate, EndDate: req.EndDate}
	result, err := commands.Dispatch[roomsapp.ExportCalendarCommand, *dto.CalendarExport](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h RoomHandler) target(c *gin.Context) roomsapp.RoomCommand {
	return roomsapp.ForRoom(hostID(c), c.Param("id"), c.GetHeader(idempotencyHeader))
}

func (h RoomHandler) bind(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		h.respondWithError(c, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return false
	}
	return true
}

func (h RoomHandler) handleError(c *gin.Context, err error) {
	h.respondWithError(c, statusFor(err), err)
}

func (h RoomHandler) respondWithError(c *gin.Context, status int, err error) {
	if h.Logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath(), "room_id", c.Param("id")}
		if host := hostID(c); host != "" {
			fields = append(fields, "host_id", host)
		}
		if status >= http.StatusInternalServerError {
			h.Logger.Error("room request failed", fields...)
		} else {
			h.Logger.Warn("room request rejected", fields...)
		}
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func nightsQuery(c *gin.Context) roomsapp.ResolveNightsQuery {
	return roomsapp.ResolveNightsQuery{
		RoomID:    c.Param("id"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
}

func hostID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(hostHeader))
}

func parseIntWithDefault(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

var _ RoomHTTP = RoomHandler{}
