package ginserver

import (
	"errors"
	"net/http"

	"stayhost/internal/app/commands"
	roomsapp "stayhost/internal/app/handlers/rooms"
	"stayhost/internal/app/policies"
	"stayhost/internal/app/queries"
	"stayhost/internal/domain/rooms"
)

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, rooms.ErrInvalidRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, rooms.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, rooms.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, rooms.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, rooms.ErrConflict), errors.Is(err, policies.ErrLockNotAcquired):
		return http.StatusConflict
	case errors.Is(err, roomsapp.ErrExporterUnavailable),
		errors.Is(err, commands.ErrHandlerNotFound),
		errors.Is(err, queries.ErrHandlerNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
