package rooms

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrInvalidRange = errors.New("rooms: invalid date range")
	ErrNotFound     = errors.New("rooms: not found")
	ErrConflict     = errors.New("rooms: conflict")
	ErrInvalid      = errors.New("rooms: invalid input")
	ErrForbidden    = errors.New("rooms: forbidden")
)

var (
	ErrRoomNotFound     = fmt.Errorf("%w: room", ErrNotFound)
	ErrRateNotFound     = fmt.Errorf("%w: special rate", ErrNotFound)
	ErrBlockNotFound    = fmt.Errorf("%w: no blocked range intersects the requested dates", ErrNotFound)
	ErrBookedNights     = fmt.Errorf("%w: range overlaps an active booking", ErrConflict)
	ErrConcurrentUpdate = fmt.Errorf("%w: room was modified concurrently", ErrConflict)
	ErrRoomExists       = fmt.Errorf("%w: room already exists", ErrConflict)
	ErrRangeTooLong     = fmt.Errorf("%w: range exceeds the maximum span", ErrInvalidRange)
	ErrNegativePrice    = fmt.Errorf("%w: prices must be non-negative", ErrInvalid)
	ErrEmptyPriceUpdate = fmt.Errorf("%w: at least one price must be provided", ErrInvalid)
	ErrInvalidRule      = fmt.Errorf("%w: unsupported price rule", ErrInvalid)
	ErrPercentRange     = fmt.Errorf("%w: percent adjustment must be between -100 and 1000", ErrInvalid)
	ErrNameRequired     = fmt.Errorf("%w: room name is required", ErrInvalid)
	ErrHostRequired     = fmt.Errorf("%w: host is required", ErrInvalid)
	ErrIDRequired       = fmt.Errorf("%w: id is required", ErrInvalid)
	ErrNotOwner         = fmt.Errorf("%w: room belongs to another host", ErrForbidden)
)

func invalidRange(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidRange, err)
}
