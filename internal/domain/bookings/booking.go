package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
)

var (
	ErrUnknownStatus = errors.New("bookings: unknown status")
	ErrIDRequired    = errors.New("bookings: id is required")
	ErrRoomRequired  = errors.New("bookings: room id is required")
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusUpcoming, StatusOngoing, StatusCancelled, StatusCompleted:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
}

// Booking is the read-only projection of a reservation owned by the booking subsystem.
// Range covers the stay from check-in through the last night.
type Booking struct {
	ID        string
	RoomID    rooms.RoomID
	Range     daterange.DateRange
	Status    Status
	UpdatedAt time.Time
}

func (b Booking) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrIDRequired
	}
	if strings.TrimSpace(string(b.RoomID)) == "" {
		return ErrRoomRequired
	}
	if _, err := ParseStatus(string(b.Status)); err != nil {
		return err
	}
	return b.Range.Validate()
}

// Active reports whether the booking still holds its nights.
func (b Booking) Active() bool {
	return b.Status != StatusCancelled
}

type Reader interface {
	// ListActive returns the non-cancelled bookings of room intersecting dr.
	ListActive(ctx context.Context, room rooms.RoomID, dr daterange.DateRange) ([]Booking, error)
}

type Repository interface {
	Reader
	Upsert(ctx context.Context, booking Booking) error
}

// Ranges extracts the ranges of the active bookings.
func Ranges(list []Booking) []daterange.DateRange {
	out := make([]daterange.DateRange, 0, len(list))
	for _, b := range list {
		if b.Active() {
			out = append(out, b.Range)
		}
	}
	return out
}

// Filter keeps the active bookings of room intersecting dr. Stores without query support use it.
func Filter(list []Booking, room rooms.RoomID, dr daterange.DateRange) []Booking {
	var out []Booking
	for _, b := range list {
		if b.RoomID == room && b.Active() && b.Range.Overlaps(dr) {
			out = append(out, b)
		}
	}
	return out
}
