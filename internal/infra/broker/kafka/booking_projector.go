package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"stayhost/internal/domain/bookings"
	"stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
	"stayhost/internal/infra/inbox"
)

// BookingEventType is the only event the projection applies; others on the topic are skipped.
const BookingEventType = "booking.upserted"

var ErrMalformedBookingEvent = errors.New("kafka: malformed booking event")

type BookingObserver interface {
	ObserveBookingEvent(outcome string)
}

// BookingProjector keeps the read-only booking projection in step with the reservation subsystem.
type BookingProjector struct {
	Bookings bookings.Repository
	Inbox    inbox.Store
	Logger   *slog.Logger
	Observer BookingObserver
}

type bookingPayload struct {
	ID            string    `json:"id"`
	RoomID        string    `json:"room_id"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Status        string    `json:"status"`
	BookingStatus string    `json:"booking_status"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// envelope accepts CloudEvents wrapped payloads as well as bare ones.
type envelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (p BookingProjector) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	outcome, err := p.apply(ctx, msg)
	if p.Observer != nil {
		p.Observer.ObserveBookingEvent(outcome)
	}
	return err
}

func (p BookingProjector) apply(ctx context.Context, msg *sarama.ConsumerMessage) (string, error) {
	eventID, eventType, raw, err := unwrap(msg)
	if err != nil {
		return "malformed", err
	}
	if eventType != "" && eventType != BookingEventType {
		return "skipped", nil
	}
	booking, err := decodeBooking(raw)
	if err != nil {
		return "malformed", err
	}
	if eventID == "" {
		eventID = booking.ID + "@" + booking.UpdatedAt.Format(time.RFC3339Nano)
	}
	if p.Inbox != nil {
		seen, err := p.Inbox.Seen(ctx, eventID)
		if err != nil {
			return "error", err
		}
		if seen {
			return "duplicate", nil
		}
	}
	if err := p.Bookings.Upsert(ctx, booking); err != nil {
		if p.Inbox != nil {
			if ferr := p.Inbox.Forget(ctx, eventID); ferr != nil {
				err = errors.Join(err, ferr)
			}
		}
		return "error", err
	}
	p.logger().Debug("booking projected", "booking_id", booking.ID, "room_id", booking.RoomID, "status", booking.Status)
	return "applied", nil
}

func unwrap(msg *sarama.ConsumerMessage) (id, typ string, data []byte, err error) {
	for _, h := range msg.Headers {
		if h != nil && string(h.Key) == "ce_type" {
			typ = strings.TrimSuffix(string(h.Value), ".v1")
		}
	}
	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return "", "", nil, fmt.Errorf("%w: %w", ErrMalformedBookingEvent, err)
	}
	if len(env.Data) == 0 {
		return "", typ, msg.Value, nil
	}
	if env.Type != "" {
		typ = strings.TrimSuffix(env.Type, ".v1")
	}
	return env.ID, typ, env.Data, nil
}

func decodeBooking(raw []byte) (bookings.Booking, error) {
	var payload bookingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return bookings.Booking{}, fmt.Errorf("%w: %w", ErrMalformedBookingEvent, err)
	}
	status := payload.Status
	if status == "" {
		status = payload.BookingStatus
	}
	parsed, err := bookings.ParseStatus(status)
	if err != nil {
		return bookings.Booking{}, fmt.Errorf("%w: %w", ErrMalformedBookingEvent, err)
	}
	dr, err := daterange.Parse(payload.StartDate, payload.EndDate)
	if err != nil {
		return bookings.Booking{}, fmt.Errorf("%w: %w", ErrMalformedBookingEvent, err)
	}
	booking := bookings.Booking{
		ID:        payload.ID,
		RoomID:    rooms.RoomID(payload.RoomID),
		Range:     dr,
		Status:    parsed,
		UpdatedAt: payload.UpdatedAt.UTC(),
	}
	if err := booking.Validate(); err != nil {
		return bookings.Booking{}, fmt.Errorf("%w: %w", ErrMalformedBookingEvent, err)
	}
	return booking, nil
}

func (p BookingProjector) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

var _ MessageHandler = BookingProjector{}
