package rooms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayhost/internal/app/outbox"
	"stayhost/internal/app/uow"
	"stayhost/internal/domain/availability"
	"stayhost/internal/domain/bookings"
	domainrooms "stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
)

// Deps carries what every room handler needs besides the unit of work.
type Deps struct {
	Logger   *slog.Logger
	Now      func() time.Time
	NewID    func() string
	Encoder  outbox.EventEncoder
	Resolver availability.Resolver
	Nights   NightsObserver
}

// NightsObserver records how many nights a read resolved.
type NightsObserver interface {
	ObserveNights(n int)
}

func (d Deps) observeNights(n int) {
	if d.Nights != nil {
		d.Nights.ObserveNights(n)
	}
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}

func (d Deps) encoder() outbox.EventEncoder {
	if d.Encoder != nil {
		return d.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d Deps) resolver() availability.Resolver {
	if d.Resolver.MaxNights <= 0 {
		return availability.NewResolver(0)
	}
	return d.Resolver
}

// parseRange turns request dates into a range, reporting every failure as ErrInvalidRange.
func parseRange(start, end string) (daterange.DateRange, error) {
	dr, err := daterange.Parse(start, end)
	if err != nil {
		return daterange.DateRange{}, fmt.Errorf("%w: %w", domainrooms.ErrInvalidRange, err)
	}
	return dr, nil
}

// loadOwned fetches the room and checks that host owns it.
func loadOwned(ctx context.Context, unit uow.UnitOfWork, id, host string) (*domainrooms.Room, error) {
	room, err := unit.Rooms().ByID(ctx, domainrooms.RoomID(id))
	if err != nil {
		return nil, err
	}
	if !room.OwnedBy(domainrooms.HostID(host)) {
		return nil, domainrooms.ErrNotOwner
	}
	return room, nil
}

// persist saves the room and stages its pending events in the same unit.
func (d Deps) persist(ctx context.Context, unit uow.UnitOfWork, room *domainrooms.Room) error {
	if err := unit.Rooms().Save(ctx, room); err != nil {
		return err
	}
	return recordEvents(ctx, unit, d.encoder(), room)
}

func recordEvents(ctx context.Context, unit uow.UnitOfWork, encoder outbox.EventEncoder, room *domainrooms.Room) error {
	return outbox.RecordDomainEvents(ctx, unit.Outbox(), encoder, room.Drain())
}

func activeBookings(ctx context.Context, unit uow.UnitOfWork, id domainrooms.RoomID, dr daterange.DateRange) ([]bookings.Booking, error) {
	reader := unit.Bookings()
	if reader == nil {
		return nil, nil
	}
	return reader.ListActive(ctx, id, dr)
}
