package memory

import (
	"context"
	"slices"
	"sync"

	"stayhost/internal/domain/bookings"
	domainrooms "stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
)

// BookingRepository stores the booking projection in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[string]bookings.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[string]bookings.Booking)}
}

func (r *BookingRepository) ListActive(ctx context.Context, room domainrooms.RoomID, dr daterange.DateRange) ([]bookings.Booking, error) {
	r.mu.RLock()
	all := make([]bookings.Booking, 0, len(r.items))
	for _, b := range r.items {
		all = append(all, b)
	}
	r.mu.RUnlock()
	out := bookings.Filter(all, room, dr)
	slices.SortFunc(out, func(a, b bookings.Booking) int {
		return a.Range.Start.Compare(b.Range.Start)
	})
	return out, nil
}

// Upsert replaces the booking unless the stored copy is newer.
func (r *BookingRepository) Upsert(ctx context.Context, booking bookings.Booking) error {
	if err := booking.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[booking.ID]; ok && current.UpdatedAt.After(booking.UpdatedAt) {
		return nil
	}
	r.items[booking.ID] = booking
	return nil
}

var _ bookings.Repository = (*BookingRepository)(nil)
