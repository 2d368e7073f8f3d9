package availability

import (
	"fmt"
	"iter"
	"time"

	"stayhost/internal/domain/bookings"
	"stayhost/internal/domain/pricing"
	"stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
	"stayhost/internal/domain/shared/money"
)

// DefaultMaxNights bounds a single resolve call.
const DefaultMaxNights = 366

type Cause string

const (
	CauseBlocked Cause = "BLOCKED"
	CauseBooked  Cause = "BOOKED"
)

// NightResult is the resolved price and availability of one calendar date.
type NightResult struct {
	Date      time.Time
	Price     money.Money
	Available bool
	RateID    string
	Cause     Cause
}

// Resolver derives per-night results from a room and the bookings touching it.
// It holds no state besides its limit and never mutates its inputs.
type Resolver struct {
	MaxNights int
}

func NewResolver(maxNights int) Resolver {
	if maxNights <= 0 {
		maxNights = DefaultMaxNights
	}
	return Resolver{MaxNights: maxNights}
}

// Check validates dr against the resolver limits.
func (r Resolver) Check(dr daterange.DateRange) error {
	if err := dr.Validate(); err != nil {
		return fmt.Errorf("%w: %w", rooms.ErrInvalidRange, err)
	}
	limit := r.MaxNights
	if limit <= 0 {
		limit = DefaultMaxNights
	}
	if dr.Nights() > limit {
		return fmt.Errorf("%w: %d nights requested, at most %d allowed", rooms.ErrRangeTooLong, dr.Nights(), limit)
	}
	return nil
}

// Nights lazily yields one result per date of dr in ascending order.
func (r Resolver) Nights(room *rooms.Room, booked []bookings.Booking, dr daterange.DateRange) (iter.Seq[NightResult], error) {
	if err := r.Check(dr); err != nil {
		return nil, err
	}
	var occupied []daterange.DateRange
	for _, b := range booked {
		if b.Active() && b.RoomID == room.ID && b.Range.Overlaps(dr) {
			occupied = append(occupied, b.Range)
		}
	}
	return func(yield func(NightResult) bool) {
		for day := range dr.Days() {
			if !yield(resolveNight(room, occupied, day)) {
				return
			}
		}
	}, nil
}

func (r Resolver) Resolve(room *rooms.Room, booked []bookings.Booking, dr daterange.DateRange) ([]NightResult, error) {
	seq, err := r.Nights(room, booked, dr)
	if err != nil {
		return nil, err
	}
	out := make([]NightResult, 0, dr.Nights())
	for night := range seq {
		out = append(out, night)
	}
	return out, nil
}

// UnavailableDates returns only the nights of dr that cannot be booked.
func (r Resolver) UnavailableDates(room *rooms.Room, booked []bookings.Booking, dr daterange.DateRange) ([]NightResult, error) {
	seq, err := r.Nights(room, booked, dr)
	if err != nil {
		return nil, err
	}
	var out []NightResult
	for night := range seq {
		if !night.Available {
			out = append(out, night)
		}
	}
	return out, nil
}

// Quote prices a stay over dr: nightly prices plus the room fees.
type Quote struct {
	Range     daterange.DateRange
	Nights    []NightResult
	Breakdown pricing.PriceBreakdown
	Bookable  bool
}

func (r Resolver) Quote(room *rooms.Room, booked []bookings.Booking, dr daterange.DateRange) (Quote, error) {
	nights, err := r.Resolve(room, booked, dr)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{Range: dr, Nights: nights, Bookable: true}
	for _, night := range nights {
		if err := q.Breakdown.AddNight(night.Price); err != nil {
			return Quote{}, err
		}
		q.Bookable = q.Bookable && night.Available
	}
	q.Breakdown.AddFee(pricing.FeeCleaning, room.CleaningFee)
	q.Breakdown.AddFee(pricing.FeeService, room.ServiceFee)
	if err := q.Breakdown.RecalculateTotal(); err != nil {
		return Quote{}, err
	}
	return q, nil
}

func resolveNight(room *rooms.Room, occupied []daterange.DateRange, day time.Time) NightResult {
	night := NightResult{Date: day, Price: room.BasePrice, Available: true}
	if rate, ok := room.RateFor(day); ok {
		night.Price = rate.Rule.Apply(room.BasePrice)
		night.RateID = rate.ID
	}
	if _, ok := room.BlockAt(day); ok {
		night.Available = false
		night.Cause = CauseBlocked
		return night
	}
	for _, o := range occupied {
		if o.ContainsDate(day) {
			night.Available = false
			night.Cause = CauseBooked
			break
		}
	}
	return night
}
