package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stayhost/internal/domain/bookings"
	"stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
)

var now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func mustRange(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return dr
}

func newRoom(t *testing.T) *rooms.Room {
	t.Helper()
	room, err := rooms.New(rooms.CreateParams{ID: "room-1", Host: "host-1", Name: "Loft", Currency: "USD", BasePrice: 100, Now: now})
	require.NoError(t, err)
	return room
}

func TestResolveReturnsOneAscendingResultPerDate(t *testing.T) {
	res := NewResolver(0)
	room := newRoom(t)

	nights, err := res.Resolve(room, nil, mustRange(t, "2025-06-28", "2025-07-03"))
	require.NoError(t, err)
	require.Len(t, nights, 6)
	for i := 1; i < len(nights); i++ {
		require.Equal(t, nights[i-1].Date.AddDate(0, 0, 1), nights[i].Date)
	}
	require.Equal(t, "2025-06-28", nights[0].Date.Format(daterange.Layout))
	for _, n := range nights {
		require.True(t, n.Available)
		require.Equal(t, int64(100), n.Price.Amount)
	}
}

func TestResolveSingleDay(t *testing.T) {
	nights, err := NewResolver(0).Resolve(newRoom(t), nil, mustRange(t, "2025-06-01", "2025-06-01"))
	require.NoError(t, err)
	require.Len(t, nights, 1)
}

func TestResolveRejectsInvalidRanges(t *testing.T) {
	res := NewResolver(30)
	room := newRoom(t)

	reversed := daterange.DateRange{Start: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	_, err := res.Resolve(room, nil, reversed)
	require.ErrorIs(t, err, rooms.ErrInvalidRange)

	_, err = res.Resolve(room, nil, mustRange(t, "2025-06-01", "2025-07-15"))
	require.ErrorIs(t, err, rooms.ErrRangeTooLong)
	require.ErrorIs(t, err, rooms.ErrInvalidRange)

	_, err = res.Resolve(room, nil, mustRange(t, "2025-06-01", "2025-06-30"))
	require.NoError(t, err)
}

func TestResolveIsIdempotent(t *testing.T) {
	res := NewResolver(0)
	room := newRoom(t)
	_, err := room.AddSpecialRate("r1", mustRange(t, "2025-06-02", "2025-06-04"), rooms.Percent(-15), now)
	require.NoError(t, err)
	booked := []bookings.Booking{{ID: "b", RoomID: room.ID, Range: mustRange(t, "2025-06-05", "2025-06-06"), Status: bookings.StatusUpcoming}}
	dr := mustRange(t, "2025-06-01", "2025-06-10")

	first, err := res.Resolve(room, booked, dr)
	require.NoError(t, err)
	second, err := res.Resolve(room, booked, dr)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestResolveExample(t *testing.T) {
	res := NewResolver(0)
	room := newRoom(t)
	_, err := room.AddSpecialRate("r1", mustRange(t, "2025-06-01", "2025-06-05"), rooms.Override(80), now)
	require.NoError(t, err)
	_, err = room.BlockDates("b1", mustRange(t, "2025-06-03", "2025-06-03"), "", nil, now)
	require.NoError(t, err)

	nights, err := res.Resolve(room, nil, mustRange(t, "2025-06-01", "2025-06-05"))
	require.NoError(t, err)
	require.Len(t, nights, 5)
	for _, n := range nights {
		require.Equal(t, int64(80), n.Price.Amount)
		require.Equal(t, "r1", n.RateID)
		if n.Date.Day() == 3 {
			require.False(t, n.Available)
			require.Equal(t, CauseBlocked, n.Cause)
		} else {
			require.True(t, n.Available, n.Date.Format(daterange.Layout))
		}
	}
}

func TestResolveMostRecentRateWins(t *testing.T) {
	res := NewResolver(0)
	room := newRoom(t)
	_, err := room.AddSpecialRate("old", mustRange(t, "2025-06-01", "2025-06-10"), rooms.Override(90), now)
	require.NoError(t, err)
	_, err = room.AddSpecialRate("new", mustRange(t, "2025-06-05", "2025-06-15"), rooms.Override(120), now)
	require.NoError(t, err)

	nights, err := res.Resolve(room, nil, mustRange(t, "2025-06-04", "2025-06-16"))
	require.NoError(t, err)
	require.Equal(t, int64(90), nights[0].Price.Amount)
	require.Equal(t, int64(120), nights[1].Price.Amount)
	require.Equal(t, int64(120), nights[11].Price.Amount)
	require.Equal(t, int64(100), nights[12].Price.Amount)
}

func TestResolveIgnoresCancelledAndForeignBookings(t *testing.T) {
	res := NewResolver(0)
	room := newRoom(t)
	booked := []bookings.Booking{
		{ID: "a", RoomID: room.ID, Range: mustRange(t, "2025-06-02", "2025-06-03"), Status: bookings.StatusOngoing},
		{ID: "b", RoomID: room.ID, Range: mustRange(t, "2025-06-05", "2025-06-06"), Status: bookings.StatusCancelled},
		{ID: "c", RoomID: "room-2", Range: mustRange(t, "2025-06-07", "2025-06-07"), Status: bookings.StatusUpcoming},
	}

	unavailable, err := res.UnavailableDates(room, booked, mustRange(t, "2025-06-01", "2025-06-10"))
	require.NoError(t, err)
	require.Len(t, unavailable, 2)
	require.Equal(t, CauseBooked, unavailable[0].Cause)
	require.Equal(t, "2025-06-02", unavailable[0].Date.Format(daterange.Layout))
	require.Equal(t, "2025-06-03", unavailable[1].Date.Format(daterange.Layout))
}

func TestBlockAndUnblockRoundTrip(t *testing.T) {
	res := NewResolver(0)
	room := newRoom(t)
	_, err := room.BlockDates("b1", mustRange(t, "2025-06-01", "2025-06-10"), "", nil, now)
	require.NoError(t, err)
	require.NoError(t, room.UnblockDates(mustRange(t, "2025-06-04", "2025-06-05"), func() string { return "b2" }, now))

	nights, err := res.Resolve(room, nil, mustRange(t, "2025-06-01", "2025-06-10"))
	require.NoError(t, err)
	for _, n := range nights {
		free := n.Date.Day() == 4 || n.Date.Day() == 5
		require.Equal(t, free, n.Available, n.Date.Format(daterange.Layout))
	}
}

func TestNightsStopsEarly(t *testing.T) {
	seq, err := NewResolver(0).Nights(newRoom(t), nil, mustRange(t, "2025-01-01", "2025-12-31"))
	require.NoError(t, err)
	count := 0
	for range seq {
		count++
		if count == 3 {
			break
		}
	}
	require.Equal(t, 3, count)
}

func TestQuoteAddsFees(t *testing.T) {
	res := NewResolver(0)
	room := newRoom(t)
	cleaning, service := int64(30), int64(12)
	require.NoError(t, room.UpdatePrices(rooms.PriceUpdate{CleaningFee: &cleaning, ServiceFee: &service}, now))
	_, err := room.AddSpecialRate("r1", mustRange(t, "2025-06-02", "2025-06-02"), rooms.Override(50), now)
	require.NoError(t, err)

	q, err := res.Quote(room, nil, mustRange(t, "2025-06-01", "2025-06-03"))
	require.NoError(t, err)
	require.True(t, q.Bookable)
	require.Equal(t, 3, q.Breakdown.Nights)
	require.Equal(t, int64(250), q.Breakdown.Subtotal.Amount)
	require.Equal(t, int64(292), q.Breakdown.Total.Amount)

	booked := []bookings.Booking{{ID: "a", RoomID: room.ID, Range: mustRange(t, "2025-06-03", "2025-06-04"), Status: bookings.StatusUpcoming}}
	q, err = res.Quote(room, booked, mustRange(t, "2025-06-01", "2025-06-03"))
	require.NoError(t, err)
	require.False(t, q.Bookable)
}
