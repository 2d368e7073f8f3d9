package rooms

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stayhost/internal/domain/shared/daterange"
)

var now = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

func newRoom(t *testing.T) *Room {
	t.Helper()
	room, err := New(CreateParams{
		ID:        "room-1",
		Host:      "host-1",
		Name:      "Sea view double",
		Currency:  "usd",
		BasePrice: 10000,
		Now:       now,
	})
	require.NoError(t, err)
	room.ClearEvents()
	return room
}

func dr(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	r, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return r
}

func date(raw string) time.Time {
	d, err := daterange.ParseDay(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestNewValidatesInput(t *testing.T) {
	_, err := New(CreateParams{ID: "r", Host: "h", Name: " ", Currency: "USD"})
	require.ErrorIs(t, err, ErrNameRequired)
	require.ErrorIs(t, err, ErrInvalid)

	_, err = New(CreateParams{ID: "r", Host: "h", Name: "n", Currency: "USD", BasePrice: -1})
	require.ErrorIs(t, err, ErrNegativePrice)

	room, err := New(CreateParams{ID: "r", Host: "h", Name: "n", Currency: "eur", BasePrice: 5000, CleaningFee: 700, Now: now})
	require.NoError(t, err)
	require.Equal(t, "EUR", room.CleaningFee.Currency)
	require.Len(t, room.PendingEvents(), 1)
	require.Equal(t, "room.created", room.PendingEvents()[0].EventName())
}

func TestSpecialRateOverridesBasePrice(t *testing.T) {
	room := newRoom(t)
	_, err := room.AddSpecialRate("rate-1", dr(t, "2025-06-01", "2025-06-05"), Override(8000), now)
	require.NoError(t, err)

	require.Equal(t, int64(8000), room.PriceOn(date("2025-06-03")).Amount)
	require.Equal(t, int64(10000), room.PriceOn(date("2025-06-06")).Amount)
	require.Equal(t, "room.special_rate_added", room.PendingEvents()[0].EventName())
}

func TestOverlappingRatesMostRecentWins(t *testing.T) {
	room := newRoom(t)
	_, err := room.AddSpecialRate("summer", dr(t, "2025-06-01", "2025-06-30"), Override(9000), now)
	require.NoError(t, err)
	_, err = room.AddSpecialRate("festival", dr(t, "2025-06-10", "2025-06-12"), Percent(50), now)
	require.NoError(t, err)

	rate, ok := room.RateFor(date("2025-06-11"))
	require.True(t, ok)
	require.Equal(t, "festival", rate.ID)
	require.Equal(t, int64(15000), room.PriceOn(date("2025-06-11")).Amount)
	require.Equal(t, int64(9000), room.PriceOn(date("2025-06-13")).Amount)

	// updating the older rate keeps its priority
	_, err = room.UpdateSpecialRate("summer", dr(t, "2025-06-01", "2025-07-31"), Override(9500), now)
	require.NoError(t, err)
	require.Equal(t, int64(15000), room.PriceOn(date("2025-06-11")).Amount)
	require.Equal(t, int64(9500), room.PriceOn(date("2025-07-15")).Amount)

	// removing the newer one falls back to the still overlapping older rate
	require.NoError(t, room.RemoveSpecialRate("festival", now))
	require.Equal(t, int64(9500), room.PriceOn(date("2025-06-11")).Amount)
}

func TestAddSpecialRateRejectsInvalidInput(t *testing.T) {
	room := newRoom(t)
	_, err := room.AddSpecialRate("r", daterange.DateRange{Start: date("2025-06-05"), End: date("2025-06-01")}, Override(100), now)
	require.ErrorIs(t, err, ErrInvalidRange)
	require.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = room.AddSpecialRate("r", dr(t, "2025-06-01", "2025-06-02"), Percent(-150), now)
	require.ErrorIs(t, err, ErrPercentRange)

	_, err = room.AddSpecialRate("r", dr(t, "2025-06-01", "2025-06-02"), PriceRule{Kind: "DISCOUNT"}, now)
	require.ErrorIs(t, err, ErrInvalidRule)
	require.Empty(t, room.SpecialRates)
	require.Zero(t, room.RateSeq)
}

func TestRemoveUnknownRateLeavesCollectionUnchanged(t *testing.T) {
	room := newRoom(t)
	_, err := room.AddSpecialRate("rate-1", dr(t, "2025-06-01", "2025-06-05"), Override(8000), now)
	require.NoError(t, err)
	before := append([]SpecialRate(nil), room.SpecialRates...)

	err = room.RemoveSpecialRate("missing", now)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, ErrRateNotFound)
	require.Equal(t, before, room.SpecialRates)

	_, err = room.UpdateSpecialRate("missing", dr(t, "2025-06-01", "2025-06-05"), Override(1), now)
	require.ErrorIs(t, err, ErrRateNotFound)
}

func TestBlockDatesRejectsActiveBookings(t *testing.T) {
	room := newRoom(t)
	occupied := []daterange.DateRange{dr(t, "2025-06-10", "2025-06-12")}

	_, err := room.BlockDates("b1", dr(t, "2025-06-12", "2025-06-14"), "", occupied, now)
	require.ErrorIs(t, err, ErrConflict)
	require.Empty(t, room.Blocks)

	_, err = room.BlockDates("b1", dr(t, "2025-06-13", "2025-06-14"), "", occupied, now)
	require.NoError(t, err)
	_, ok := room.BlockAt(date("2025-06-14"))
	require.True(t, ok)
}

func TestBlockDatesMergesOverlappingBlocks(t *testing.T) {
	room := newRoom(t)
	_, err := room.BlockDates("b1", dr(t, "2025-06-01", "2025-06-05"), "renovation", nil, now)
	require.NoError(t, err)
	_, err = room.BlockDates("b2", dr(t, "2025-06-20", "2025-06-22"), "", nil, now)
	require.NoError(t, err)

	block, err := room.BlockDates("b3", dr(t, "2025-06-04", "2025-06-08"), "", nil, now)
	require.NoError(t, err)
	require.Equal(t, dr(t, "2025-06-01", "2025-06-08"), block.Range)
	require.Equal(t, "renovation", block.Reason)
	require.Len(t, room.Blocks, 2)
	require.Equal(t, "b3", room.Blocks[0].ID)
	require.Equal(t, "b2", room.Blocks[1].ID)

	// an explicit reason replaces the absorbed one
	block, err = room.BlockDates("b4", dr(t, "2025-06-21", "2025-06-25"), "maintenance", nil, now)
	require.NoError(t, err)
	require.Equal(t, dr(t, "2025-06-20", "2025-06-25"), block.Range)
	require.Equal(t, "maintenance", block.Reason)
	require.Len(t, room.Blocks, 2)
}

func TestUnblockSubRangeKeepsRemainderBlocked(t *testing.T) {
	room := newRoom(t)
	_, err := room.BlockDates("b1", dr(t, "2025-06-01", "2025-06-10"), "owner stay", nil, now)
	require.NoError(t, err)

	require.NoError(t, room.UnblockDates(dr(t, "2025-06-04", "2025-06-06"), sequentialIDs("split"), now))

	require.Len(t, room.Blocks, 2)
	require.Equal(t, BlockedRange{ID: "b1", Range: dr(t, "2025-06-01", "2025-06-03"), Reason: "owner stay", CreatedAt: now}, room.Blocks[0])
	require.Equal(t, BlockedRange{ID: "split-1", Range: dr(t, "2025-06-07", "2025-06-10"), Reason: "owner stay", CreatedAt: now}, room.Blocks[1])

	for d := range dr(t, "2025-06-04", "2025-06-06").Days() {
		_, blocked := room.BlockAt(d)
		require.False(t, blocked, d.Format(daterange.Layout))
	}
	_, blocked := room.BlockAt(date("2025-06-03"))
	require.True(t, blocked)
}

func TestUnblockWithoutIntersectionFails(t *testing.T) {
	room := newRoom(t)
	_, err := room.BlockDates("b1", dr(t, "2025-06-01", "2025-06-03"), "", nil, now)
	require.NoError(t, err)

	err = room.UnblockDates(dr(t, "2025-07-01", "2025-07-03"), sequentialIDs("x"), now)
	require.ErrorIs(t, err, ErrBlockNotFound)
	require.Len(t, room.Blocks, 1)

	require.NoError(t, room.UnblockDates(dr(t, "2025-05-01", "2025-06-30"), sequentialIDs("x"), now))
	require.Empty(t, room.Blocks)
}

func TestUpdatePrices(t *testing.T) {
	room := newRoom(t)
	base, fee := int64(12000), int64(2500)

	require.NoError(t, room.UpdatePrices(PriceUpdate{BasePrice: &base, CleaningFee: &fee}, now))
	require.Equal(t, int64(12000), room.BasePrice.Amount)
	require.Equal(t, int64(2500), room.CleaningFee.Amount)
	require.Zero(t, room.ServiceFee.Amount)

	negative := int64(-1)
	require.ErrorIs(t, room.UpdatePrices(PriceUpdate{ServiceFee: &negative}, now), ErrNegativePrice)
	require.ErrorIs(t, room.UpdatePrices(PriceUpdate{}, now), ErrEmptyPriceUpdate)
	require.Equal(t, int64(12000), room.BasePrice.Amount)
}

func TestCloneIsIndependent(t *testing.T) {
	room := newRoom(t)
	_, err := room.AddSpecialRate("rate-1", dr(t, "2025-06-01", "2025-06-05"), Override(8000), now)
	require.NoError(t, err)

	clone := room.Clone()
	require.Empty(t, clone.PendingEvents())
	require.NoError(t, clone.RemoveSpecialRate("rate-1", now))
	require.Len(t, room.SpecialRates, 1)
}
