package rooms

import (
	"slices"
	"time"

	"stayhost/internal/domain/shared/daterange"
)

// BlockedRange marks dates as unbookable by the host, independently of bookings.
type BlockedRange struct {
	ID        string
	Range     daterange.DateRange
	Reason    string
	CreatedAt time.Time
}

// BlockAt returns the block covering day, if any.
func (r *Room) BlockAt(day time.Time) (BlockedRange, bool) {
	for _, b := range r.Blocks {
		if b.Range.ContainsDate(day) {
			return b, true
		}
	}
	return BlockedRange{}, false
}

// BlockDates blocks dr. occupied lists the ranges of active bookings; blocking over any of them
// fails with ErrBookedNights. Existing blocks overlapping dr are folded into the new one.
func (r *Room) BlockDates(id string, dr daterange.DateRange, reason string, occupied []daterange.DateRange, now time.Time) (BlockedRange, error) {
	if id == "" {
		return BlockedRange{}, ErrIDRequired
	}
	if err := dr.Validate(); err != nil {
		return BlockedRange{}, invalidRange(err)
	}
	for _, o := range occupied {
		if o.Overlaps(dr) {
			return BlockedRange{}, ErrBookedNights
		}
	}

	merged := dr
	var (
		kept     []BlockedRange
		absorbed []string
	)
	for _, b := range r.Blocks {
		if !b.Range.Overlaps(dr) {
			kept = append(kept, b)
			continue
		}
		merged, _ = merged.Merge(b.Range)
		absorbed = append(absorbed, b.ID)
		// an empty reason inherits the first absorbed block's
		if reason == "" {
			reason = b.Reason
		}
	}

	block := BlockedRange{ID: id, Range: merged, Reason: reason, CreatedAt: now.UTC()}
	r.Blocks = append(kept, block)
	r.sortBlocks()
	r.touch(now)
	r.Record(DatesBlocked{RoomID: string(r.ID), BlockID: id, Requested: dr, Range: merged, Reason: reason, Absorbed: absorbed, At: now.UTC()})
	return block, nil
}

// UnblockDates releases dr. Blocks only partially covered by dr are split so their remainder
// stays blocked; newID names the second piece when a block is cut in two.
func (r *Room) UnblockDates(dr daterange.DateRange, newID func() string, now time.Time) error {
	if err := dr.Validate(); err != nil {
		return invalidRange(err)
	}
	var (
		kept     []BlockedRange
		released []string
	)
	for _, b := range r.Blocks {
		if !b.Range.Overlaps(dr) {
			kept = append(kept, b)
			continue
		}
		released = append(released, b.ID)
		for i, part := range b.Range.Subtract(dr) {
			piece := b
			piece.Range = part
			if i > 0 {
				piece.ID = newID()
			}
			kept = append(kept, piece)
		}
	}
	if len(released) == 0 {
		return ErrBlockNotFound
	}
	r.Blocks = kept
	r.sortBlocks()
	r.touch(now)
	r.Record(DatesUnblocked{RoomID: string(r.ID), Range: dr, Affected: released, At: now.UTC()})
	return nil
}

func (r *Room) sortBlocks() {
	slices.SortFunc(r.Blocks, func(a, b BlockedRange) int {
		return a.Range.Start.Compare(b.Range.Start)
	})
}
