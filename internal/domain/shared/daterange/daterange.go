package daterange

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: start date must not be after end date")
	ErrMissingDate  = errors.New("daterange: start and end dates are required")
	ErrDateFormat   = errors.New("daterange: dates must use the YYYY-MM-DD format")
)

// Layout is the ISO-8601 calendar date format used on the wire.
const Layout = "2006-01-02"

// DateRange is an inclusive interval of calendar dates [Start, End].
// Both bounds are normalized to UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a single YYYY-MM-DD date.
func ParseDay(raw string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, raw)
	}
	return t, nil
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if start.IsZero() || end.IsZero() {
		dr = DateRange{}
	}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Parse builds a range from two YYYY-MM-DD strings.
func Parse(start, end string) (DateRange, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return DateRange{}, ErrMissingDate
	}
	s, err := ParseDay(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return DateRange{}, err
	}
	return New(s, e)
}

// Single is the one-night range containing t.
func Single(t time.Time) DateRange {
	d := Day(t)
	return DateRange{Start: d, End: d}
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrMissingDate
	}
	if dr.End.Before(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) IsZero() bool {
	return dr.Start.IsZero() && dr.End.IsZero()
}

// Nights counts the calendar dates covered, bounds included.
func (dr DateRange) Nights() int {
	if dr.End.Before(dr.Start) {
		return 0
	}
	return int(dr.End.Sub(dr.Start).Hours()/24) + 1
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.End.Before(other.Start) && !other.End.Before(dr.Start)
}

func (dr DateRange) Contains(other DateRange) bool {
	return !other.Start.Before(dr.Start) && !other.End.After(dr.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	d := Day(t)
	return !d.Before(dr.Start) && !d.After(dr.End)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.End.AddDate(0, 0, 1).Equal(other.Start) || other.End.AddDate(0, 0, 1).Equal(dr.Start)
}

func (dr DateRange) Merge(other DateRange) (DateRange, bool) {
	if !(dr.Overlaps(other) || dr.Adjacent(other)) {
		return DateRange{}, false
	}
	start := dr.Start
	if other.Start.Before(start) {
		start = other.Start
	}
	end := dr.End
	if other.End.After(end) {
		end = other.End
	}
	return DateRange{Start: start, End: end}, true
}

// Intersect returns the dates shared by both ranges.
func (dr DateRange) Intersect(other DateRange) (DateRange, bool) {
	if !dr.Overlaps(other) {
		return DateRange{}, false
	}
	start := dr.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := dr.End
	if other.End.Before(end) {
		end = other.End
	}
	return DateRange{Start: start, End: end}, true
}

// Subtract returns the parts of dr lying outside other: zero, one or two ranges in date order.
func (dr DateRange) Subtract(other DateRange) []DateRange {
	if !dr.Overlaps(other) {
		return []DateRange{dr}
	}
	var out []DateRange
	if dr.Start.Before(other.Start) {
		out = append(out, DateRange{Start: dr.Start, End: other.Start.AddDate(0, 0, -1)})
	}
	if dr.End.After(other.End) {
		out = append(out, DateRange{Start: other.End.AddDate(0, 0, 1), End: dr.End})
	}
	return out
}

// Days yields every date of the range in ascending order.
func (dr DateRange) Days() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if dr.Validate() != nil {
			return
		}
		for d := dr.Start; !d.After(dr.End); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

func (dr DateRange) String() string {
	return dr.Start.Format(Layout) + ".." + dr.End.Format(Layout)
}

type wireRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (dr DateRange) MarshalJSON() ([]byte, error) {
	if dr.IsZero() {
		return json.Marshal(wireRange{})
	}
	return json.Marshal(wireRange{Start: dr.Start.Format(Layout), End: dr.End.Format(Layout)})
}

func (dr *DateRange) UnmarshalJSON(data []byte) error {
	var w wireRange
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Start == "" && w.End == "" {
		*dr = DateRange{}
		return nil
	}
	parsed, err := Parse(w.Start, w.End)
	if err != nil {
		return err
	}
	*dr = parsed
	return nil
}
