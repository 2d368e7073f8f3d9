package rooms

import (
	"slices"
	"time"

	"stayhost/internal/domain/shared/daterange"
	"stayhost/internal/domain/shared/money"
)

type RuleKind string

const (
	RuleOverride RuleKind = "OVERRIDE"
	RulePercent  RuleKind = "PERCENT"
)

const (
	minPercent = -100
	maxPercent = 1000
)

// PriceRule describes how a special rate derives the nightly price from the base price.
type PriceRule struct {
	Kind    RuleKind `json:"kind"`
	Amount  int64    `json:"amount,omitempty"`
	Percent int64    `json:"percent,omitempty"`
}

func Override(amount int64) PriceRule {
	return PriceRule{Kind: RuleOverride, Amount: amount}
}

func Percent(pct int64) PriceRule {
	return PriceRule{Kind: RulePercent, Percent: pct}
}

func (r PriceRule) Validate() error {
	switch r.Kind {
	case RuleOverride:
		if r.Amount < 0 {
			return ErrNegativePrice
		}
	case RulePercent:
		if r.Percent < minPercent || r.Percent > maxPercent {
			return ErrPercentRange
		}
	default:
		return ErrInvalidRule
	}
	return nil
}

// Apply returns the nightly price for base under this rule.
func (r PriceRule) Apply(base money.Money) money.Money {
	if r.Kind == RuleOverride {
		return money.Money{Amount: r.Amount, Currency: base.Currency}
	}
	return base.AdjustPercent(r.Percent)
}

// SpecialRate overrides the base price on every date of Range.
// Priority grows with creation order; on overlap the highest priority wins.
type SpecialRate struct {
	ID        string
	Range     daterange.DateRange
	Rule      PriceRule
	Priority  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RateFor returns the special rate that prices day, if any.
func (r *Room) RateFor(day time.Time) (SpecialRate, bool) {
	var (
		best  SpecialRate
		found bool
	)
	for _, rate := range r.SpecialRates {
		if !rate.Range.ContainsDate(day) {
			continue
		}
		if !found || rate.Priority > best.Priority {
			best = rate
			found = true
		}
	}
	return best, found
}

// PriceOn is the nightly price for day after special rates are applied.
func (r *Room) PriceOn(day time.Time) money.Money {
	if rate, ok := r.RateFor(day); ok {
		return rate.Rule.Apply(r.BasePrice)
	}
	return r.BasePrice
}

func (r *Room) AddSpecialRate(id string, dr daterange.DateRange, rule PriceRule, now time.Time) (SpecialRate, error) {
	if id == "" {
		return SpecialRate{}, ErrIDRequired
	}
	if err := dr.Validate(); err != nil {
		return SpecialRate{}, invalidRange(err)
	}
	if err := rule.Validate(); err != nil {
		return SpecialRate{}, err
	}
	r.RateSeq++
	rate := SpecialRate{
		ID:        id,
		Range:     dr,
		Rule:      rule,
		Priority:  r.RateSeq,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	r.SpecialRates = append(slices.Clip(r.SpecialRates), rate)
	r.touch(now)
	r.Record(SpecialRateAdded{RoomID: string(r.ID), RateID: id, Range: dr, Rule: rule, Priority: rate.Priority, At: now.UTC()})
	return rate, nil
}

// UpdateSpecialRate replaces the range and rule of an existing rate. Its priority is kept.
func (r *Room) UpdateSpecialRate(id string, dr daterange.DateRange, rule PriceRule, now time.Time) (SpecialRate, error) {
	idx := r.rateIndex(id)
	if idx == -1 {
		return SpecialRate{}, ErrRateNotFound
	}
	if err := dr.Validate(); err != nil {
		return SpecialRate{}, invalidRange(err)
	}
	if err := rule.Validate(); err != nil {
		return SpecialRate{}, err
	}
	rate := r.SpecialRates[idx]
	rate.Range = dr
	rate.Rule = rule
	rate.UpdatedAt = now.UTC()
	r.SpecialRates = slices.Clone(r.SpecialRates)
	r.SpecialRates[idx] = rate
	r.touch(now)
	r.Record(SpecialRateUpdated{RoomID: string(r.ID), RateID: id, Range: dr, Rule: rule, At: now.UTC()})
	return rate, nil
}

func (r *Room) RemoveSpecialRate(id string, now time.Time) error {
	idx := r.rateIndex(id)
	if idx == -1 {
		return ErrRateNotFound
	}
	removed := r.SpecialRates[idx]
	r.SpecialRates = append(r.SpecialRates[:idx:idx], r.SpecialRates[idx+1:]...)
	r.touch(now)
	r.Record(SpecialRateRemoved{RoomID: string(r.ID), RateID: id, Range: removed.Range, At: now.UTC()})
	return nil
}

func (r *Room) rateIndex(id string) int {
	for i, rate := range r.SpecialRates {
		if rate.ID == id {
			return i
		}
	}
	return -1
}
