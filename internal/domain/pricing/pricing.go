package pricing

import (
	"errors"

	"stayhost/internal/domain/shared/money"
)

var (
	ErrNegativeComponent = errors.New("pricing: components cannot be negative")
	ErrCurrencyUnset     = errors.New("pricing: currency must be defined")
	ErrNoNights          = errors.New("pricing: nights must be positive")
)

const (
	FeeCleaning = "cleaning_fee"
	FeeService  = "service_fee"
)

type Fee struct {
	Name   string
	Amount money.Money
}

// PriceBreakdown totals a stay. Subtotal is the sum of the resolved nightly prices,
// which may differ night to night.
type PriceBreakdown struct {
	Nights   int
	Subtotal money.Money
	Fees     []Fee
	Total    money.Money
}

func (p *PriceBreakdown) Validate() error {
	if p.Subtotal.Currency == "" {
		return ErrCurrencyUnset
	}
	if p.Nights <= 0 {
		return ErrNoNights
	}
	return nil
}

func (p *PriceBreakdown) AddNight(price money.Money) error {
	if p.Subtotal.Currency == "" {
		p.Subtotal = money.Zero(price.Currency)
	}
	sum, err := p.Subtotal.Add(price)
	if err != nil {
		return err
	}
	p.Subtotal = sum
	p.Nights++
	return nil
}

// AddFee appends a fee; zero fees are skipped.
func (p *PriceBreakdown) AddFee(name string, amount money.Money) {
	if amount.IsZero() {
		return
	}
	p.Fees = append(p.Fees, Fee{Name: name, Amount: amount})
}

func (p *PriceBreakdown) RecalculateTotal() error {
	if err := p.Validate(); err != nil {
		return err
	}
	total := p.Subtotal
	for _, fee := range p.Fees {
		if fee.Amount.IsNegative() {
			return ErrNegativeComponent
		}
		res, err := total.Add(fee.Amount)
		if err != nil {
			return err
		}
		total = res
	}
	p.Total = total
	return nil
}

func (p PriceBreakdown) Copy() PriceBreakdown {
	clone := p
	clone.Fees = append([]Fee(nil), p.Fees...)
	return clone
}
