package dto

import (
	"time"

	"stayhost/internal/domain/availability"
	"stayhost/internal/domain/pricing"
	"stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
)

type PriceRule struct {
	Kind    string `json:"kind"`
	Amount  int64  `json:"amount,omitempty"`
	Percent int64  `json:"percent,omitempty"`
}

type SpecialRate struct {
	ID        string    `json:"id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Rule      PriceRule `json:"rule"`
	Priority  int64     `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

type BlockedRange struct {
	ID        string    `json:"id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Room struct {
	ID           string         `json:"id"`
	HostID       string         `json:"host_id"`
	Name         string         `json:"name"`
	Currency     string         `json:"currency"`
	BasePrice    int64          `json:"base_price"`
	CleaningFee  int64          `json:"cleaning_fee"`
	ServiceFee   int64          `json:"service_fee"`
	SpecialRates []SpecialRate  `json:"special_rates"`
	Blocks       []BlockedRange `json:"blocks"`
	Version      int64          `json:"version"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type RoomList struct {
	Items  []Room `json:"items"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type Night struct {
	Date      string `json:"date"`
	Price     int64  `json:"price"`
	Currency  string `json:"currency"`
	Available bool   `json:"available"`
	RateID    string `json:"rate_id,omitempty"`
	Cause     string `json:"cause,omitempty"`
}

type Fee struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

type Quote struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Nights    int    `json:"nights"`
	Currency  string `json:"currency"`
	Subtotal  int64  `json:"subtotal"`
	Fees      []Fee  `json:"fees"`
	Total     int64  `json:"total"`
	Bookable  bool   `json:"bookable"`
}

// RoomDetails is the room with its resolved calendar when a range was requested.
type RoomDetails struct {
	Room   Room    `json:"room"`
	Nights []Night `json:"nights,omitempty"`
	Quote  *Quote  `json:"quote,omitempty"`
}

type Nights struct {
	RoomID    string  `json:"room_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Nights    []Night `json:"nights"`
}

type CalendarExport struct {
	RoomID    string `json:"room_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Nights    int    `json:"nights"`
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}

type Deleted struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func MapRule(rule rooms.PriceRule) PriceRule {
	return PriceRule{Kind: string(rule.Kind), Amount: rule.Amount, Percent: rule.Percent}
}

func MapSpecialRate(rate rooms.SpecialRate) SpecialRate {
	return SpecialRate{
		ID:        rate.ID,
		StartDate: formatDay(rate.Range.Start),
		EndDate:   formatDay(rate.Range.End),
		Rule:      MapRule(rate.Rule),
		Priority:  rate.Priority,
		CreatedAt: rate.CreatedAt,
	}
}

func MapBlock(block rooms.BlockedRange) BlockedRange {
	return BlockedRange{
		ID:        block.ID,
		StartDate: formatDay(block.Range.Start),
		EndDate:   formatDay(block.Range.End),
		Reason:    block.Reason,
		CreatedAt: block.CreatedAt,
	}
}

func MapRoom(room *rooms.Room) Room {
	if room == nil {
		return Room{}
	}
	out := Room{
		ID:           string(room.ID),
		HostID:       string(room.Host),
		Name:         room.Name,
		Currency:     room.BasePrice.Currency,
		BasePrice:    room.BasePrice.Amount,
		CleaningFee:  room.CleaningFee.Amount,
		ServiceFee:   room.ServiceFee.Amount,
		SpecialRates: make([]SpecialRate, 0, len(room.SpecialRates)),
		Blocks:       make([]BlockedRange, 0, len(room.Blocks)),
		Version:      room.Version,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
	for _, rate := range room.SpecialRates {
		out.SpecialRates = append(out.SpecialRates, MapSpecialRate(rate))
	}
	for _, block := range room.Blocks {
		out.Blocks = append(out.Blocks, MapBlock(block))
	}
	return out
}

func MapNight(n availability.NightResult) Night {
	return Night{
		Date:      formatDay(n.Date),
		Price:     n.Price.Amount,
		Currency:  n.Price.Currency,
		Available: n.Available,
		RateID:    n.RateID,
		Cause:     string(n.Cause),
	}
}

func MapNights(list []availability.NightResult) []Night {
	out := make([]Night, 0, len(list))
	for _, n := range list {
		out = append(out, MapNight(n))
	}
	return out
}

func MapQuote(q availability.Quote) Quote {
	b := q.Breakdown
	out := Quote{
		StartDate: formatDay(q.Range.Start),
		EndDate:   formatDay(q.Range.End),
		Nights:    b.Nights,
		Currency:  b.Total.Currency,
		Subtotal:  b.Subtotal.Amount,
		Fees:      make([]Fee, 0, len(b.Fees)),
		Total:     b.Total.Amount,
		Bookable:  q.Bookable,
	}
	for _, fee := range b.Fees {
		out.Fees = append(out.Fees, mapFee(fee))
	}
	return out
}

func mapFee(fee pricing.Fee) Fee {
	return Fee{Name: fee.Name, Amount: fee.Amount.Amount}
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(daterange.Layout)
}
