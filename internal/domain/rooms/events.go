package rooms

import (
	"time"

	"stayhost/internal/domain/shared/daterange"
)

type RoomCreated struct {
	RoomID    string    `json:"room_id"`
	HostID    string    `json:"host_id"`
	BasePrice int64     `json:"base_price"`
	Currency  string    `json:"currency"`
	At        time.Time `json:"at"`
}

func (e RoomCreated) EventName() string     { return "room.created" }
func (e RoomCreated) AggregateID() string   { return e.RoomID }
func (e RoomCreated) OccurredAt() time.Time { return e.At }

type RoomDeleted struct {
	RoomID       string    `json:"room_id"`
	SpecialRates int       `json:"special_rates"`
	Blocks       int       `json:"blocks"`
	At           time.Time `json:"at"`
}

func (e RoomDeleted) EventName() string     { return "room.deleted" }
func (e RoomDeleted) AggregateID() string   { return e.RoomID }
func (e RoomDeleted) OccurredAt() time.Time { return e.At }

type SpecialRateAdded struct {
	RoomID   string              `json:"room_id"`
	RateID   string              `json:"rate_id"`
	Range    daterange.DateRange `json:"range"`
	Rule     PriceRule           `json:"rule"`
	Priority int64               `json:"priority"`
	At       time.Time           `json:"at"`
}

func (e SpecialRateAdded) EventName() string     { return "room.special_rate_added" }
func (e SpecialRateAdded) AggregateID() string   { return e.RoomID }
func (e SpecialRateAdded) OccurredAt() time.Time { return e.At }

type SpecialRateUpdated struct {
	RoomID string              `json:"room_id"`
	RateID string              `json:"rate_id"`
	Range  daterange.DateRange `json:"range"`
	Rule   PriceRule           `json:"rule"`
	At     time.Time           `json:"at"`
}

func (e SpecialRateUpdated) EventName() string     { return "room.special_rate_updated" }
func (e SpecialRateUpdated) AggregateID() string   { return e.RoomID }
func (e SpecialRateUpdated) OccurredAt() time.Time { return e.At }

type SpecialRateRemoved struct {
	RoomID string              `json:"room_id"`
	RateID string              `json:"rate_id"`
	Range  daterange.DateRange `json:"range"`
	At     time.Time           `json:"at"`
}

func (e SpecialRateRemoved) EventName() string     { return "room.special_rate_removed" }
func (e SpecialRateRemoved) AggregateID() string   { return e.RoomID }
func (e SpecialRateRemoved) OccurredAt() time.Time { return e.At }

type DatesBlocked struct {
	RoomID    string              `json:"room_id"`
	BlockID   string              `json:"block_id"`
	Requested daterange.DateRange `json:"requested"`
	Range     daterange.DateRange `json:"range"`
	Reason    string              `json:"reason,omitempty"`
	Absorbed  []string            `json:"absorbed,omitempty"`
	At        time.Time           `json:"at"`
}

func (e DatesBlocked) EventName() string     { return "room.dates_blocked" }
func (e DatesBlocked) AggregateID() string   { return e.RoomID }
func (e DatesBlocked) OccurredAt() time.Time { return e.At }

type DatesUnblocked struct {
	RoomID   string              `json:"room_id"`
	Range    daterange.DateRange `json:"range"`
	Affected []string            `json:"affected"`
	At       time.Time           `json:"at"`
}

func (e DatesUnblocked) EventName() string     { return "room.dates_unblocked" }
func (e DatesUnblocked) AggregateID() string   { return e.RoomID }
func (e DatesUnblocked) OccurredAt() time.Time { return e.At }

type PricesUpdated struct {
	RoomID      string    `json:"room_id"`
	BasePrice   int64     `json:"base_price"`
	CleaningFee int64     `json:"cleaning_fee"`
	ServiceFee  int64     `json:"service_fee"`
	Currency    string    `json:"currency"`
	At          time.Time `json:"at"`
}

func (e PricesUpdated) EventName() string     { return "room.prices_updated" }
func (e PricesUpdated) AggregateID() string   { return e.RoomID }
func (e PricesUpdated) OccurredAt() time.Time { return e.At }
