package postgres

import (
	"time"

	domainrooms "stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
	"stayhost/internal/domain/shared/money"
)

// Dates are stored as YYYY-MM-DD text, which orders the same as the dates.
type roomModel struct {
	ID           string       `gorm:"primaryKey;size:64"`
	HostID       string       `gorm:"size:64;not null;index:idx_rooms_host_created,priority:1"`
	Name         string       `gorm:"not null"`
	Currency     string       `gorm:"size:3;not null"`
	BasePrice    int64        `gorm:"not null"`
	CleaningFee  int64        `gorm:"not null;default:0"`
	ServiceFee   int64        `gorm:"not null;default:0"`
	RateSeq      int64        `gorm:"not null;default:0"`
	Version      int64        `gorm:"not null"`
	CreatedAt    time.Time    `gorm:"autoCreateTime:false;index:idx_rooms_host_created,priority:2"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime:false"`
	SpecialRates []rateModel  `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	Blocks       []blockModel `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

func (roomModel) TableName() string { return "rooms" }

type rateModel struct {
	RoomID    string    `gorm:"primaryKey;size:64"`
	ID        string    `gorm:"primaryKey;size:64"`
	StartDate string    `gorm:"size:10;not null"`
	EndDate   string    `gorm:"size:10;not null"`
	Kind      string    `gorm:"size:16;not null"`
	Amount    int64     `gorm:"not null;default:0"`
	Percent   int64     `gorm:"not null;default:0"`
	Priority  int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (rateModel) TableName() string { return "room_special_rates" }

type blockModel struct {
	RoomID    string    `gorm:"primaryKey;size:64"`
	ID        string    `gorm:"primaryKey;size:64"`
	StartDate string    `gorm:"size:10;not null"`
	EndDate   string    `gorm:"size:10;not null"`
	Reason    string    `gorm:"size:256"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (blockModel) TableName() string { return "room_blocks" }

type bookingModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	RoomID    string    `gorm:"size:64;not null;index:idx_bookings_room_dates,priority:1"`
	StartDate string    `gorm:"size:10;not null;index:idx_bookings_room_dates,priority:2"`
	EndDate   string    `gorm:"size:10;not null;index:idx_bookings_room_dates,priority:3"`
	Status    string    `gorm:"size:16;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (bookingModel) TableName() string { return "booking_projection" }

type outboxModel struct {
	ID            string            `gorm:"primaryKey;size:64"`
	Name          string            `gorm:"size:128;not null"`
	Payload       []byte            `gorm:"not null"`
	OccurredAt    time.Time         `gorm:"not null"`
	Aggregate     string            `gorm:"size:64"`
	Headers       map[string]string `gorm:"serializer:json;type:jsonb"`
	State         string            `gorm:"size:16;not null;index:idx_outbox_due,priority:1"`
	Attempts      int               `gorm:"not null;default:0"`
	NextAttemptAt time.Time         `gorm:"not null;index:idx_outbox_due,priority:2"`
	ClaimedBy     string            `gorm:"size:64"`
	ClaimedAt     *time.Time
	SentAt        *time.Time
	LastError     string
	CreatedAt     time.Time `gorm:"autoCreateTime:false"`
}

func (outboxModel) TableName() string { return "outbox" }

type idempotencyModel struct {
	Key        string    `gorm:"primaryKey;size:255"`
	Payload    []byte    `gorm:"not null"`
	OccurredAt time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false;index"`
}

func (idempotencyModel) TableName() string { return "idempotency_keys" }

type inboxModel struct {
	EventID    string    `gorm:"primaryKey;size:255"`
	Consumer   string    `gorm:"primaryKey;size:128"`
	ReceivedAt time.Time `gorm:"autoCreateTime:false;index"`
}

func (inboxModel) TableName() string { return "inbox" }

func day(t time.Time) string { return t.Format(daterange.Layout) }

// toRange trusts stored dates; they were validated before being written.
func toRange(start, end string) daterange.DateRange {
	s, _ := daterange.ParseDay(start)
	e, _ := daterange.ParseDay(end)
	return daterange.DateRange{Start: s, End: e}
}

func newRoomModel(room *domainrooms.Room) roomModel {
	m := roomModel{
		ID:          string(room.ID),
		HostID:      string(room.Host),
		Name:        room.Name,
		Currency:    room.BasePrice.Currency,
		BasePrice:   room.BasePrice.Amount,
		CleaningFee: room.CleaningFee.Amount,
		ServiceFee:  room.ServiceFee.Amount,
		RateSeq:     room.RateSeq,
		Version:     room.Version,
		CreatedAt:   room.CreatedAt.UTC(),
		UpdatedAt:   room.UpdatedAt.UTC(),
	}
	for _, rate := range room.SpecialRates {
		m.SpecialRates = append(m.SpecialRates, rateModel{
			RoomID:    m.ID,
			ID:        rate.ID,
			StartDate: day(rate.Range.Start),
			EndDate:   day(rate.Range.End),
			Kind:      string(rate.Rule.Kind),
			Amount:    rate.Rule.Amount,
			Percent:   rate.Rule.Percent,
			Priority:  rate.Priority,
			CreatedAt: rate.CreatedAt.UTC(),
			UpdatedAt: rate.UpdatedAt.UTC(),
		})
	}
	for _, block := range room.Blocks {
		m.Blocks = append(m.Blocks, blockModel{
			RoomID:    m.ID,
			ID:        block.ID,
			StartDate: day(block.Range.Start),
			EndDate:   day(block.Range.End),
			Reason:    block.Reason,
			CreatedAt: block.CreatedAt.UTC(),
		})
	}
	return m
}

func (m roomModel) toAggregate() *domainrooms.Room {
	room := &domainrooms.Room{
		ID:          domainrooms.RoomID(m.ID),
		Host:        domainrooms.HostID(m.HostID),
		Name:        m.Name,
		BasePrice:   money.Money{Amount: m.BasePrice, Currency: m.Currency},
		CleaningFee: money.Money{Amount: m.CleaningFee, Currency: m.Currency},
		ServiceFee:  money.Money{Amount: m.ServiceFee, Currency: m.Currency},
		RateSeq:     m.RateSeq,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	for _, rate := range m.SpecialRates {
		room.SpecialRates = append(room.SpecialRates, domainrooms.SpecialRate{
			ID:        rate.ID,
			Range:     toRange(rate.StartDate, rate.EndDate),
			Rule:      domainrooms.PriceRule{Kind: domainrooms.RuleKind(rate.Kind), Amount: rate.Amount, Percent: rate.Percent},
			Priority:  rate.Priority,
			CreatedAt: rate.CreatedAt.UTC(),
			UpdatedAt: rate.UpdatedAt.UTC(),
		})
	}
	for _, block := range m.Blocks {
		room.Blocks = append(room.Blocks, domainrooms.BlockedRange{
			ID:        block.ID,
			Range:     toRange(block.StartDate, block.EndDate),
			Reason:    block.Reason,
			CreatedAt: block.CreatedAt.UTC(),
		})
	}
	return room
}
