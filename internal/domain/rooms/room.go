package rooms

import (
	"context"
	"strings"
	"time"

	"stayhost/internal/domain/shared/events"
	"stayhost/internal/domain/shared/money"
)

type RoomID string
type HostID string

// Room is the aggregate root owning its special rates and blocked ranges.
// Deleting a room deletes both collections with it.
type Room struct {
	ID           RoomID
	Host         HostID
	Name         string
	BasePrice    money.Money
	CleaningFee  money.Money
	ServiceFee   money.Money
	SpecialRates []SpecialRate
	Blocks       []BlockedRange
	RateSeq      int64
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id RoomID) (*Room, error)
	Save(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id RoomID) error
	List(ctx context.Context, filter ListFilter) ([]*Room, error)
}

type ListFilter struct {
	Host   HostID
	Limit  int
	Offset int
}

type CreateParams struct {
	ID          RoomID
	Host        HostID
	Name        string
	Currency    string
	BasePrice   int64
	CleaningFee int64
	ServiceFee  int64
	Now         time.Time
}

func New(params CreateParams) (*Room, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if params.BasePrice < 0 || params.CleaningFee < 0 || params.ServiceFee < 0 {
		return nil, ErrNegativePrice
	}
	base, err := money.New(params.BasePrice, params.Currency)
	if err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	room := &Room{
		ID:          params.ID,
		Host:        params.Host,
		Name:        strings.TrimSpace(params.Name),
		BasePrice:   base,
		CleaningFee: money.Money{Amount: params.CleaningFee, Currency: base.Currency},
		ServiceFee:  money.Money{Amount: params.ServiceFee, Currency: base.Currency},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	room.Record(RoomCreated{RoomID: string(room.ID), HostID: string(room.Host), BasePrice: base.Amount, Currency: base.Currency, At: now})
	return room, nil
}

// PriceUpdate carries the pricing fields to change; nil fields stay untouched.
type PriceUpdate struct {
	BasePrice   *int64
	CleaningFee *int64
	ServiceFee  *int64
}

func (r *Room) UpdatePrices(update PriceUpdate, now time.Time) error {
	if update.BasePrice == nil && update.CleaningFee == nil && update.ServiceFee == nil {
		return ErrEmptyPriceUpdate
	}
	for _, v := range []*int64{update.BasePrice, update.CleaningFee, update.ServiceFee} {
		if v != nil && *v < 0 {
			return ErrNegativePrice
		}
	}
	currency := r.BasePrice.Currency
	if update.BasePrice != nil {
		r.BasePrice = money.Money{Amount: *update.BasePrice, Currency: currency}
	}
	if update.CleaningFee != nil {
		r.CleaningFee = money.Money{Amount: *update.CleaningFee, Currency: currency}
	}
	if update.ServiceFee != nil {
		r.ServiceFee = money.Money{Amount: *update.ServiceFee, Currency: currency}
	}
	r.touch(now)
	r.Record(PricesUpdated{
		RoomID:      string(r.ID),
		BasePrice:   r.BasePrice.Amount,
		CleaningFee: r.CleaningFee.Amount,
		ServiceFee:  r.ServiceFee.Amount,
		Currency:    currency,
		At:          now.UTC(),
	})
	return nil
}

// MarkDeleted records the deletion; the repository drops rates and blocks with the room.
func (r *Room) MarkDeleted(now time.Time) {
	r.Record(RoomDeleted{
		RoomID:       string(r.ID),
		SpecialRates: len(r.SpecialRates),
		Blocks:       len(r.Blocks),
		At:           now.UTC(),
	})
}

// OwnedBy reports whether host may modify the room.
func (r *Room) OwnedBy(host HostID) bool {
	return r.Host == host
}

// Clone deep-copies the aggregate state without pending events.
func (r *Room) Clone() *Room {
	c := &Room{
		ID:          r.ID,
		Host:        r.Host,
		Name:        r.Name,
		BasePrice:   r.BasePrice,
		CleaningFee: r.CleaningFee,
		ServiceFee:  r.ServiceFee,
		RateSeq:     r.RateSeq,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	c.SpecialRates = append([]SpecialRate(nil), r.SpecialRates...)
	c.Blocks = append([]BlockedRange(nil), r.Blocks...)
	return c
}

func (r *Room) touch(now time.Time) {
	r.UpdatedAt = now.UTC()
}
