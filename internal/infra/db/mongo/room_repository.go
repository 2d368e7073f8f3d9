package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrooms "stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
	"stayhost/internal/domain/shared/money"
)

// RoomRepository stores each room as one document embedding its rates and blocks,
// so a save replaces price and collections atomically.
type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(ctx context.Context, db *mongo.Database) (*RoomRepository, error) {
	col := db.Collection("agg_room")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "created_at", Value: 1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, err
	}
	return &RoomRepository{col: col}, nil
}

func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	var doc roomDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrooms.ErrRoomNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts guarded by the version the room was read at.
func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	doc := newRoomDocument(room)
	filter := bson.M{"_id": doc.ID, "version": room.Version}
	doc.Version = room.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainrooms.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainrooms.ErrConcurrentUpdate
	}
	room.Version = doc.Version
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id domainrooms.RoomID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainrooms.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) List(ctx context.Context, filter domainrooms.ListFilter) ([]*domainrooms.Room, error) {
	query := bson.M{}
	if filter.Host != "" {
		query["host_id"] = string(filter.Host)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*domainrooms.Room{}
	for cur.Next(ctx) {
		var doc roomDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type roomDocument struct {
	ID           string          `bson:"_id"`
	HostID       string          `bson:"host_id"`
	Name         string          `bson:"name"`
	Currency     string          `bson:"currency"`
	BasePrice    int64           `bson:"base_price"`
	CleaningFee  int64           `bson:"cleaning_fee"`
	ServiceFee   int64           `bson:"service_fee"`
	SpecialRates []rateDocument  `bson:"special_rates"`
	Blocks       []blockDocument `bson:"blocks"`
	RateSeq      int64           `bson:"rate_seq"`
	Version      int64           `bson:"version"`
	CreatedAt    time.Time       `bson:"created_at"`
	UpdatedAt    time.Time       `bson:"updated_at"`
}

type rangeDocument struct {
	Start string `bson:"start"`
	End   string `bson:"end"`
}

type rateDocument struct {
	ID        string        `bson:"id"`
	Range     rangeDocument `bson:"range"`
	Kind      string        `bson:"kind"`
	Amount    int64         `bson:"amount"`
	Percent   int64         `bson:"percent"`
	Priority  int64         `bson:"priority"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

type blockDocument struct {
	ID        string        `bson:"id"`
	Range     rangeDocument `bson:"range"`
	Reason    string        `bson:"reason,omitempty"`
	CreatedAt time.Time     `bson:"created_at"`
}

func newRangeDocument(dr daterange.DateRange) rangeDocument {
	return rangeDocument{Start: dr.Start.Format(daterange.Layout), End: dr.End.Format(daterange.Layout)}
}

// toRange trusts stored dates; they were validated before being written.
func (d rangeDocument) toRange() daterange.DateRange {
	start, _ := daterange.ParseDay(d.Start)
	end, _ := daterange.ParseDay(d.End)
	return daterange.DateRange{Start: start, End: end}
}

func newRoomDocument(room *domainrooms.Room) roomDocument {
	doc := roomDocument{
		ID:           string(room.ID),
		HostID:       string(room.Host),
		Name:         room.Name,
		Currency:     room.BasePrice.Currency,
		BasePrice:    room.BasePrice.Amount,
		CleaningFee:  room.CleaningFee.Amount,
		ServiceFee:   room.ServiceFee.Amount,
		SpecialRates: make([]rateDocument, 0, len(room.SpecialRates)),
		Blocks:       make([]blockDocument, 0, len(room.Blocks)),
		RateSeq:      room.RateSeq,
		Version:      room.Version,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
	for _, rate := range room.SpecialRates {
		doc.SpecialRates = append(doc.SpecialRates, rateDocument{
			ID:        rate.ID,
			Range:     newRangeDocument(rate.Range),
			Kind:      string(rate.Rule.Kind),
			Amount:    rate.Rule.Amount,
			Percent:   rate.Rule.Percent,
			Priority:  rate.Priority,
			CreatedAt: rate.CreatedAt,
			UpdatedAt: rate.UpdatedAt,
		})
	}
	for _, block := range room.Blocks {
		doc.Blocks = append(doc.Blocks, blockDocument{
			ID:        block.ID,
			Range:     newRangeDocument(block.Range),
			Reason:    block.Reason,
			CreatedAt: block.CreatedAt,
		})
	}
	return doc
}

func (d roomDocument) toAggregate() *domainrooms.Room {
	room := &domainrooms.Room{
		ID:          domainrooms.RoomID(d.ID),
		Host:        domainrooms.HostID(d.HostID),
		Name:        d.Name,
		BasePrice:   money.Money{Amount: d.BasePrice, Currency: d.Currency},
		CleaningFee: money.Money{Amount: d.CleaningFee, Currency: d.Currency},
		ServiceFee:  money.Money{Amount: d.ServiceFee, Currency: d.Currency},
		RateSeq:     d.RateSeq,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	for _, rate := range d.SpecialRates {
		room.SpecialRates = append(room.SpecialRates, domainrooms.SpecialRate{
			ID:        rate.ID,
			Range:     rate.Range.toRange(),
			Rule:      domainrooms.PriceRule{Kind: domainrooms.RuleKind(rate.Kind), Amount: rate.Amount, Percent: rate.Percent},
			Priority:  rate.Priority,
			CreatedAt: rate.CreatedAt.UTC(),
			UpdatedAt: rate.UpdatedAt.UTC(),
		})
	}
	for _, block := range d.Blocks {
		room.Blocks = append(room.Blocks, domainrooms.BlockedRange{
			ID:        block.ID,
			Range:     block.Range.toRange(),
			Reason:    block.Reason,
			CreatedAt: block.CreatedAt.UTC(),
		})
	}
	return room
}

var _ domainrooms.Repository = (*RoomRepository)(nil)
