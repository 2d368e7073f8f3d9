package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayhost/internal/domain/bookings"
	domainrooms "stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
)

// BookingRepository holds the booking projection. Dates are stored as
// YYYY-MM-DD strings, which compare correctly as text.
type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(ctx context.Context, db *mongo.Database) (*BookingRepository, error) {
	col := db.Collection("proj_booking")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "start", Value: 1}, {Key: "end", Value: 1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, err
	}
	return &BookingRepository{col: col}, nil
}

func (r *BookingRepository) ListActive(ctx context.Context, room domainrooms.RoomID, dr daterange.DateRange) ([]bookings.Booking, error) {
	filter := bson.M{
		"room_id": string(room),
		"status":  bson.M{"$ne": string(bookings.StatusCancelled)},
		"start":   bson.M{"$lte": dr.End.Format(daterange.Layout)},
		"end":     bson.M{"$gte": dr.Start.Format(daterange.Layout)},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []bookings.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toBooking())
	}
	return out, cur.Err()
}

// Upsert stores the booking unless a newer revision is already present.
func (r *BookingRepository) Upsert(ctx context.Context, b bookings.Booking) error {
	if err := b.Validate(); err != nil {
		return err
	}
	doc := bookingDocument{
		ID:        b.ID,
		RoomID:    string(b.RoomID),
		Start:     b.Range.Start.Format(daterange.Layout),
		End:       b.Range.End.Format(daterange.Layout),
		Status:    string(b.Status),
		UpdatedAt: b.UpdatedAt.UTC(),
	}
	filter := bson.M{"_id": doc.ID, "updated_at": bson.M{"$lte": doc.UpdatedAt}}
	_, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// a newer revision exists
		return nil
	}
	return err
}

type bookingDocument struct {
	ID        string    `bson:"_id"`
	RoomID    string    `bson:"room_id"`
	Start     string    `bson:"start"`
	End       string    `bson:"end"`
	Status    string    `bson:"status"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d bookingDocument) toBooking() bookings.Booking {
	return bookings.Booking{
		ID:        d.ID,
		RoomID:    domainrooms.RoomID(d.RoomID),
		Range:     rangeDocument{Start: d.Start, End: d.End}.toRange(),
		Status:    bookings.Status(d.Status),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

var _ bookings.Repository = (*BookingRepository)(nil)
