package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stayhost/internal/domain/bookings"
	domainrooms "stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) ListActive(ctx context.Context, room domainrooms.RoomID, dr daterange.DateRange) ([]bookings.Booking, error) {
	var rows []bookingModel
	err := conn(ctx, r.db).
		Where("room_id = ? AND status <> ?", string(room), string(bookings.StatusCancelled)).
		Where("start_date <= ? AND end_date >= ?", day(dr.End), day(dr.Start)).
		Order("start_date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]bookings.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, bookings.Booking{
			ID:        row.ID,
			RoomID:    domainrooms.RoomID(row.RoomID),
			Range:     toRange(row.StartDate, row.EndDate),
			Status:    bookings.Status(row.Status),
			UpdatedAt: row.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

// Upsert stores the booking unless a newer revision is already present.
func (r *BookingRepository) Upsert(ctx context.Context, b bookings.Booking) error {
	if err := b.Validate(); err != nil {
		return err
	}
	row := bookingModel{
		ID:        b.ID,
		RoomID:    string(b.RoomID),
		StartDate: day(b.Range.Start),
		EndDate:   day(b.Range.End),
		Status:    string(b.Status),
		UpdatedAt: b.UpdatedAt.UTC(),
	}
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"room_id", "start_date", "end_date", "status", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "booking_projection.updated_at <= excluded.updated_at"},
		}},
	}).Create(&row).Error
}

var _ bookings.Repository = (*BookingRepository)(nil)
