package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainrooms "stayhost/internal/domain/rooms"
)

// RoomRepository maps a room onto one row plus child rows for its rates and blocks.
// Child rows are replaced on every save and cascade on delete.
type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	var row roomModel
	err := r.withChildren(conn(ctx, r.db)).Where("id = ?", string(id)).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrooms.ErrRoomNotFound
		}
		return nil, err
	}
	return row.toAggregate(), nil
}

// Save writes the room guarded by the version it was read at.
func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	row := newRoomModel(room)
	row.Version = room.Version + 1
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if room.Version == 0 {
			res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domainrooms.ErrConcurrentUpdate
			}
		} else {
			res := tx.Model(&roomModel{}).
				Where("id = ? AND version = ?", row.ID, room.Version).
				Updates(map[string]any{
					"name":         row.Name,
					"currency":     row.Currency,
					"base_price":   row.BasePrice,
					"cleaning_fee": row.CleaningFee,
					"service_fee":  row.ServiceFee,
					"rate_seq":     row.RateSeq,
					"version":      row.Version,
					"updated_at":   row.UpdatedAt,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domainrooms.ErrConcurrentUpdate
			}
		}
		return replaceChildren(tx, row)
	})
	if err != nil {
		if isUniqueViolation(err) || isRetryable(err) {
			return errors.Join(domainrooms.ErrConcurrentUpdate, err)
		}
		return err
	}
	room.Version = row.Version
	return nil
}

func replaceChildren(tx *gorm.DB, row roomModel) error {
	if err := tx.Where("room_id = ?", row.ID).Delete(&rateModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("room_id = ?", row.ID).Delete(&blockModel{}).Error; err != nil {
		return err
	}
	if len(row.SpecialRates) > 0 {
		if err := tx.Create(&row.SpecialRates).Error; err != nil {
			return err
		}
	}
	if len(row.Blocks) > 0 {
		if err := tx.Create(&row.Blocks).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the room with its rates and blocks. The foreign keys cascade as
// well, so rows written by other tools cannot outlive their room.
func (r *RoomRepository) Delete(ctx context.Context, id domainrooms.RoomID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := replaceChildren(tx, roomModel{ID: string(id)}); err != nil {
			return err
		}
		res := tx.Where("id = ?", string(id)).Delete(&roomModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domainrooms.ErrRoomNotFound
		}
		return nil
	})
}

func (r *RoomRepository) List(ctx context.Context, filter domainrooms.ListFilter) ([]*domainrooms.Room, error) {
	q := r.withChildren(conn(ctx, r.db)).Order("created_at, id")
	if filter.Host != "" {
		q = q.Where("host_id = ?", string(filter.Host))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var rows []roomModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domainrooms.Room, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate())
	}
	return out, nil
}

func (r *RoomRepository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("SpecialRates", func(db *gorm.DB) *gorm.DB { return db.Order("priority") }).
		Preload("Blocks", func(db *gorm.DB) *gorm.DB { return db.Order("start_date") })
}

var _ domainrooms.Repository = (*RoomRepository)(nil)
