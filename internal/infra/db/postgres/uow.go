package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appoutbox "stayhost/internal/app/outbox"
	"stayhost/internal/app/uow"
	"stayhost/internal/domain/bookings"
	domainrooms "stayhost/internal/domain/rooms"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory misconfigured")

// Factory runs each unit in one database transaction. Repositories join it
// through the context the unit injects.
type Factory struct {
	DB *gorm.DB

	RoomsRepo    *RoomRepository
	BookingsRepo *BookingRepository
	OutboxStore  *OutboxStore
}

// Begin opens the transaction. With LockRoom set the room row is locked
// FOR UPDATE so writers to the same room queue behind each other.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil || f.RoomsRepo == nil || f.BookingsRepo == nil || f.OutboxStore == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	tx := f.DB.WithContext(ctx).Begin(&sql.TxOptions{ReadOnly: opts.ReadOnly})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if opts.LockRoom != "" && !opts.ReadOnly {
		var locked []roomModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", string(opts.LockRoom)).
			Find(&locked).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	return &Unit{tx: tx, factory: f}, nil
}

type Unit struct {
	tx      *gorm.DB
	factory Factory
}

func (u *Unit) Rooms() domainrooms.Repository { return u.factory.RoomsRepo }

func (u *Unit) Bookings() bookings.Reader { return u.factory.BookingsRepo }

func (u *Unit) Outbox() appoutbox.Outbox { return u.factory.OutboxStore }

func (u *Unit) Commit(ctx context.Context) error {
	if err := u.tx.Commit().Error; err != nil {
		if isRetryable(err) {
			return errors.Join(domainrooms.ErrConcurrentUpdate, err)
		}
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	err := u.tx.Rollback().Error
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// InjectContext exposes the transaction to repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return withTx(ctx, u.tx)
}

var _ uow.UoWFactory = Factory{}
