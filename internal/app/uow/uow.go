package uow

import (
	"context"

	"stayhost/internal/app/outbox"
	"stayhost/internal/domain/bookings"
	"stayhost/internal/domain/rooms"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Rooms() rooms.Repository
	Bookings() bookings.Reader
	// Outbox stages event records so they commit or roll back with the aggregate.
	Outbox() outbox.Outbox

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
	// LockRoom asks stores with row locks to lock this room for the transaction.
	LockRoom rooms.RoomID
}
