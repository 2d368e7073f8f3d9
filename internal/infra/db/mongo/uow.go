package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	appoutbox "stayhost/internal/app/outbox"
	"stayhost/internal/app/uow"
	"stayhost/internal/domain/bookings"
	domainrooms "stayhost/internal/domain/rooms"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Repositories join the transaction through the session context.
type Factory struct {
	DB *mongo.Database

	RoomsRepo    domainrooms.Repository
	BookingsRepo bookings.Reader
	OutboxStore  appoutbox.Outbox
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction. Read-only units read a snapshot.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil || f.RoomsRepo == nil || f.OutboxStore == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	} else {
		txnOpts = txnOpts.SetReadConcern(f.DB.ReadConcern())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:  session,
		rooms:    f.RoomsRepo,
		bookings: f.BookingsRepo,
		outbox:   f.OutboxStore,
	}, nil
}

type Unit struct {
	session mongo.Session

	rooms    domainrooms.Repository
	bookings bookings.Reader
	outbox   appoutbox.Outbox
}

func (u *Unit) Rooms() domainrooms.Repository { return u.rooms }

func (u *Unit) Bookings() bookings.Reader { return u.bookings }

func (u *Unit) Outbox() appoutbox.Outbox { return u.outbox }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		if cmdErr, ok := err.(mongo.CommandError); ok && cmdErr.HasErrorLabel("TransientTransactionError") {
			return errors.Join(domainrooms.ErrConcurrentUpdate, err)
		}
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
