package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"stayhost/internal/app/middleware"
	"stayhost/internal/app/policies"
	"stayhost/internal/app/uow"
	"stayhost/internal/domain/bookings"
	"stayhost/internal/infra/config"
	mongostore "stayhost/internal/infra/db/mongo"
	pgstore "stayhost/internal/infra/db/postgres"
	"stayhost/internal/infra/inbox"
	redislock "stayhost/internal/infra/lock/redis"
	"stayhost/internal/infra/obs"
	infraoutbox "stayhost/internal/infra/outbox"
	"stayhost/internal/infra/storage/memory"
)

// storage is the set of ports backed by the configured driver.
type storage struct {
	uow         uow.UoWFactory
	bookings    bookings.Repository
	idempotency middleware.IdempotencyStore
	inbox       inbox.Store
	source      infraoutbox.Source
	checks      map[string]obs.Check
	closers     []func()
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		return openMongo(ctx, cfg)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverMemory, "":
		return openMemory(cfg), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func openMemory(cfg config.Config) *storage {
	rooms := memory.NewRoomRepository()
	books := memory.NewBookingRepository()
	box := memory.NewOutbox()
	return &storage{
		uow:         memory.Factory{Rooms: rooms, Bookings: books, Outbox: box},
		bookings:    books,
		idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		inbox:       inbox.NewMemoryStore(10000),
		source:      box,
		checks:      map[string]obs.Check{},
	}
}

func openMongo(ctx context.Context, cfg config.Config) (*storage, error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	st := &storage{
		checks:  map[string]obs.Check{"mongo": client.Ping},
		closers: []func(){func() { _ = client.Close(context.Background()) }},
	}
	fail := func(err error) (*storage, error) {
		st.close()
		return nil, err
	}
	rooms, err := mongostore.NewRoomRepository(ctx, client.DB)
	if err != nil {
		return fail(err)
	}
	books, err := mongostore.NewBookingRepository(ctx, client.DB)
	if err != nil {
		return fail(err)
	}
	box, err := infraoutbox.NewMongoStore(ctx, client.DB)
	if err != nil {
		return fail(err)
	}
	idem, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	if err != nil {
		return fail(err)
	}
	seen, err := inbox.NewMongoStore(ctx, client.DB, cfg.KafkaGroup, cfg.InboxTTL)
	if err != nil {
		return fail(err)
	}
	st.uow = mongostore.Factory{DB: client.DB, RoomsRepo: rooms, BookingsRepo: books, OutboxStore: box}
	st.bookings = books
	st.idempotency = idem
	st.inbox = seen
	st.source = box
	return st, nil
}

func openPostgres(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	db, err := pgstore.Open(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	rooms := pgstore.NewRoomRepository(db)
	books := pgstore.NewBookingRepository(db)
	box := pgstore.NewOutboxStore(db)
	return &storage{
		uow:         pgstore.Factory{DB: db, RoomsRepo: rooms, BookingsRepo: books, OutboxStore: box},
		bookings:    books,
		idempotency: pgstore.NewIdempotencyStore(db, cfg.IdempotencyTTL),
		inbox:       pgstore.NewInboxStore(db, cfg.KafkaGroup),
		source:      box,
		checks: map[string]obs.Check{"postgres": func(ctx context.Context) error {
			return pgstore.Ping(ctx, db)
		}},
		closers: []func(){func() { _ = pgstore.Close(db) }},
	}, nil
}

// openLocker shares room locks through Redis when REDIS_ADDR is set, otherwise per process.
func openLocker(ctx context.Context, cfg config.Config, st *storage) (policies.Locker, error) {
	if cfg.RedisAddr == "" {
		return memory.NewLocker(), nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	locker := redislock.New(client, cfg.LockTTL)
	st.checks["redis"] = locker.Ping
	st.closers = append(st.closers, func() { _ = client.Close() })
	return locker, nil
}
