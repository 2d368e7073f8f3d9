package application

import (
	"log/slog"

	"stayhost/internal/app/commands"
	roomsapp "stayhost/internal/app/handlers/rooms"
	"stayhost/internal/app/middleware"
	"stayhost/internal/app/outbox"
	"stayhost/internal/app/policies"
	"stayhost/internal/app/queries"
	"stayhost/internal/app/uow"
)

// Options lists the ports the room service runs on. Locker, Idempotency, Flusher and
// Exporter are optional; the matching stage is left out of the pipeline when nil.
type Options struct {
	Logger      *slog.Logger
	Observer    middleware.Observer
	Validator   middleware.Validator
	UoW         uow.UoWFactory
	Locker      policies.Locker
	Idempotency middleware.IdempotencyStore
	Flusher     outbox.Flusher
	Exporter    policies.CalendarExporter
	Deps        roomsapp.Deps
}

type Application struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// New registers the room handlers and wraps the buses. A command passes
// logging, validation, ownership, the room lock and idempotency before the
// unit of work opens; the outbox relay is nudged after commit.
func New(opts Options) Application {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deps := opts.Deps
	if deps.Logger == nil {
		deps.Logger = logger
	}

	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	roomsapp.Register(cmdBus, queryBus, deps, opts.UoW, opts.Exporter)

	var (
		lock  middleware.CommandMiddleware
		idem  middleware.CommandMiddleware
		flush middleware.CommandMiddleware
	)
	if opts.Locker != nil {
		lock = middleware.RoomLock(opts.Locker)
	}
	if opts.Idempotency != nil {
		idem = middleware.Idempotency(opts.Idempotency, nil, logger)
	}
	if opts.Flusher != nil {
		flush = middleware.OutboxFlush(opts.Flusher, logger)
	}

	return Application{
		Commands: middleware.ChainCommands(
			cmdBus,
			middleware.Logging(logger, opts.Observer),
			middleware.Validation(opts.Validator),
			middleware.Authorization(roomsapp.OwnershipAuthorizer{UoWFactory: opts.UoW}),
			lock,
			idem,
			flush,
			middleware.Transaction(opts.UoW, middleware.RoomTxOptions),
		),
		Queries: middleware.ChainQueries(
			queryBus,
			middleware.QueryLogging(logger, opts.Observer),
			middleware.QueryValidation(opts.Validator),
		),
	}
}
