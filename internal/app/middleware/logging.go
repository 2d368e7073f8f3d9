package middleware

import (
	"context"
	"log/slog"
	"time"

	"stayhost/internal/app/commands"
	"stayhost/internal/app/queries"
)

// Observer receives the outcome of every dispatched message.
type Observer interface {
	ObserveCommand(key string, elapsed time.Duration, err error)
	ObserveQuery(key string, elapsed time.Duration, err error)
}

func Logging(logger *slog.Logger, observer Observer) CommandMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, cmd)
			elapsed := time.Since(start)
			if observer != nil {
				observer.ObserveCommand(cmd.Key(), elapsed, err)
			}
			attrs := []any{"command", cmd.Key(), "duration", elapsed}
			if scoped, ok := cmd.(RoomScoped); ok {
				attrs = append(attrs, "room_id", scoped.TargetRoom())
			}
			if err != nil {
				logger.WarnContext(ctx, "command failed", append(attrs, "error", err)...)
				return nil, err
			}
			logger.DebugContext(ctx, "command handled", attrs...)
			return res, nil
		})
	}
}

func QueryLogging(logger *slog.Logger, observer Observer) QueryMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, q)
			elapsed := time.Since(start)
			if observer != nil {
				observer.ObserveQuery(q.Key(), elapsed, err)
			}
			if err != nil {
				logger.DebugContext(ctx, "query failed", "query", q.Key(), "duration", elapsed, "error", err)
				return nil, err
			}
			return res, nil
		})
	}
}
