package middleware

import (
	"context"
	"errors"

	"stayhost/internal/app/commands"
	"stayhost/internal/app/uow"
)

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// RoomTxOptions locks the target room of room scoped commands.
func RoomTxOptions(cmd commands.Command) uow.TxOptions {
	if scoped, ok := cmd.(RoomScoped); ok {
		return uow.TxOptions{LockRoom: scoped.TargetRoom()}
	}
	return uow.TxOptions{}
}

func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	if optsProvider == nil {
		optsProvider = RoomTxOptions
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			unit, err := factory.Begin(ctx, optsProvider(cmd))
			if err != nil {
				return nil, err
			}
			execCtx := uow.Inject(ctx, unit)
			committed := false
			defer func() {
				if !committed {
					_ = unit.Rollback(execCtx)
				}
			}()

			res, err := nextFn(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			if err := unit.Commit(execCtx); err != nil {
				return nil, errors.Join(errCommitFailed, err)
			}
			committed = true
			return res, nil
		})
	}
}

var errCommitFailed = errors.New("middleware: commit failed")
