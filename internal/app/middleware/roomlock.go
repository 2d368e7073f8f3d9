package middleware

import (
	"context"

	"stayhost/internal/app/commands"
	"stayhost/internal/app/policies"
)

// RoomLock serializes commands targeting the same room.
func RoomLock(locker policies.Locker) CommandMiddleware {
	if locker == nil {
		panic("middleware: locker required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			scoped, ok := cmd.(RoomScoped)
			if !ok || scoped.TargetRoom() == "" {
				return nextFn(ctx, cmd)
			}
			release, err := locker.Lock(ctx, "room:"+string(scoped.TargetRoom()))
			if err != nil {
				return nil, err
			}
			defer release()
			return nextFn(ctx, cmd)
		})
	}
}
