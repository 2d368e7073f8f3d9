package middleware

import (
	"context"

	"stayhost/internal/app/commands"
	"stayhost/internal/app/queries"
)

// Validator checks the input contract of a command or query.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

// Validation rejects malformed commands before ownership checks, locks or
// transactions run. A nil validator leaves the stage out of the chain.
func Validation(v Validator) CommandMiddleware {
	if v == nil {
		return nil
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(validated(v, wrapCommand(next)))
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		return nil
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(validated(v, wrapQuery(next)))
	}
}

func validated[M any, F ~func(context.Context, M) (any, error)](v Validator, next F) F {
	return func(ctx context.Context, msg M) (any, error) {
		if err := v.Validate(ctx, msg); err != nil {
			return nil, err
		}
		return next(ctx, msg)
	}
}
