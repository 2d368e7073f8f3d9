package rooms

import (
	"context"
	"fmt"
	"strings"

	"stayhost/internal/app/handlers/support"
	"stayhost/internal/app/middleware"
	"stayhost/internal/app/uow"
	domainrooms "stayhost/internal/domain/rooms"
)

var ErrHostIdentityMissing = fmt.Errorf("%w: acting host is required", domainrooms.ErrForbidden)

// OwnershipAuthorizer lets a host act only on rooms it owns.
type OwnershipAuthorizer struct {
	UoWFactory uow.UoWFactory
}

func (a OwnershipAuthorizer) Authorize(ctx context.Context, message any) error {
	scoped, ok := message.(middleware.HostScoped)
	if !ok {
		return nil
	}
	host := scoped.ActingHost()
	if strings.TrimSpace(string(host)) == "" {
		return ErrHostIdentityMissing
	}
	target, ok := message.(middleware.RoomScoped)
	if !ok || target.TargetRoom() == "" {
		return nil
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, a.UoWFactory)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	room, err := unit.Rooms().ByID(execCtx, target.TargetRoom())
	if err != nil {
		return err
	}
	if !room.OwnedBy(host) {
		return domainrooms.ErrNotOwner
	}
	return nil
}

var _ middleware.Authorizer = OwnershipAuthorizer{}
