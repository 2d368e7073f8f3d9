package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "stayhost/internal/app/outbox"
	"stayhost/internal/app/uow"
	"stayhost/internal/domain/bookings"
	domainrooms "stayhost/internal/domain/rooms"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	Rooms    *RoomRepository
	Bookings *BookingRepository
	Outbox   *Outbox
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

var ErrUnitClosed = errors.New("memory: unit of work already finished")

// Begin starts a unit that stages writes and applies them atomically on commit.
// Lost updates surface as rooms.ErrConcurrentUpdate at commit time.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Rooms == nil || f.Bookings == nil || f.Outbox == nil {
		return nil, ErrFactoryMisconfigured
	}
	u := &Unit{
		factory:  f,
		readOnly: opts.ReadOnly,
		staged:   make(map[domainrooms.RoomID]*domainrooms.Room),
		base:     make(map[domainrooms.RoomID]int64),
		deleted:  make(map[domainrooms.RoomID]bool),
	}
	u.rooms = unitRooms{u: u}
	return u, nil
}

type Unit struct {
	factory  Factory
	readOnly bool
	rooms    unitRooms

	mu      sync.Mutex
	done    bool
	staged  map[domainrooms.RoomID]*domainrooms.Room
	base    map[domainrooms.RoomID]int64
	deleted map[domainrooms.RoomID]bool
	records []appoutbox.EventRecord
}

func (u *Unit) Rooms() domainrooms.Repository {
	return u.rooms
}

func (u *Unit) Bookings() bookings.Reader {
	return u.factory.Bookings
}

func (u *Unit) Outbox() appoutbox.Outbox {
	return unitOutbox{u: u}
}

func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	if u.readOnly {
		return nil
	}

	repo := u.factory.Rooms
	repo.mu.Lock()
	for id, expected := range u.base {
		current, ok := repo.items[id]
		if (ok && current.Version != expected) || (!ok && expected != 0) {
			repo.mu.Unlock()
			return domainrooms.ErrConcurrentUpdate
		}
	}
	for id := range u.deleted {
		if _, ok := repo.items[id]; !ok {
			repo.mu.Unlock()
			return domainrooms.ErrRoomNotFound
		}
	}
	for id, room := range u.staged {
		repo.items[id] = room
	}
	for id := range u.deleted {
		delete(repo.items, id)
	}
	repo.mu.Unlock()

	for _, rec := range u.records {
		if err := u.factory.Outbox.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.done = true
	u.staged = nil
	u.records = nil
	return nil
}

type unitRooms struct {
	u *Unit
}

func (r unitRooms) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	r.u.mu.Lock()
	if r.u.deleted[id] {
		r.u.mu.Unlock()
		return nil, domainrooms.ErrRoomNotFound
	}
	if staged, ok := r.u.staged[id]; ok {
		r.u.mu.Unlock()
		return staged.Clone(), nil
	}
	r.u.mu.Unlock()
	return r.u.factory.Rooms.ByID(ctx, id)
}

func (r unitRooms) Save(ctx context.Context, room *domainrooms.Room) error {
	r.u.mu.Lock()
	defer r.u.mu.Unlock()
	if r.u.done {
		return ErrUnitClosed
	}
	if staged, ok := r.u.staged[room.ID]; ok {
		if staged.Version != room.Version {
			return domainrooms.ErrConcurrentUpdate
		}
	} else {
		r.u.base[room.ID] = room.Version
	}
	delete(r.u.deleted, room.ID)
	room.Version++
	r.u.staged[room.ID] = room.Clone()
	return nil
}

func (r unitRooms) Delete(ctx context.Context, id domainrooms.RoomID) error {
	r.u.mu.Lock()
	defer r.u.mu.Unlock()
	if r.u.done {
		return ErrUnitClosed
	}
	delete(r.u.staged, id)
	delete(r.u.base, id)
	r.u.deleted[id] = true
	return nil
}

func (r unitRooms) List(ctx context.Context, filter domainrooms.ListFilter) ([]*domainrooms.Room, error) {
	return r.u.factory.Rooms.List(ctx, filter)
}

type unitOutbox struct {
	u *Unit
}

func (o unitOutbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.u.mu.Lock()
	defer o.u.mu.Unlock()
	if o.u.done {
		return ErrUnitClosed
	}
	o.u.records = append(o.u.records, record)
	return nil
}

var _ uow.UoWFactory = Factory{}
