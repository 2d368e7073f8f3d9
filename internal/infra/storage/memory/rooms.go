package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	domainrooms "stayhost/internal/domain/rooms"
)

// RoomRepository keeps room aggregates in memory. It stores and hands out
// clones so callers never share state with the store.
type RoomRepository struct {
	mu    sync.RWMutex
	items map[domainrooms.RoomID]*domainrooms.Room
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{items: make(map[domainrooms.RoomID]*domainrooms.Room)}
}

// ByID returns a copy of the room or rooms.ErrRoomNotFound.
func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.items[id]
	if !ok {
		return nil, domainrooms.ErrRoomNotFound
	}
	return room.Clone(), nil
}

// Save stores the room when its version matches the stored one and bumps it.
func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(room)
}

func (r *RoomRepository) saveLocked(room *domainrooms.Room) error {
	current, ok := r.items[room.ID]
	switch {
	case ok && current.Version != room.Version:
		return domainrooms.ErrConcurrentUpdate
	case !ok && room.Version != 0:
		return domainrooms.ErrConcurrentUpdate
	}
	room.Version++
	r.items[room.ID] = room.Clone()
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id domainrooms.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(id)
}

func (r *RoomRepository) deleteLocked(id domainrooms.RoomID) error {
	if _, ok := r.items[id]; !ok {
		return domainrooms.ErrRoomNotFound
	}
	delete(r.items, id)
	return nil
}

// List returns rooms ordered by creation time, then id.
func (r *RoomRepository) List(ctx context.Context, filter domainrooms.ListFilter) ([]*domainrooms.Room, error) {
	r.mu.RLock()
	all := make([]*domainrooms.Room, 0, len(r.items))
	for _, room := range r.items {
		if filter.Host != "" && room.Host != filter.Host {
			continue
		}
		all = append(all, room.Clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b *domainrooms.Room) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	if filter.Offset >= len(all) {
		return []*domainrooms.Room{}, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, nil
}

var _ domainrooms.Repository = (*RoomRepository)(nil)
