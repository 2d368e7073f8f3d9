package middleware

import (
	"stayhost/internal/app/commands"
	"stayhost/internal/domain/rooms"
)

// RoomScoped is implemented by commands that mutate a single room.
type RoomScoped interface {
	commands.Command
	TargetRoom() rooms.RoomID
}

// HostScoped is implemented by messages issued on behalf of a host.
type HostScoped interface {
	ActingHost() rooms.HostID
}
