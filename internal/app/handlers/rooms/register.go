package rooms

import (
	"stayhost/internal/app/commands"
	"stayhost/internal/app/policies"
	"stayhost/internal/app/queries"
	"stayhost/internal/app/uow"
)

// Register wires every room command and query handler into the buses.
func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, deps Deps, factory uow.UoWFactory, exporter policies.CalendarExporter) {
	commands.RegisterHandler(cmdBus, &CreateRoomHandler{Deps: deps})
	commands.RegisterHandler(cmdBus, &DeleteRoomHandler{Deps: deps})
	commands.RegisterHandler(cmdBus, &AddSpecialRateHandler{Deps: deps})
	commands.RegisterHandler(cmdBus, &UpdateSpecialRateHandler{Deps: deps})
	commands.RegisterHandler(cmdBus, &RemoveSpecialRateHandler{Deps: deps})
	commands.RegisterHandler(cmdBus, &BlockDatesHandler{Deps: deps})
	commands.RegisterHandler(cmdBus, &UnblockDatesHandler{Deps: deps})
	commands.RegisterHandler(cmdBus, &UpdatePricesHandler{Deps: deps})
	commands.RegisterHandler(cmdBus, &ExportCalendarHandler{Deps: deps, Exporter: exporter})

	queries.RegisterHandler(queryBus, &GetRoomHandler{Deps: deps, UoWFactory: factory})
	queries.RegisterHandler(queryBus, &ListRoomsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, &ResolveNightsHandler{Deps: deps, UoWFactory: factory})
	queries.RegisterHandler(queryBus, &UnavailableDatesHandler{ResolveNightsHandler{Deps: deps, UoWFactory: factory}})
}
