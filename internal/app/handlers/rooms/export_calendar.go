package rooms

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"stayhost/internal/app/commands"
	"stayhost/internal/app/dto"
	"stayhost/internal/app/handlers/support"
	"stayhost/internal/app/policies"
	"stayhost/internal/domain/availability"
	"stayhost/internal/domain/shared/daterange"
)

var ErrExporterUnavailable = errors.New("rooms: calendar export storage is not configured")

type ExportCalendarHandler struct {
	Deps
	Exporter policies.CalendarExporter
}

// Handle resolves the range and uploads it as a CSV snapshot.
func (h *ExportCalendarHandler) Handle(ctx context.Context, cmd ExportCalendarCommand) (*dto.CalendarExport, error) {
	if h.Exporter == nil {
		return nil, ErrExporterUnavailable
	}
	dr, err := parseRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}
	unit, err := support.CurrentUnit(ctx)
	if err != nil {
		return nil, err
	}
	room, err := loadOwned(ctx, unit, cmd.RoomID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	active, err := activeBookings(ctx, unit, room.ID, dr)
	if err != nil {
		return nil, err
	}
	nights, err := h.resolver().Resolve(room, active, dr)
	if err != nil {
		return nil, err
	}
	body, err := renderCSV(nights)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("calendars/%s/%s_%s_%d.csv", room.ID, dr.Start.Format(daterange.Layout), dr.End.Format(daterange.Layout), h.now().Unix())
	url, err := h.Exporter.Upload(ctx, policies.CalendarObject{
		Key:         key,
		ContentType: "text/csv",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "calendar exported", "room_id", room.ID, "object", key, "nights", len(nights))
	return &dto.CalendarExport{
		RoomID:    string(room.ID),
		StartDate: dr.Start.Format(daterange.Layout),
		EndDate:   dr.End.Format(daterange.Layout),
		Nights:    len(nights),
		ObjectKey: key,
		URL:       url,
	}, nil
}

func renderCSV(nights []availability.NightResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "price", "currency", "available", "rate_id", "cause"}); err != nil {
		return nil, err
	}
	for _, n := range nights {
		row := []string{
			n.Date.Format(daterange.Layout),
			strconv.FormatInt(n.Price.Amount, 10),
			n.Price.Currency,
			strconv.FormatBool(n.Available),
			n.RateID,
			string(n.Cause),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

var _ commands.Handler[ExportCalendarCommand, *dto.CalendarExport] = (*ExportCalendarHandler)(nil)
