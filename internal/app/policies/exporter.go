package policies

import (
	"context"
	"io"
)

// CalendarObject describes a rendered calendar snapshot handed to storage.
type CalendarObject struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CalendarExporter stores calendar snapshots and returns where they can be fetched.
type CalendarExporter interface {
	Upload(ctx context.Context, obj CalendarObject) (url string, err error)
}
