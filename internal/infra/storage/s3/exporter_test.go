package s3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stayhost/internal/app/policies"
)

func TestNewCalendarExporterValidatesOptions(t *testing.T) {
	_, err := NewCalendarExporter(Options{Bucket: "b"})
	require.ErrorContains(t, err, "endpoint")
	_, err = NewCalendarExporter(Options{Endpoint: "http://localhost:9000"})
	require.ErrorContains(t, err, "bucket")

	e, err := NewCalendarExporter(Options{Endpoint: "http://localhost:9000", Bucket: "calendars", PublicBaseURL: "https://cdn.test/"})
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test", e.publicBaseURL)
}

func TestUploadRejectsEmptyObjects(t *testing.T) {
	e, err := NewCalendarExporter(Options{Endpoint: "localhost:9000", Bucket: "calendars"})
	require.NoError(t, err)
	_, err = e.Upload(context.Background(), policies.CalendarObject{Key: "a.csv"})
	require.ErrorContains(t, err, "body")
}

func TestObjectURLAndHost(t *testing.T) {
	require.Equal(t, "http://minio:9000/cal/rooms/r1/x.csv", objectURL("http://minio:9000/", "cal", "/rooms/r1/x.csv"))
	require.Equal(t, "minio:9000", hostOf("http://minio:9000"))
	require.Equal(t, "minio:9000", hostOf("minio:9000"))
}
