package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"

	"stayhost/internal/domain/bookings"
	"stayhost/internal/domain/shared/daterange"
	"stayhost/internal/infra/inbox"
	"stayhost/internal/infra/storage/memory"
)

type outcomes []string

func (o *outcomes) ObserveBookingEvent(outcome string) { *o = append(*o, outcome) }

func newProjector() (BookingProjector, *memory.BookingRepository, *outcomes) {
	repo := memory.NewBookingRepository()
	seen := &outcomes{}
	return BookingProjector{Bookings: repo, Inbox: inbox.NewMemoryStore(100), Observer: seen}, repo, seen
}

func june(t *testing.T) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse("2025-06-01", "2025-06-30")
	require.NoError(t, err)
	return dr
}

func TestProjectorAppliesBareAndCloudEventPayloads(t *testing.T) {
	p, repo, seen := newProjector()
	ctx := context.Background()

	bare := `{"id":"b1","room_id":"room-1","start_date":"2025-06-10","end_date":"2025-06-12","status":"upcoming","updated_at":"2025-05-01T10:00:00Z"}`
	require.NoError(t, p.Handle(ctx, &sarama.ConsumerMessage{Value: []byte(bare)}))

	wrapped := `{"id":"evt-2","type":"booking.upserted.v1","data":{"id":"b2","room_id":"room-1","start_date":"2025-06-20","end_date":"2025-06-21","booking_status":"ongoing","updated_at":"2025-05-01T10:00:00Z"}}`
	require.NoError(t, p.Handle(ctx, &sarama.ConsumerMessage{Value: []byte(wrapped)}))

	list, err := repo.ListActive(ctx, "room-1", june(t))
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, bookings.StatusOngoing, list[1].Status)
	require.Equal(t, outcomes{"applied", "applied"}, *seen)
}

func TestProjectorDeduplicatesAndCancels(t *testing.T) {
	p, repo, seen := newProjector()
	ctx := context.Background()
	upcoming := `{"id":"evt-1","type":"booking.upserted","data":{"id":"b1","room_id":"room-1","start_date":"2025-06-10","end_date":"2025-06-12","status":"upcoming","updated_at":"2025-05-01T10:00:00Z"}}`
	cancelled := `{"id":"evt-2","type":"booking.upserted","data":{"id":"b1","room_id":"room-1","start_date":"2025-06-10","end_date":"2025-06-12","status":"cancelled","updated_at":"2025-05-02T10:00:00Z"}}`

	require.NoError(t, p.Handle(ctx, &sarama.ConsumerMessage{Value: []byte(upcoming)}))
	require.NoError(t, p.Handle(ctx, &sarama.ConsumerMessage{Value: []byte(upcoming)}))
	require.NoError(t, p.Handle(ctx, &sarama.ConsumerMessage{Value: []byte(cancelled)}))

	list, err := repo.ListActive(ctx, "room-1", june(t))
	require.NoError(t, err)
	require.Empty(t, list)
	require.Equal(t, outcomes{"applied", "duplicate", "applied"}, *seen)
}

type flakyBookings struct {
	*memory.BookingRepository
	failures int
}

func (f *flakyBookings) Upsert(ctx context.Context, b bookings.Booking) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("transient")
	}
	return f.BookingRepository.Upsert(ctx, b)
}

func TestProjectorAppliesRedeliveryAfterFailedUpsert(t *testing.T) {
	repo := &flakyBookings{BookingRepository: memory.NewBookingRepository(), failures: 1}
	seen := &outcomes{}
	p := BookingProjector{Bookings: repo, Inbox: inbox.NewMemoryStore(100), Observer: seen}
	ctx := context.Background()
	msg := &sarama.ConsumerMessage{Value: []byte(`{"id":"evt-1","type":"booking.upserted","data":{"id":"b1","room_id":"room-1","start_date":"2025-06-10","end_date":"2025-06-12","status":"upcoming","updated_at":"2025-05-01T10:00:00Z"}}`)}

	require.Error(t, p.Handle(ctx, msg))
	require.NoError(t, p.Handle(ctx, msg))

	list, err := repo.ListActive(ctx, "room-1", june(t))
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, outcomes{"error", "applied"}, *seen)

	require.NoError(t, p.Handle(ctx, msg))
	require.Equal(t, outcomes{"error", "applied", "duplicate"}, *seen)
}

func TestProjectorSkipsOtherTypesAndRejectsGarbage(t *testing.T) {
	p, _, seen := newProjector()
	ctx := context.Background()

	other := &sarama.ConsumerMessage{
		Value:   []byte(`{"id":"x"}`),
		Headers: []*sarama.RecordHeader{{Key: []byte("ce_type"), Value: []byte("booking.paid.v1")}},
	}
	require.NoError(t, p.Handle(ctx, other))

	err := p.Handle(ctx, &sarama.ConsumerMessage{Value: []byte(`not json`)})
	require.ErrorIs(t, err, ErrMalformedBookingEvent)

	err = p.Handle(ctx, &sarama.ConsumerMessage{Value: []byte(`{"id":"b1","room_id":"r","start_date":"2025-06-12","end_date":"2025-06-10","status":"upcoming"}`)})
	require.ErrorIs(t, err, ErrMalformedBookingEvent)

	err = p.Handle(ctx, &sarama.ConsumerMessage{Value: []byte(`{"id":"b1","room_id":"r","start_date":"2025-06-10","end_date":"2025-06-12","status":"lost"}`)})
	require.ErrorIs(t, err, bookings.ErrUnknownStatus)
	require.Equal(t, outcomes{"skipped", "malformed", "malformed", "malformed"}, *seen)
}

func TestRecordHeadersAreSorted(t *testing.T) {
	hs := recordHeaders(map[string]string{"b": "2", "a": "1"})
	require.Len(t, hs, 2)
	require.Equal(t, "a", string(hs[0].Key))
	require.Equal(t, "2", string(hs[1].Value))
}
