package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appoutbox "stayhost/internal/app/outbox"
	"stayhost/internal/infra/outbox"
	"stayhost/internal/infra/storage/memory"
)

type message struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	mu       sync.Mutex
	failures int
	sent     []message
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, message{topic, key, payload, headers})
	return nil
}

func (p *fakeProducer) messages() []message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]message(nil), p.sent...)
}

func record(t *testing.T, id, name string) appoutbox.EventRecord {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"room_id": "room-1"})
	require.NoError(t, err)
	return appoutbox.EventRecord{
		ID:         id,
		Name:       name,
		Aggregate:  "room-1",
		Payload:    payload,
		OccurredAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}
}

func runWorker(t *testing.T, w *outbox.Worker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.ErrorIs(t, <-done, context.Canceled)
	})
}

func TestWorkerPublishesCloudEvents(t *testing.T) {
	store := memory.NewOutbox()
	require.NoError(t, store.Add(context.Background(), record(t, "ev-1", "room.dates_blocked")))
	producer := &fakeProducer{}
	w := outbox.NewWorker(store, producer)
	w.Interval = time.Hour
	w.TopicPrefix = "test."
	runWorker(t, w)

	require.NoError(t, w.Flush(context.Background()))
	require.Eventually(t, func() bool { return len(producer.messages()) == 1 }, time.Second, 5*time.Millisecond)

	msg := producer.messages()[0]
	require.Equal(t, "test.room.events.v1", msg.topic)
	require.Equal(t, "room-1", msg.key)
	require.Equal(t, "room.dates_blocked.v1", msg.headers["ce_type"])
	require.Equal(t, "application/cloudevents+json", msg.headers["content-type"])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &envelope))
	require.Equal(t, "ev-1", envelope["id"])
	require.Equal(t, "room-1", envelope["subject"])
	require.Equal(t, "00-abc-def-01", envelope["traceparent"])
	require.Equal(t, map[string]any{"room_id": "room-1"}, envelope["data"])
	require.Eventually(t, func() bool { return len(store.Pending()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestWorkerRetriesAfterFailure(t *testing.T) {
	store := memory.NewOutbox()
	require.NoError(t, store.Add(context.Background(), record(t, "ev-1", "room.created")))
	producer := &fakeProducer{failures: 1}
	w := outbox.NewWorker(store, producer)
	w.Interval = 5 * time.Millisecond
	w.Backoff = []time.Duration{time.Millisecond}
	runWorker(t, w)

	require.Eventually(t, func() bool { return len(producer.messages()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "room.events.v1", producer.messages()[0].topic)
}

func TestWorkerRequiresDependencies(t *testing.T) {
	err := (&outbox.Worker{}).Run(context.Background())
	require.ErrorIs(t, err, outbox.ErrWorkerNotConfigured)
}
