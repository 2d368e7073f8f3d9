package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	marked []int64
}

func (s *fakeSession) Context() context.Context { return context.Background() }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	ch chan *sarama.ConsumerMessage
}

func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.ch }

func claimOf(n int) fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, n)
	for i := range n {
		ch <- &sarama.ConsumerMessage{Topic: "bookings", Offset: int64(i)}
	}
	close(ch)
	return fakeClaim{ch: ch}
}

type scriptedHandler struct {
	errs    map[int64]error
	handled []int64
}

func (h *scriptedHandler) Handle(_ context.Context, msg *sarama.ConsumerMessage) error {
	h.handled = append(h.handled, msg.Offset)
	return h.errs[msg.Offset]
}

func TestConsumeClaimSkipsMalformedMessages(t *testing.T) {
	h := &scriptedHandler{errs: map[int64]error{1: fmt.Errorf("%w: bad json", ErrMalformedBookingEvent)}}
	sess := &fakeSession{}
	gh := groupHandler{handler: h, logger: slog.Default()}

	require.NoError(t, gh.ConsumeClaim(sess, claimOf(3)))
	require.Equal(t, []int64{0, 1, 2}, h.handled)
	require.Equal(t, []int64{0, 1, 2}, sess.marked)
}

func TestConsumeClaimStopsOnFailureWithoutMarking(t *testing.T) {
	transient := errors.New("db unavailable")
	h := &scriptedHandler{errs: map[int64]error{1: transient}}
	sess := &fakeSession{}
	gh := groupHandler{handler: h, logger: slog.Default()}

	err := gh.ConsumeClaim(sess, claimOf(3))
	require.ErrorIs(t, err, transient)
	require.Equal(t, []int64{0, 1}, h.handled)
	require.Equal(t, []int64{0}, sess.marked)
}
