package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type count struct{ N int }

func (count) Key() string { return "test.count" }

type countHandler struct{}

func (countHandler) Handle(_ context.Context, q count) ([]int, error) {
	out := make([]int, q.N)
	for i := range out {
		out[i] = i + 1
	}
	return out, nil
}

func TestAskReturnsTypedResult(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[count, []int](bus, countHandler{})

	out, err := Ask[count, []int](context.Background(), bus, count{N: 3})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, out)

	_, err = Ask[count, string](context.Background(), bus, count{N: 1})
	require.ErrorIs(t, err, ErrResultType)
	require.ErrorContains(t, err, "test.count returned []int")
}

func TestAskUnknownQuery(t *testing.T) {
	bus := NewInMemoryBus()
	_, err := bus.Ask(context.Background(), count{})
	require.ErrorIs(t, err, ErrHandlerNotFound)
	_, err = bus.Ask(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidQuery)
	require.Empty(t, bus.Keys())
}
