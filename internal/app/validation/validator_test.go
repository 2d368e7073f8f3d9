package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stayhost/internal/domain/rooms"
)

type sample struct {
	RoomID    string `json:"room_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required,isodate"`
	Kind      string `json:"kind" validate:"required,rulekind"`
	Amount    int64  `json:"amount" validate:"gte=0"`
}

func TestValidateReportsFields(t *testing.T) {
	v := New()

	err := v.Validate(context.Background(), sample{StartDate: "06/01/2025", Kind: "discount", Amount: -5})
	require.ErrorIs(t, err, rooms.ErrInvalid)
	require.Contains(t, err.Error(), "room_id is required")
	require.Contains(t, err.Error(), "start_date must be a YYYY-MM-DD date")
	require.Contains(t, err.Error(), "kind must be OVERRIDE or PERCENT")
	require.Contains(t, err.Error(), "amount must be at least 0")

	require.NoError(t, v.Validate(context.Background(), &sample{RoomID: "r", StartDate: "2025-06-01", Kind: "percent"}))
}

func TestValidateIgnoresNonStructs(t *testing.T) {
	v := New()
	require.NoError(t, v.Validate(context.Background(), nil))
	require.NoError(t, v.Validate(context.Background(), "text"))
	require.NoError(t, v.Validate(context.Background(), (*sample)(nil)))
}
