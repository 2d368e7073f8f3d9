package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stayhost/internal/domain/shared/money"
)

func TestRecalculateTotal(t *testing.T) {
	var p PriceBreakdown
	require.ErrorIs(t, p.RecalculateTotal(), ErrCurrencyUnset)

	require.NoError(t, p.AddNight(money.Must(8000, "USD")))
	require.NoError(t, p.AddNight(money.Must(10000, "USD")))
	p.AddFee(FeeCleaning, money.Must(2500, "USD"))
	p.AddFee(FeeService, money.Zero("USD"))

	require.NoError(t, p.RecalculateTotal())
	require.Equal(t, 2, p.Nights)
	require.Equal(t, int64(18000), p.Subtotal.Amount)
	require.Len(t, p.Fees, 1)
	require.Equal(t, int64(20500), p.Total.Amount)
}

func TestRejectsMixedCurrencyAndNegativeFees(t *testing.T) {
	var p PriceBreakdown
	require.NoError(t, p.AddNight(money.Must(8000, "USD")))
	require.ErrorIs(t, p.AddNight(money.Must(8000, "EUR")), money.ErrCurrencyMismatch)

	p.AddFee(FeeCleaning, money.Money{Amount: -1, Currency: "USD"})
	require.ErrorIs(t, p.RecalculateTotal(), ErrNegativeComponent)
}
