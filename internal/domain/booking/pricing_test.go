package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premium-car-rentals/service-rental/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPricingCalculator_Calculate(t *testing.T) {
	calc := NewPricingCalculator()

	t.Run("three day rental", func(t *testing.T) {
		quote, err := calc.Calculate(3000, 50000, date(2025, 6, 1), date(2025, 6, 4), 0, 0)
		require.NoError(t, err)

		assert.Equal(t, 3, quote.TotalDays)
		assert.Equal(t, int64(3000), quote.RatePerDayCents)
		assert.Equal(t, int64(9000), quote.SubtotalCents)
		assert.Equal(t, int64(9000), quote.TotalCostCents)
	})

	t.Run("same day counts as one day", func(t *testing.T) {
		quote, err := calc.Calculate(3000, 0, date(2025, 6, 1), date(2025, 6, 1), 0, 0)
		require.NoError(t, err)

		assert.Equal(t, 1, quote.TotalDays)
		assert.Equal(t, int64(3000), quote.TotalCostCents)
	})

	t.Run("partial day rounds up", func(t *testing.T) {
		pickup := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		ret := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

		quote, err := calc.Calculate(3000, 0, pickup, ret, 0, 0)
		require.NoError(t, err)

		assert.Equal(t, 2, quote.TotalDays)
		assert.Equal(t, int64(6000), quote.TotalCostCents)
	})

	t.Run("return before pickup is rejected", func(t *testing.T) {
		_, err := calc.Calculate(3000, 0, date(2025, 6, 4), date(2025, 6, 1), 0, 0)
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("deposit is carried but never added to total", func(t *testing.T) {
		quote, err := calc.Calculate(3000, 50000, date(2025, 6, 1), date(2025, 6, 3), 0, 0)
		require.NoError(t, err)

		assert.Equal(t, int64(50000), quote.SecurityDepositCents)
		assert.Equal(t, quote.SubtotalCents, quote.TotalCostCents)
	})

	t.Run("duration below category minimum is rejected", func(t *testing.T) {
		_, err := calc.Calculate(3000, 0, date(2025, 6, 1), date(2025, 6, 2), 3, 0)
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("duration above category maximum is rejected", func(t *testing.T) {
		_, err := calc.Calculate(3000, 0, date(2025, 6, 1), date(2025, 7, 15), 0, 30)
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("zero bounds are unbounded", func(t *testing.T) {
		quote, err := calc.Calculate(3000, 0, date(2025, 6, 1), date(2026, 6, 1), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 365, quote.TotalDays)
	})

	t.Run("non-positive rate is rejected", func(t *testing.T) {
		_, err := calc.Calculate(0, 0, date(2025, 6, 1), date(2025, 6, 4), 0, 0)
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("calculation is repeatable", func(t *testing.T) {
		first, err := calc.Calculate(4500, 25000, date(2025, 8, 10), date(2025, 8, 17), 1, 30)
		require.NoError(t, err)
		second, err := calc.Calculate(4500, 25000, date(2025, 8, 10), date(2025, 8, 17), 1, 30)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}
