package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premium-car-rentals/service-rental/internal/domain"
)

func testQuote() Quote {
	return Quote{
		TotalDays:            3,
		RatePerDayCents:      3000,
		SubtotalCents:        9000,
		TotalCostCents:       9000,
		SecurityDepositCents: 50000,
	}
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking(
		uuid.New(), uuid.New(),
		date(2025, 6, 1), date(2025, 6, 4),
		"Airport Terminal 1", "Downtown Office", "child seat",
		testQuote(),
		time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return bk
}

func TestNewBooking(t *testing.T) {
	t.Run("creates a pending booking with a minted reference", func(t *testing.T) {
		bk := newTestBooking(t)

		assert.Equal(t, StatusPending, bk.Status())
		assert.True(t, IsValidReference(bk.BookingReference()))
		assert.Equal(t, 3, bk.TotalDays())
		assert.Equal(t, int64(9000), bk.TotalCostCents())
		assert.Equal(t, int64(50000), bk.SecurityDepositCents())
		assert.Equal(t, int64(1), bk.Version())
	})

	t.Run("requires a customer", func(t *testing.T) {
		_, err := NewBooking(uuid.Nil, uuid.New(),
			date(2025, 6, 1), date(2025, 6, 4),
			"A", "B", "", testQuote(), time.Now())
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("requires locations", func(t *testing.T) {
		_, err := NewBooking(uuid.New(), uuid.New(),
			date(2025, 6, 1), date(2025, 6, 4),
			"  ", "B", "", testQuote(), time.Now())
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}

func TestBooking_Lifecycle(t *testing.T) {
	t.Run("full happy path", func(t *testing.T) {
		bk := newTestBooking(t)

		require.NoError(t, bk.Confirm())
		assert.Equal(t, StatusConfirmed, bk.Status())
		assert.NotNil(t, bk.ConfirmedAt())

		require.NoError(t, bk.Activate())
		assert.Equal(t, StatusActive, bk.Status())
		assert.NotNil(t, bk.PickedUpAt())

		require.NoError(t, bk.Complete())
		assert.Equal(t, StatusCompleted, bk.Status())
		assert.NotNil(t, bk.ReturnedAt())
	})

	t.Run("cannot skip confirmation", func(t *testing.T) {
		bk := newTestBooking(t)

		err := bk.Activate()
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
		assert.Equal(t, StatusPending, bk.Status())
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		bk := newTestBooking(t)

		err := bk.Cancel("   ", "customer")
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		assert.Equal(t, StatusPending, bk.Status())

		require.NoError(t, bk.Cancel("changed plans", "customer"))
		assert.Equal(t, StatusCancelled, bk.Status())
		assert.Equal(t, "changed plans", bk.CancellationReason())
		assert.Equal(t, "customer", bk.CancelledBy())
		assert.NotNil(t, bk.CancelledAt())
	})

	t.Run("terminal states reject all transitions", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Cancel("no longer needed", "admin"))

		for _, target := range []Status{StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled} {
			err := bk.ApplyTransition(target, "x", "admin")
			assert.True(t, domain.IsKind(err, domain.KindInvalidState),
				"cancelled -> %s should be rejected", target)
		}
	})
}

func TestBooking_ApplyTransition(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.ApplyTransition(StatusConfirmed, "", ""))
	assert.Equal(t, StatusConfirmed, bk.Status())

	require.NoError(t, bk.ApplyTransition(StatusCancelled, "vehicle damaged", "admin"))
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, "admin", bk.CancelledBy())

	err := bk.ApplyTransition(StatusPending, "", "")
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
}

func TestBooking_RegenerateReference(t *testing.T) {
	bk := newTestBooking(t)
	original := bk.BookingReference()

	require.NoError(t, bk.RegenerateReference(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsValidReference(bk.BookingReference()))
	assert.NotEqual(t, original[:6], bk.BookingReference()[:6], "month segment should move")
}

func TestBooking_IncrementVersion(t *testing.T) {
	bk := newTestBooking(t)
	require.Equal(t, int64(1), bk.Version())

	bk.IncrementVersion()
	assert.Equal(t, int64(2), bk.Version())
}
