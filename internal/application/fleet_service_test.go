package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vehicleDomain "github.com/premium-car-rentals/service-rental/internal/domain/vehicle"
)

func TestFleetService_ReturnToService(t *testing.T) {
	t.Run("restores the reserve when a holding booking remains", func(t *testing.T) {
		fx := newServiceFixture(t)
		_, err := fx.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(fx.vehicleID))
		require.NoError(t, err)

		_, err = fx.fleet.PlaceUnderMaintenance(context.Background(), fx.vehicleID)
		require.NoError(t, err)

		dto, err := fx.fleet.ReturnToService(context.Background(), fx.vehicleID)
		require.NoError(t, err)
		assert.Equal(t, "reserved", dto.Status,
			"vehicle with a pending booking must not come back as available")
	})

	t.Run("returns to available when nothing holds the vehicle", func(t *testing.T) {
		fx := newServiceFixture(t)

		_, err := fx.fleet.PlaceUnderMaintenance(context.Background(), fx.vehicleID)
		require.NoError(t, err)

		dto, err := fx.fleet.ReturnToService(context.Background(), fx.vehicleID)
		require.NoError(t, err)
		assert.Equal(t, "available", dto.Status)
	})

	t.Run("returns to available once the holding booking is cancelled", func(t *testing.T) {
		fx := newServiceFixture(t)
		customerID := uuid.New()
		created, err := fx.service.CreateBooking(context.Background(), customerID, validCreateRequest(fx.vehicleID))
		require.NoError(t, err)

		_, err = fx.fleet.PlaceUnderMaintenance(context.Background(), fx.vehicleID)
		require.NoError(t, err)

		_, err = fx.service.CancelBooking(context.Background(), created.ID, customerID, "customer", "changed plans")
		require.NoError(t, err)

		dto, err := fx.fleet.ReturnToService(context.Background(), fx.vehicleID)
		require.NoError(t, err)
		assert.Equal(t, "available", dto.Status)
	})
}

func TestFleetService_MaintenanceBlocksBookings(t *testing.T) {
	fx := newServiceFixture(t)

	_, err := fx.fleet.PlaceUnderMaintenance(context.Background(), fx.vehicleID)
	require.NoError(t, err)

	v := fx.vehicles.vehicles[fx.vehicleID]
	assert.Equal(t, vehicleDomain.StatusUnderMaintenance, v.Status())
	assert.False(t, v.IsBookable())
}
