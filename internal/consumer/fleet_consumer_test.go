package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/premium-car-rentals/service-rental/internal/application"
	"github.com/premium-car-rentals/service-rental/internal/domain"
	bookingDomain "github.com/premium-car-rentals/service-rental/internal/domain/booking"
	vehicleDomain "github.com/premium-car-rentals/service-rental/internal/domain/vehicle"
	"github.com/premium-car-rentals/service-rental/internal/events"
	"github.com/premium-car-rentals/service-rental/internal/kafka"
)

type stubVehicleRepo struct {
	vehicles map[uuid.UUID]*vehicleDomain.Vehicle
}

func (r *stubVehicleRepo) FindByID(_ context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, domain.NewNotFoundError("Vehicle", id.String())
	}
	return v, nil
}

func (r *stubVehicleRepo) ListBookable(_ context.Context, _, _ int) ([]*vehicleDomain.Vehicle, int64, error) {
	return nil, 0, nil
}

func (r *stubVehicleRepo) CheckAvailable(_ context.Context, _ uuid.UUID) (bool, error) {
	return false, nil
}

func (r *stubVehicleRepo) Save(_ context.Context, v *vehicleDomain.Vehicle) error {
	r.vehicles[v.ID()] = v
	return nil
}

func (r *stubVehicleRepo) Update(_ context.Context, v *vehicleDomain.Vehicle) error {
	r.vehicles[v.ID()] = v
	return nil
}

type stubCategoryRepo struct{}

func (stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*vehicleDomain.Category, error) {
	return nil, domain.NewNotFoundError("VehicleCategory", id.String())
}

func (stubCategoryRepo) ListActive(_ context.Context) ([]*vehicleDomain.Category, error) {
	return nil, nil
}

type stubBookingRepo struct{}

func (stubBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return nil, domain.NewNotFoundError("Booking", id.String())
}

func (stubBookingRepo) FindByReference(_ context.Context, reference string) (*bookingDomain.Booking, error) {
	return nil, domain.NewNotFoundError("Booking", reference)
}

func (stubBookingRepo) FindByCustomerID(_ context.Context, _ uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	return nil, 0, nil
}

func (stubBookingRepo) FindByVehicleID(_ context.Context, _ uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	return nil, 0, nil
}

func (stubBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	return nil, 0, nil
}

func (stubBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (stubBookingRepo) CountHoldingForVehicle(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubBookingRepo) Create(_ context.Context, _ *bookingDomain.Booking) error { return nil }

func (stubBookingRepo) UpdateStatus(_ context.Context, _ *bookingDomain.Booking) error { return nil }

func newConsumerFixture(t *testing.T) (*FleetEventConsumer, *stubVehicleRepo, uuid.UUID) {
	t.Helper()

	now := time.Now().UTC()
	cat := vehicleDomain.ReconstructCategory(
		uuid.New(), "Luxury Sedan", 3000, 50000, 1, 30, true, now, now,
	)
	v := vehicleDomain.ReconstructVehicle(
		uuid.New(), cat.ID(), "BMW", "740i", 2024, "WXY1234",
		3000, 50000, vehicleDomain.StatusAvailable, 1, now, now,
	)

	vehicles := &stubVehicleRepo{vehicles: map[uuid.UUID]*vehicleDomain.Vehicle{v.ID(): v}}
	fleet := application.NewFleetService(vehicles, stubCategoryRepo{}, stubBookingRepo{}, zap.NewNop())

	return &FleetEventConsumer{service: fleet, logger: zap.NewNop()}, vehicles, v.ID()
}

func maintenanceMessage(t *testing.T, eventType string, vehicleID uuid.UUID) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-fleet-ops", eventType, events.FleetMaintenanceEvent{
		VehicleID:  vehicleID,
		Reason:     "scheduled service",
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	value, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: events.TopicFleetEvents, Value: value}
}

func TestFleetEventConsumer_HandleMessage(t *testing.T) {
	t.Run("maintenance started takes the vehicle out of rotation", func(t *testing.T) {
		c, vehicles, vehicleID := newConsumerFixture(t)

		err := c.handleMessage(context.Background(), maintenanceMessage(t, events.FleetMaintenanceStarted, vehicleID))
		require.NoError(t, err)
		assert.Equal(t, vehicleDomain.StatusUnderMaintenance, vehicles.vehicles[vehicleID].Status())
	})

	t.Run("maintenance ended brings the vehicle back", func(t *testing.T) {
		c, vehicles, vehicleID := newConsumerFixture(t)

		require.NoError(t, c.handleMessage(context.Background(), maintenanceMessage(t, events.FleetMaintenanceStarted, vehicleID)))
		require.NoError(t, c.handleMessage(context.Background(), maintenanceMessage(t, events.FleetMaintenanceEnded, vehicleID)))
		assert.Equal(t, vehicleDomain.StatusAvailable, vehicles.vehicles[vehicleID].Status())
	})

	t.Run("unknown vehicle is not redelivered", func(t *testing.T) {
		c, _, _ := newConsumerFixture(t)

		err := c.handleMessage(context.Background(), maintenanceMessage(t, events.FleetMaintenanceStarted, uuid.New()))
		assert.NoError(t, err)
	})

	t.Run("malformed payload is not redelivered", func(t *testing.T) {
		c, _, _ := newConsumerFixture(t)

		err := c.handleMessage(context.Background(), kafkago.Message{Value: []byte("not json")})
		assert.NoError(t, err)
	})

	t.Run("unhandled event type is ignored", func(t *testing.T) {
		c, vehicles, vehicleID := newConsumerFixture(t)

		err := c.handleMessage(context.Background(), maintenanceMessage(t, "fleet.relocated", vehicleID))
		require.NoError(t, err)
		assert.Equal(t, vehicleDomain.StatusAvailable, vehicles.vehicles[vehicleID].Status())
	})
}
