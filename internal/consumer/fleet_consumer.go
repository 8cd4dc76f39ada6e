// Package consumer hosts the Kafka consumers that feed external events into
// the application services.
package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/premium-car-rentals/service-rental/internal/application"
	"github.com/premium-car-rentals/service-rental/internal/domain"
	"github.com/premium-car-rentals/service-rental/internal/events"
	"github.com/premium-car-rentals/service-rental/internal/kafka"
)

// FleetEventConsumer listens to fleet-ops events and moves vehicles in and
// out of maintenance.
type FleetEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.FleetService
	logger   *zap.Logger
}

// NewFleetEventConsumer creates a new FleetEventConsumer.
func NewFleetEventConsumer(
	brokers []string,
	groupID string,
	service *application.FleetService,
	logger *zap.Logger,
) *FleetEventConsumer {
	c := kafka.NewConsumer(brokers, groupID, events.TopicFleetEvents, logger)
	return &FleetEventConsumer{
		consumer: c,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming fleet events. This blocks until the context is cancelled.
func (c *FleetEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *FleetEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *FleetEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from fleet topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.FleetMaintenanceStarted:
		return c.handleMaintenance(ctx, cloudEvent, true)
	case events.FleetMaintenanceEnded:
		return c.handleMaintenance(ctx, cloudEvent, false)
	default:
		c.logger.Debug("ignoring unhandled fleet event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *FleetEventConsumer) handleMaintenance(ctx context.Context, cloudEvent kafka.CloudEvent, started bool) error {
	var evt events.FleetMaintenanceEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse FleetMaintenanceEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing fleet maintenance event",
		zap.String("vehicle_id", evt.VehicleID.String()),
		zap.Bool("started", started),
		zap.String("reason", evt.Reason),
	)

	var err error
	if started {
		_, err = c.service.PlaceUnderMaintenance(ctx, evt.VehicleID)
	} else {
		_, err = c.service.ReturnToService(ctx, evt.VehicleID)
	}
	if err != nil {
		// A vehicle this service has never seen is not an error worth a
		// redelivery loop.
		if domain.IsKind(err, domain.KindNotFound) {
			c.logger.Warn("fleet event for unknown vehicle",
				zap.String("vehicle_id", evt.VehicleID.String()),
			)
			return nil
		}
		c.logger.Error("failed to apply fleet maintenance event",
			zap.String("vehicle_id", evt.VehicleID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
