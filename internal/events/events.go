// Package events defines the Kafka topics and payloads produced and consumed
// by the rental service.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventSource identifies this service as the CloudEvent source.
const EventSource = "service-rental"

// Topics.
const (
	TopicBookingEvents = "rental.booking.events"
	TopicFleetEvents   = "rental.fleet.events"
)

// Booking event types.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingActivated = "booking.activated"
	BookingCompleted = "booking.completed"
	BookingCancelled = "booking.cancelled"
)

// Fleet event types (consumed; emitted by the fleet-ops system).
const (
	FleetMaintenanceStarted = "fleet.maintenance.started"
	FleetMaintenanceEnded   = "fleet.maintenance.ended"
)

// BookingCreatedEvent is published when a booking is created and its vehicle
// reserved.
type BookingCreatedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	CustomerID       uuid.UUID `json:"customer_id"`
	VehicleID        uuid.UUID `json:"vehicle_id"`
	PickupDate       time.Time `json:"pickup_date"`
	ReturnDate       time.Time `json:"return_date"`
	TotalDays        int       `json:"total_days"`
	TotalCostCents   int64     `json:"total_cost_cents"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BookingTransitionedEvent is published for every status transition.
type BookingTransitionedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	CustomerID       uuid.UUID `json:"customer_id"`
	VehicleID        uuid.UUID `json:"vehicle_id"`
	FromStatus       string    `json:"from_status"`
	ToStatus         string    `json:"to_status"`
	Reason           string    `json:"reason,omitempty"`
	Actor            string    `json:"actor,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// FleetMaintenanceEvent is consumed from the fleet-ops system to force a
// vehicle out of (or back into) the offerable fleet.
type FleetMaintenanceEvent struct {
	VehicleID  uuid.UUID `json:"vehicle_id"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
