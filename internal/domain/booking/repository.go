package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByReference retrieves a booking by its booking reference.
	FindByReference(ctx context.Context, reference string) (*Booking, error)

	// FindByCustomerID retrieves bookings belonging to a customer with pagination.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByVehicleID retrieves bookings referencing a vehicle with pagination.
	FindByVehicleID(ctx context.Context, vehicleID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// CountHoldingForVehicle returns how many bookings in a holding status
	// (pending, confirmed, active) reference the vehicle.
	CountHoldingForVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)

	// Create persists a new booking and reserves its vehicle in one
	// transaction. It fails with a domain unavailability error when the
	// vehicle is not available, and with ErrReferenceTaken when the
	// booking reference collides with an existing row.
	Create(ctx context.Context, booking *Booking) error

	// UpdateStatus persists a status transition with optimistic locking
	// and, in the same transaction, releases the vehicle back to
	// available when the booking left its holding states and no other
	// holding booking references the vehicle.
	UpdateStatus(ctx context.Context, booking *Booking) error
}
