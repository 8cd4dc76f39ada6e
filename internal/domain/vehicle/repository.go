package vehicle

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for fleet vehicles.
type Repository interface {
	// FindByID retrieves a vehicle by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// ListBookable retrieves vehicles offerable for new bookings, cheapest
	// first, with pagination.
	ListBookable(ctx context.Context, page, limit int) ([]*Vehicle, int64, error)

	// CheckAvailable reports whether the vehicle may currently be offered
	// for a new booking. Informational only: the authoritative check
	// happens inside the booking-create transaction.
	CheckAvailable(ctx context.Context, id uuid.UUID) (bool, error)

	// Save persists a new vehicle.
	Save(ctx context.Context, v *Vehicle) error

	// Update persists changes to an existing vehicle with optimistic locking.
	Update(ctx context.Context, v *Vehicle) error
}

// CategoryRepository defines the persistence contract for vehicle categories.
type CategoryRepository interface {
	// FindByID retrieves a category by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// ListActive retrieves all active categories.
	ListActive(ctx context.Context) ([]*Category, error)
}
