package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/premium-car-rentals/service-rental/internal/domain"
)

// Booking is the aggregate root for the rental booking domain. Monetary
// amounts are frozen from the vehicle's rate at creation time; later rate
// changes never retroactively affect an existing booking.
type Booking struct {
	id               uuid.UUID
	bookingReference string
	customerID       uuid.UUID
	vehicleID        uuid.UUID
	status           Status

	pickupDate      time.Time
	returnDate      time.Time
	pickupLocation  string
	returnLocation  string
	specialRequests string

	totalDays            int
	ratePerDayCents      int64
	subtotalCents        int64
	totalCostCents       int64
	securityDepositCents int64

	confirmedAt        *time.Time
	pickedUpAt         *time.Time
	returnedAt         *time.Time
	cancelledAt        *time.Time
	cancellationReason string
	cancelledBy        string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=pending. The quote
// must already reflect the vehicle's current rate and the validated date
// range; NewBooking snapshots it onto the booking.
func NewBooking(
	customerID, vehicleID uuid.UUID,
	pickupDate, returnDate time.Time,
	pickupLocation, returnLocation, specialRequests string,
	quote Quote,
	now time.Time,
) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewFieldValidationError("customer_id", "customer ID is required")
	}
	if vehicleID == uuid.Nil {
		return nil, domain.NewFieldValidationError("vehicle_id", "vehicle ID is required")
	}
	if strings.TrimSpace(pickupLocation) == "" {
		return nil, domain.NewFieldValidationError("pickup_location", "pickup location is required")
	}
	if strings.TrimSpace(returnLocation) == "" {
		return nil, domain.NewFieldValidationError("return_location", "return location is required")
	}
	if quote.TotalDays < 1 || quote.TotalCostCents <= 0 {
		return nil, domain.NewValidationError("quote is incomplete")
	}

	ref, err := NewReference(now)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Booking{
		id:                   uuid.New(),
		bookingReference:     ref,
		customerID:           customerID,
		vehicleID:            vehicleID,
		status:               StatusPending,
		pickupDate:           pickupDate,
		returnDate:           returnDate,
		pickupLocation:       strings.TrimSpace(pickupLocation),
		returnLocation:       strings.TrimSpace(returnLocation),
		specialRequests:      strings.TrimSpace(specialRequests),
		totalDays:            quote.TotalDays,
		ratePerDayCents:      quote.RatePerDayCents,
		subtotalCents:        quote.SubtotalCents,
		totalCostCents:       quote.TotalCostCents,
		securityDepositCents: quote.SecurityDepositCents,
		version:              1,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingReference string,
	customerID, vehicleID uuid.UUID,
	status Status,
	pickupDate, returnDate time.Time,
	pickupLocation, returnLocation, specialRequests string,
	totalDays int,
	ratePerDayCents, subtotalCents, totalCostCents, securityDepositCents int64,
	confirmedAt, pickedUpAt, returnedAt, cancelledAt *time.Time,
	cancellationReason, cancelledBy string,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                   id,
		bookingReference:     bookingReference,
		customerID:           customerID,
		vehicleID:            vehicleID,
		status:               status,
		pickupDate:           pickupDate,
		returnDate:           returnDate,
		pickupLocation:       pickupLocation,
		returnLocation:       returnLocation,
		specialRequests:      specialRequests,
		totalDays:            totalDays,
		ratePerDayCents:      ratePerDayCents,
		subtotalCents:        subtotalCents,
		totalCostCents:       totalCostCents,
		securityDepositCents: securityDepositCents,
		confirmedAt:          confirmedAt,
		pickedUpAt:           pickedUpAt,
		returnedAt:           returnedAt,
		cancelledAt:          cancelledAt,
		cancellationReason:   cancellationReason,
		cancelledBy:          cancelledBy,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingReference returns the human-readable booking reference.
func (b *Booking) BookingReference() string { return b.bookingReference }

// CustomerID returns the booking customer's ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// VehicleID returns the reserved vehicle's ID.
func (b *Booking) VehicleID() uuid.UUID { return b.vehicleID }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// PickupDate returns the rental start date.
func (b *Booking) PickupDate() time.Time { return b.pickupDate }

// ReturnDate returns the rental end date.
func (b *Booking) ReturnDate() time.Time { return b.returnDate }

// PickupLocation returns where the vehicle is collected.
func (b *Booking) PickupLocation() string { return b.pickupLocation }

// ReturnLocation returns where the vehicle is dropped off.
func (b *Booking) ReturnLocation() string { return b.returnLocation }

// SpecialRequests returns free-form customer notes.
func (b *Booking) SpecialRequests() string { return b.specialRequests }

// TotalDays returns the charged rental duration in days.
func (b *Booking) TotalDays() int { return b.totalDays }

// RatePerDayCents returns the daily rate frozen at creation time.
func (b *Booking) RatePerDayCents() int64 { return b.ratePerDayCents }

// SubtotalCents returns rate times days.
func (b *Booking) SubtotalCents() int64 { return b.subtotalCents }

// TotalCostCents returns the total rental cost, excluding the deposit.
func (b *Booking) TotalCostCents() int64 { return b.totalCostCents }

// SecurityDepositCents returns the refundable deposit tracked separately
// from the total cost.
func (b *Booking) SecurityDepositCents() int64 { return b.securityDepositCents }

// ConfirmedAt returns when an admin approved the booking, or nil.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// PickedUpAt returns when the rental became active, or nil.
func (b *Booking) PickedUpAt() *time.Time { return b.pickedUpAt }

// ReturnedAt returns when the vehicle was returned, or nil.
func (b *Booking) ReturnedAt() *time.Time { return b.returnedAt }

// CancelledAt returns when the booking was cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancellationReason returns the reason recorded on cancellation.
func (b *Booking) CancellationReason() string { return b.cancellationReason }

// CancelledBy returns who cancelled the booking ("admin" or "customer").
func (b *Booking) CancelledBy() string { return b.cancelledBy }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Confirm transitions the booking from pending to confirmed (admin approval).
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	now := time.Now().UTC()
	b.status = StatusConfirmed
	b.confirmedAt = &now
	b.updatedAt = now
	return nil
}

// Activate transitions the booking from confirmed to active (pickup performed).
func (b *Booking) Activate() error {
	if !b.status.CanTransitionTo(StatusActive) {
		return domain.NewInvalidStateError(string(b.status), string(StatusActive))
	}
	now := time.Now().UTC()
	b.status = StatusActive
	b.pickedUpAt = &now
	b.updatedAt = now
	return nil
}

// Complete transitions the booking from active to completed (return performed).
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	b.status = StatusCompleted
	b.returnedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled. A non-empty reason is
// required; cancelledBy records the acting party.
func (b *Booking) Cancel(reason, cancelledBy string) error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	if strings.TrimSpace(reason) == "" {
		return domain.NewFieldValidationError("cancellation_reason", "cancellation reason is required")
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancellationReason = strings.TrimSpace(reason)
	b.cancelledBy = cancelledBy
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// ApplyTransition drives the booking to the target status via the transition
// table, recording the matching timestamp and cancellation fields.
func (b *Booking) ApplyTransition(target Status, reason, actor string) error {
	switch target {
	case StatusConfirmed:
		return b.Confirm()
	case StatusActive:
		return b.Activate()
	case StatusCompleted:
		return b.Complete()
	case StatusCancelled:
		return b.Cancel(reason, actor)
	default:
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
}

// RegenerateReference replaces the booking reference after a uniqueness
// collision at insert time. Only valid before the booking is persisted.
func (b *Booking) RegenerateReference(now time.Time) error {
	ref, err := NewReference(now)
	if err != nil {
		return err
	}
	b.bookingReference = ref
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
