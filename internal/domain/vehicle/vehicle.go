package vehicle

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/premium-car-rentals/service-rental/internal/domain"
)

// VehicleStatus represents the inventory state of a fleet vehicle.
type VehicleStatus string

const (
	StatusAvailable        VehicleStatus = "available"
	StatusReserved         VehicleStatus = "reserved"
	StatusUnavailable      VehicleStatus = "unavailable"
	StatusUnderMaintenance VehicleStatus = "under_maintenance"
)

// IsValid returns true if the status is a recognized vehicle status.
func (s VehicleStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusUnavailable, StatusUnderMaintenance:
		return true
	}
	return false
}

// IsBookable returns true if a vehicle in this status may be offered for a
// new booking. Only available vehicles are offerable; unavailable and
// under_maintenance are administrative holds that block bookings even when
// no conflicting booking exists.
func (s VehicleStatus) IsBookable() bool {
	return s == StatusAvailable
}

// String returns the string representation of the status.
func (s VehicleStatus) String() string {
	return string(s)
}

// Vehicle is the aggregate root for a fleet vehicle. Pricing fields are a
// one-time copy from the vehicle's category at creation time, not a live
// reference, so historical bookings stay stable when category defaults move.
type Vehicle struct {
	id                   uuid.UUID
	categoryID           uuid.UUID
	makeName             string
	model                string
	year                 int
	registrationNumber   string
	ratePerDayCents      int64
	securityDepositCents int64
	status               VehicleStatus
	version              int64
	createdAt            time.Time
	updatedAt            time.Time
}

// NewVehicle creates an available vehicle priced from its category defaults.
func NewVehicle(
	category *Category,
	vehicleMake, model string,
	year int,
	registrationNumber string,
) (*Vehicle, error) {
	if category == nil {
		return nil, domain.NewFieldValidationError("category_id", "category is required")
	}
	if !category.IsActive() {
		return nil, domain.NewFieldValidationError("category_id", "category is inactive")
	}
	if strings.TrimSpace(vehicleMake) == "" {
		return nil, domain.NewFieldValidationError("make", "vehicle make is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, domain.NewFieldValidationError("model", "vehicle model is required")
	}
	if strings.TrimSpace(registrationNumber) == "" {
		return nil, domain.NewFieldValidationError("registration_number", "registration number is required")
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:                   uuid.New(),
		categoryID:           category.ID(),
		makeName:             strings.TrimSpace(vehicleMake),
		model:                strings.TrimSpace(model),
		year:                 year,
		registrationNumber:   strings.ToUpper(strings.TrimSpace(registrationNumber)),
		ratePerDayCents:      category.BaseRatePerDayCents(),
		securityDepositCents: category.SecurityDepositCents(),
		status:               StatusAvailable,
		version:              1,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// ReconstructVehicle rebuilds a Vehicle from persistence data (no validation).
func ReconstructVehicle(
	id, categoryID uuid.UUID,
	vehicleMake, model string,
	year int,
	registrationNumber string,
	ratePerDayCents, securityDepositCents int64,
	status VehicleStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:                   id,
		categoryID:           categoryID,
		makeName:             vehicleMake,
		model:                model,
		year:                 year,
		registrationNumber:   registrationNumber,
		ratePerDayCents:      ratePerDayCents,
		securityDepositCents: securityDepositCents,
		status:               status,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// --- Getters ---

func (v *Vehicle) ID() uuid.UUID               { return v.id }
func (v *Vehicle) CategoryID() uuid.UUID       { return v.categoryID }
func (v *Vehicle) Make() string                { return v.makeName }
func (v *Vehicle) Model() string               { return v.model }
func (v *Vehicle) Year() int                   { return v.year }
func (v *Vehicle) RegistrationNumber() string  { return v.registrationNumber }
func (v *Vehicle) RatePerDayCents() int64      { return v.ratePerDayCents }
func (v *Vehicle) SecurityDepositCents() int64 { return v.securityDepositCents }
func (v *Vehicle) Status() VehicleStatus       { return v.status }
func (v *Vehicle) Version() int64              { return v.version }
func (v *Vehicle) CreatedAt() time.Time        { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time        { return v.updatedAt }

// --- Behavior ---

// IsBookable returns true if the vehicle may be offered for a new booking.
func (v *Vehicle) IsBookable() bool {
	return v.status.IsBookable()
}

// PlaceUnderMaintenance forces the vehicle out of rotation regardless of
// bookings. New bookings are rejected while it holds.
func (v *Vehicle) PlaceUnderMaintenance() {
	v.status = StatusUnderMaintenance
	v.touch()
}

// MarkUnavailable removes the vehicle from the offerable fleet.
func (v *Vehicle) MarkUnavailable() {
	v.status = StatusUnavailable
	v.touch()
}

// ReturnToService lifts an administrative hold. A vehicle still referenced
// by a holding booking goes back to reserved so that booking keeps its claim;
// only an unclaimed vehicle returns to available.
func (v *Vehicle) ReturnToService(held bool) {
	if held {
		v.status = StatusReserved
	} else {
		v.status = StatusAvailable
	}
	v.touch()
}

func (v *Vehicle) touch() {
	v.version++
	v.updatedAt = time.Now().UTC()
}
