package vehicle

import (
	"time"

	"github.com/google/uuid"
)

// Category groups vehicles and carries the pricing defaults and rental
// duration bounds copied onto a vehicle at creation time.
type Category struct {
	id                   uuid.UUID
	name                 string
	baseRatePerDayCents  int64
	securityDepositCents int64
	minimumRentalDays    int
	maximumRentalDays    int
	isActive             bool
	createdAt            time.Time
	updatedAt            time.Time
}

// ReconstructCategory rebuilds a Category from persistence data.
func ReconstructCategory(
	id uuid.UUID,
	name string,
	baseRatePerDayCents, securityDepositCents int64,
	minimumRentalDays, maximumRentalDays int,
	isActive bool,
	createdAt, updatedAt time.Time,
) *Category {
	return &Category{
		id:                   id,
		name:                 name,
		baseRatePerDayCents:  baseRatePerDayCents,
		securityDepositCents: securityDepositCents,
		minimumRentalDays:    minimumRentalDays,
		maximumRentalDays:    maximumRentalDays,
		isActive:             isActive,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

func (c *Category) ID() uuid.UUID               { return c.id }
func (c *Category) Name() string                { return c.name }
func (c *Category) BaseRatePerDayCents() int64  { return c.baseRatePerDayCents }
func (c *Category) SecurityDepositCents() int64 { return c.securityDepositCents }
func (c *Category) MinimumRentalDays() int      { return c.minimumRentalDays }
func (c *Category) MaximumRentalDays() int      { return c.maximumRentalDays }
func (c *Category) IsActive() bool              { return c.isActive }
func (c *Category) CreatedAt() time.Time        { return c.createdAt }
func (c *Category) UpdatedAt() time.Time        { return c.updatedAt }
