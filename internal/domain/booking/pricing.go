package booking

import (
	"time"

	"github.com/premium-car-rentals/service-rental/internal/domain"
)

// Quote is the result of a rental cost calculation. All amounts are in cents.
type Quote struct {
	TotalDays            int   `json:"total_days"`
	RatePerDayCents      int64 `json:"rate_per_day_cents"`
	SubtotalCents        int64 `json:"subtotal_cents"`
	TotalCostCents       int64 `json:"total_cost_cents"`
	SecurityDepositCents int64 `json:"security_deposit_cents"`
}

// PricingCalculator computes rental cost from a vehicle's daily rate and the
// requested date range. It is pure: no side effects, safe to call repeatedly.
type PricingCalculator struct{}

// NewPricingCalculator creates a new PricingCalculator.
func NewPricingCalculator() *PricingCalculator {
	return &PricingCalculator{}
}

// Calculate returns the cost quote for renting at ratePerDayCents between
// pickupDate and returnDate, bounded by the category's rental duration limits
// (a zero bound means unbounded).
//
// Duration rules:
//   - returnDate before pickupDate is rejected. The previous system silently
//     floored such ranges to one day; that coercion masked invalid input and
//     is now an explicit validation failure.
//   - pickupDate == returnDate is a same-day rental and counts as one day.
//   - Partial days round up.
//
// The security deposit is carried on the quote for downstream persistence but
// is never folded into the total cost.
func (c *PricingCalculator) Calculate(
	ratePerDayCents, securityDepositCents int64,
	pickupDate, returnDate time.Time,
	minRentalDays, maxRentalDays int,
) (Quote, error) {
	if ratePerDayCents <= 0 {
		return Quote{}, domain.NewFieldValidationError("rate_per_day", "rate must be positive")
	}
	if pickupDate.IsZero() {
		return Quote{}, domain.NewFieldValidationError("pickup_date", "pickup date is required")
	}
	if returnDate.IsZero() {
		return Quote{}, domain.NewFieldValidationError("return_date", "return date is required")
	}
	if returnDate.Before(pickupDate) {
		return Quote{}, domain.NewFieldValidationError("return_date", "return date must not be before pickup date")
	}

	totalDays := daysBetween(pickupDate, returnDate)
	if totalDays < 1 {
		totalDays = 1
	}

	if minRentalDays > 0 && totalDays < minRentalDays {
		return Quote{}, domain.NewFieldValidationError("return_date",
			"rental duration is below the category minimum")
	}
	if maxRentalDays > 0 && totalDays > maxRentalDays {
		return Quote{}, domain.NewFieldValidationError("return_date",
			"rental duration exceeds the category maximum")
	}

	subtotal := ratePerDayCents * int64(totalDays)
	return Quote{
		TotalDays:            totalDays,
		RatePerDayCents:      ratePerDayCents,
		SubtotalCents:        subtotal,
		TotalCostCents:       subtotal,
		SecurityDepositCents: securityDepositCents,
	}, nil
}

// daysBetween returns the number of charged days between two dates, rounding
// partial days up.
func daysBetween(pickup, ret time.Time) int {
	d := ret.Sub(pickup)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
