package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/premium-car-rentals/service-rental/internal/domain"
	bookingDomain "github.com/premium-car-rentals/service-rental/internal/domain/booking"
	vehicleDomain "github.com/premium-car-rentals/service-rental/internal/domain/vehicle"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingReference     string     `gorm:"uniqueIndex;not null;size:12"`
	CustomerID           uuid.UUID  `gorm:"type:uuid;index;not null"`
	VehicleID            uuid.UUID  `gorm:"type:uuid;index;not null"`
	Status               string     `gorm:"not null;size:20;index"`
	PickupDate           time.Time  `gorm:"type:date;not null"`
	ReturnDate           time.Time  `gorm:"type:date;not null"`
	PickupLocation       string     `gorm:"not null;size:255"`
	ReturnLocation       string     `gorm:"not null;size:255"`
	SpecialRequests      string     `gorm:"size:1000"`
	TotalDays            int        `gorm:"not null"`
	RatePerDayCents      int64      `gorm:"not null"`
	SubtotalCents        int64      `gorm:"not null"`
	TotalCostCents       int64      `gorm:"not null"`
	SecurityDepositCents int64      `gorm:"not null;default:0"`
	ConfirmedAt          *time.Time `gorm:""`
	PickedUpAt           *time.Time `gorm:""`
	ReturnedAt           *time.Time `gorm:""`
	CancelledAt          *time.Time `gorm:""`
	CancellationReason   string     `gorm:"size:500"`
	CancelledBy          string     `gorm:"size:20"`
	Version              int64      `gorm:"not null;default:1"`
	CreatedAt            time.Time  `gorm:"not null"`
	UpdatedAt            time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// holdingStatuses are the booking statuses that keep a vehicle reserved.
var holdingStatuses = []string{
	string(bookingDomain.StatusPending),
	string(bookingDomain.StatusConfirmed),
	string(bookingDomain.StatusActive),
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Create persists a new booking and reserves its vehicle in one transaction.
// The reserve is a conditional update gated on the vehicle still being
// available; zero rows affected means another request won the vehicle (or an
// administrative hold applies) and nothing is inserted.
func (r *GormBookingRepository) Create(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&VehicleModel{}).
			Where("id = ? AND status = ?", bk.VehicleID(), string(vehicleDomain.StatusAvailable)).
			Updates(map[string]interface{}{
				"status":     string(vehicleDomain.StatusReserved),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to reserve vehicle: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewUnavailableError("vehicle is not available for booking")
		}

		if err := tx.Create(model).Error; err != nil {
			if isReferenceCollision(err) {
				return bookingDomain.ErrReferenceTaken
			}
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
	return err
}

// UpdateStatus persists a status transition with optimistic locking and
// applies the inventory side effect in the same transaction.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called after the transition, so the row must
	// still hold the previous version.
	expectedVersion := bk.Version() - 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&BookingModel{}).
			Where("id = ? AND version = ?", model.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":              model.Status,
				"confirmed_at":        model.ConfirmedAt,
				"picked_up_at":        model.PickedUpAt,
				"returned_at":         model.ReturnedAt,
				"cancelled_at":        model.CancelledAt,
				"cancellation_reason": model.CancellationReason,
				"cancelled_by":        model.CancelledBy,
				"version":             model.Version,
				"updated_at":          model.UpdatedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update booking: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewConflictError("booking was modified by another transaction")
		}

		switch {
		case bk.Status() == bookingDomain.StatusConfirmed:
			// Re-assert the hold taken at creation. Idempotent: zero
			// rows affected just means the vehicle is already reserved.
			if err := tx.Model(&VehicleModel{}).
				Where("id = ? AND status = ?", bk.VehicleID(), string(vehicleDomain.StatusAvailable)).
				Updates(map[string]interface{}{
					"status":     string(vehicleDomain.StatusReserved),
					"updated_at": time.Now().UTC(),
				}).Error; err != nil {
				return fmt.Errorf("failed to re-assert vehicle hold: %w", err)
			}

		case !bk.Status().HoldsVehicle():
			if err := releaseVehicleIfIdle(tx, bk.VehicleID(), bk.ID()); err != nil {
				return err
			}
		}
		return nil
	})
}

// releaseVehicleIfIdle flips a reserved vehicle back to available unless
// another holding booking still references it. More than one holding booking
// per vehicle only happens if the creation path's atomicity was bypassed,
// but the re-check keeps the inventory invariant regardless.
func releaseVehicleIfIdle(tx *gorm.DB, vehicleID, excludeBookingID uuid.UUID) error {
	var holding int64
	if err := tx.Model(&BookingModel{}).
		Where("vehicle_id = ? AND id <> ? AND status IN ?", vehicleID, excludeBookingID, holdingStatuses).
		Count(&holding).Error; err != nil {
		return fmt.Errorf("failed to count holding bookings: %w", err)
	}
	if holding > 0 {
		return nil
	}

	// Only a reserved vehicle is released; administrative holds
	// (unavailable, under_maintenance) stay as they are.
	if err := tx.Model(&VehicleModel{}).
		Where("id = ? AND status = ?", vehicleID, string(vehicleDomain.StatusReserved)).
		Updates(map[string]interface{}{
			"status":     string(vehicleDomain.StatusAvailable),
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		return fmt.Errorf("failed to release vehicle: %w", err)
	}
	return nil
}

// isReferenceCollision reports whether err is a unique-constraint violation
// on the booking reference column.
func isReferenceCollision(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.UniqueViolation &&
		strings.Contains(pgErr.ConstraintName, "booking_reference")
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByReference retrieves a booking by its booking reference.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCustomerID retrieves bookings for a customer with pagination.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "customer_id = ?", customerID, page, limit)
}

// FindByVehicleID retrieves bookings referencing a vehicle with pagination.
func (r *GormBookingRepository) FindByVehicleID(ctx context.Context, vehicleID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "vehicle_id = ?", vehicleID, page, limit)
}

func (r *GormBookingRepository) findPage(ctx context.Context, cond string, arg uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountHoldingForVehicle returns how many holding bookings reference the vehicle.
func (r *GormBookingRepository) CountHoldingForVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var holding int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID, holdingStatuses).
		Count(&holding).Error; err != nil {
		return 0, fmt.Errorf("failed to count holding bookings: %w", err)
	}
	return holding, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                   bk.ID(),
		BookingReference:     bk.BookingReference(),
		CustomerID:           bk.CustomerID(),
		VehicleID:            bk.VehicleID(),
		Status:               string(bk.Status()),
		PickupDate:           bk.PickupDate(),
		ReturnDate:           bk.ReturnDate(),
		PickupLocation:       bk.PickupLocation(),
		ReturnLocation:       bk.ReturnLocation(),
		SpecialRequests:      bk.SpecialRequests(),
		TotalDays:            bk.TotalDays(),
		RatePerDayCents:      bk.RatePerDayCents(),
		SubtotalCents:        bk.SubtotalCents(),
		TotalCostCents:       bk.TotalCostCents(),
		SecurityDepositCents: bk.SecurityDepositCents(),
		ConfirmedAt:          bk.ConfirmedAt(),
		PickedUpAt:           bk.PickedUpAt(),
		ReturnedAt:           bk.ReturnedAt(),
		CancelledAt:          bk.CancelledAt(),
		CancellationReason:   bk.CancellationReason(),
		CancelledBy:          bk.CancelledBy(),
		Version:              bk.Version(),
		CreatedAt:            bk.CreatedAt(),
		UpdatedAt:            bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingReference,
		m.CustomerID,
		m.VehicleID,
		status,
		m.PickupDate,
		m.ReturnDate,
		m.PickupLocation,
		m.ReturnLocation,
		m.SpecialRequests,
		m.TotalDays,
		m.RatePerDayCents,
		m.SubtotalCents,
		m.TotalCostCents,
		m.SecurityDepositCents,
		m.ConfirmedAt,
		m.PickedUpAt,
		m.ReturnedAt,
		m.CancelledAt,
		m.CancellationReason,
		m.CancelledBy,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
