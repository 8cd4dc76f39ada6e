package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/premium-car-rentals/service-rental/internal/domain"
	vehicleDomain "github.com/premium-car-rentals/service-rental/internal/domain/vehicle"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID           uuid.UUID `gorm:"type:uuid;index;not null"`
	Make                 string    `gorm:"not null;size:60"`
	Model                string    `gorm:"not null;size:60"`
	Year                 int       `gorm:"not null;default:0"`
	RegistrationNumber   string    `gorm:"uniqueIndex;not null;size:20"`
	RatePerDayCents      int64     `gorm:"not null"`
	SecurityDepositCents int64     `gorm:"not null;default:0"`
	Status               string    `gorm:"not null;size:20;index"`
	Version              int64     `gorm:"not null;default:1"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VehicleModel) TableName() string {
	return "vehicles"
}

// CategoryModel is the GORM model for the vehicle_categories table.
type CategoryModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                 string    `gorm:"uniqueIndex;not null;size:60"`
	BaseRatePerDayCents  int64     `gorm:"not null"`
	SecurityDepositCents int64     `gorm:"not null;default:0"`
	MinimumRentalDays    int       `gorm:"not null;default:0"`
	MaximumRentalDays    int       `gorm:"not null;default:0"`
	IsActive             bool      `gorm:"not null;default:true"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CategoryModel) TableName() string {
	return "vehicle_categories"
}

// GormVehicleRepository is the GORM-based implementation of vehicle.Repository.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID retrieves a vehicle by its unique identifier.
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toDomainVehicle(&model), nil
}

// ListBookable retrieves available vehicles, cheapest first, with pagination.
func (r *GormVehicleRepository) ListBookable(ctx context.Context, page, limit int) ([]*vehicleDomain.Vehicle, int64, error) {
	q := r.db.WithContext(ctx).Model(&VehicleModel{}).
		Where("status = ?", string(vehicleDomain.StatusAvailable))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	var models []VehicleModel
	offset := (page - 1) * limit
	if err := q.
		Order("rate_per_day_cents ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*vehicleDomain.Vehicle, len(models))
	for i, m := range models {
		vehicles[i] = toDomainVehicle(&m)
	}
	return vehicles, total, nil
}

// CheckAvailable reports whether the vehicle may currently be offered for a
// new booking.
func (r *GormVehicleRepository) CheckAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	v, err := r.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return v.IsBookable(), nil
}

// Save persists a new vehicle.
func (r *GormVehicleRepository) Save(ctx context.Context, v *vehicleDomain.Vehicle) error {
	if err := r.db.WithContext(ctx).Create(toVehicleModel(v)).Error; err != nil {
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

// Update persists changes to an existing vehicle with optimistic locking.
func (r *GormVehicleRepository) Update(ctx context.Context, v *vehicleDomain.Vehicle) error {
	model := toVehicleModel(v)
	expectedVersion := v.Version() - 1

	res := r.db.WithContext(ctx).Model(&VehicleModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update vehicle: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewConflictError("vehicle was modified by another transaction")
	}
	return nil
}

// GormCategoryRepository is the GORM-based implementation of vehicle.CategoryRepository.
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository.
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID retrieves a category by its unique identifier.
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*vehicleDomain.Category, error) {
	var model CategoryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("VehicleCategory", id.String())
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}
	return toDomainCategory(&model), nil
}

// ListActive retrieves all active categories.
func (r *GormCategoryRepository) ListActive(ctx context.Context) ([]*vehicleDomain.Category, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]*vehicleDomain.Category, len(models))
	for i, m := range models {
		categories[i] = toDomainCategory(&m)
	}
	return categories, nil
}

// --- Conversion Helpers ---

func toVehicleModel(v *vehicleDomain.Vehicle) *VehicleModel {
	return &VehicleModel{
		ID:                   v.ID(),
		CategoryID:           v.CategoryID(),
		Make:                 v.Make(),
		Model:                v.Model(),
		Year:                 v.Year(),
		RegistrationNumber:   v.RegistrationNumber(),
		RatePerDayCents:      v.RatePerDayCents(),
		SecurityDepositCents: v.SecurityDepositCents(),
		Status:               string(v.Status()),
		Version:              v.Version(),
		CreatedAt:            v.CreatedAt(),
		UpdatedAt:            v.UpdatedAt(),
	}
}

func toDomainVehicle(m *VehicleModel) *vehicleDomain.Vehicle {
	return vehicleDomain.ReconstructVehicle(
		m.ID,
		m.CategoryID,
		m.Make,
		m.Model,
		m.Year,
		m.RegistrationNumber,
		m.RatePerDayCents,
		m.SecurityDepositCents,
		vehicleDomain.VehicleStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainCategory(m *CategoryModel) *vehicleDomain.Category {
	return vehicleDomain.ReconstructCategory(
		m.ID,
		m.Name,
		m.BaseRatePerDayCents,
		m.SecurityDepositCents,
		m.MinimumRentalDays,
		m.MaximumRentalDays,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
