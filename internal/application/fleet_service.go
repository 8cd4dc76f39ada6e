package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/premium-car-rentals/service-rental/internal/domain"
	bookingDomain "github.com/premium-car-rentals/service-rental/internal/domain/booking"
	vehicleDomain "github.com/premium-car-rentals/service-rental/internal/domain/vehicle"
)

// CreateVehicleRequest holds the data needed to register a fleet vehicle.
type CreateVehicleRequest struct {
	CategoryID         uuid.UUID `json:"category_id" binding:"required"`
	Make               string    `json:"make" binding:"required"`
	Model              string    `json:"model" binding:"required"`
	Year               int       `json:"year"`
	RegistrationNumber string    `json:"registration_number" binding:"required"`
}

// VehicleDTO is the response representation of a fleet vehicle.
type VehicleDTO struct {
	ID                   uuid.UUID `json:"id"`
	CategoryID           uuid.UUID `json:"category_id"`
	Make                 string    `json:"make"`
	Model                string    `json:"model"`
	Year                 int       `json:"year"`
	RegistrationNumber   string    `json:"registration_number"`
	RatePerDayCents      int64     `json:"rate_per_day_cents"`
	SecurityDepositCents int64     `json:"security_deposit_cents"`
	Status               string    `json:"status"`
	Version              int64     `json:"version"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CategoryDTO is the response representation of a vehicle category.
type CategoryDTO struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	BaseRatePerDayCents  int64     `json:"base_rate_per_day_cents"`
	SecurityDepositCents int64     `json:"security_deposit_cents"`
	MinimumRentalDays    int       `json:"minimum_rental_days"`
	MaximumRentalDays    int       `json:"maximum_rental_days"`
}

// AvailabilityDTO reports whether a vehicle may currently be booked.
type AvailabilityDTO struct {
	VehicleID uuid.UUID `json:"vehicle_id"`
	Available bool      `json:"available"`
}

// FleetService is the application service for the vehicle fleet.
type FleetService struct {
	vehicleRepo  vehicleDomain.Repository
	categoryRepo vehicleDomain.CategoryRepository
	bookingRepo  bookingDomain.Repository
	logger       *zap.Logger
}

// NewFleetService creates a new FleetService.
func NewFleetService(
	vehicleRepo vehicleDomain.Repository,
	categoryRepo vehicleDomain.CategoryRepository,
	bookingRepo bookingDomain.Repository,
	logger *zap.Logger,
) *FleetService {
	return &FleetService{
		vehicleRepo:  vehicleRepo,
		categoryRepo: categoryRepo,
		bookingRepo:  bookingRepo,
		logger:       logger,
	}
}

// CreateVehicle registers a new vehicle, seeding its pricing from the
// category defaults (admin).
func (s *FleetService) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*VehicleDTO, error) {
	cat, err := s.categoryRepo.FindByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	v, err := vehicleDomain.NewVehicle(cat, req.Make, req.Model, req.Year, req.RegistrationNumber)
	if err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.Save(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle registered",
		zap.String("vehicle_id", v.ID().String()),
		zap.String("registration", v.RegistrationNumber()),
	)

	result := toVehicleDTO(v)
	return &result, nil
}

// GetVehicle retrieves a single vehicle by ID.
func (s *FleetService) GetVehicle(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error) {
	v, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	result := toVehicleDTO(v)
	return &result, nil
}

// ListBookableVehicles retrieves offerable vehicles, cheapest first.
func (s *FleetService) ListBookableVehicles(ctx context.Context, page, limit int) (*domain.PaginatedResult[VehicleDTO], error) {
	vehicles, total, err := s.vehicleRepo.ListBookable(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// CheckAvailability reports whether the vehicle may currently be booked. The
// answer is informational; the booking-create transaction is authoritative.
func (s *FleetService) CheckAvailability(ctx context.Context, vehicleID uuid.UUID) (*AvailabilityDTO, error) {
	available, err := s.vehicleRepo.CheckAvailable(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return &AvailabilityDTO{VehicleID: vehicleID, Available: available}, nil
}

// PlaceUnderMaintenance takes the vehicle out of rotation.
func (s *FleetService) PlaceUnderMaintenance(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error) {
	return s.updateVehicle(ctx, vehicleID, (*vehicleDomain.Vehicle).PlaceUnderMaintenance)
}

// MarkUnavailable removes the vehicle from the offerable fleet.
func (s *FleetService) MarkUnavailable(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error) {
	return s.updateVehicle(ctx, vehicleID, (*vehicleDomain.Vehicle).MarkUnavailable)
}

// ReturnToService lifts an administrative hold. The vehicle goes back to
// reserved when a holding booking still references it, to available otherwise.
func (s *FleetService) ReturnToService(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error) {
	holding, err := s.bookingRepo.CountHoldingForVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return s.updateVehicle(ctx, vehicleID, func(v *vehicleDomain.Vehicle) {
		v.ReturnToService(holding > 0)
	})
}

func (s *FleetService) updateVehicle(ctx context.Context, vehicleID uuid.UUID, mutate func(*vehicleDomain.Vehicle)) (*VehicleDTO, error) {
	v, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	mutate(v)
	if err := s.vehicleRepo.Update(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle status updated",
		zap.String("vehicle_id", v.ID().String()),
		zap.String("status", v.Status().String()),
	)

	result := toVehicleDTO(v)
	return &result, nil
}

// ListCategories retrieves all active categories.
func (s *FleetService) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	dtos := make([]CategoryDTO, len(categories))
	for i, cat := range categories {
		dtos[i] = CategoryDTO{
			ID:                   cat.ID(),
			Name:                 cat.Name(),
			BaseRatePerDayCents:  cat.BaseRatePerDayCents(),
			SecurityDepositCents: cat.SecurityDepositCents(),
			MinimumRentalDays:    cat.MinimumRentalDays(),
			MaximumRentalDays:    cat.MaximumRentalDays(),
		}
	}
	return dtos, nil
}

func toVehicleDTO(v *vehicleDomain.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:                   v.ID(),
		CategoryID:           v.CategoryID(),
		Make:                 v.Make(),
		Model:                v.Model(),
		Year:                 v.Year(),
		RegistrationNumber:   v.RegistrationNumber(),
		RatePerDayCents:      v.RatePerDayCents(),
		SecurityDepositCents: v.SecurityDepositCents(),
		Status:               v.Status().String(),
		Version:              v.Version(),
		CreatedAt:            v.CreatedAt(),
		UpdatedAt:            v.UpdatedAt(),
	}
}
