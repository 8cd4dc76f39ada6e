// Package application contains the use-case services orchestrating the
// domain, persistence and messaging layers.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/premium-car-rentals/service-rental/internal/auth"
	"github.com/premium-car-rentals/service-rental/internal/domain"
	bookingDomain "github.com/premium-car-rentals/service-rental/internal/domain/booking"
	vehicleDomain "github.com/premium-car-rentals/service-rental/internal/domain/vehicle"
	"github.com/premium-car-rentals/service-rental/internal/events"
	"github.com/premium-car-rentals/service-rental/internal/kafka"
)

// dateLayout is the wire format for pickup and return dates.
const dateLayout = "2006-01-02"

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	VehicleID       uuid.UUID `json:"vehicle_id" binding:"required"`
	PickupDate      string    `json:"pickup_date" binding:"required"`
	ReturnDate      string    `json:"return_date" binding:"required"`
	PickupLocation  string    `json:"pickup_location" binding:"required"`
	ReturnLocation  string    `json:"return_location" binding:"required"`
	SpecialRequests string    `json:"special_requests"`
}

// QuoteRequest holds the data needed to price a rental without booking it.
type QuoteRequest struct {
	VehicleID  uuid.UUID `json:"vehicle_id" binding:"required"`
	PickupDate string    `json:"pickup_date" binding:"required"`
	ReturnDate string    `json:"return_date" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                   uuid.UUID  `json:"id"`
	BookingReference     string     `json:"booking_reference"`
	CustomerID           uuid.UUID  `json:"customer_id"`
	VehicleID            uuid.UUID  `json:"vehicle_id"`
	Status               string     `json:"status"`
	PickupDate           string     `json:"pickup_date"`
	ReturnDate           string     `json:"return_date"`
	PickupLocation       string     `json:"pickup_location"`
	ReturnLocation       string     `json:"return_location"`
	SpecialRequests      string     `json:"special_requests,omitempty"`
	TotalDays            int        `json:"total_days"`
	RatePerDayCents      int64      `json:"rate_per_day_cents"`
	SubtotalCents        int64      `json:"subtotal_cents"`
	TotalCostCents       int64      `json:"total_cost_cents"`
	SecurityDepositCents int64      `json:"security_deposit_cents"`
	ConfirmedAt          *time.Time `json:"confirmed_at,omitempty"`
	PickedUpAt           *time.Time `json:"picked_up_at,omitempty"`
	ReturnedAt           *time.Time `json:"returned_at,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason   string     `json:"cancellation_reason,omitempty"`
	CancelledBy          string     `json:"cancelled_by,omitempty"`
	Version              int64      `json:"version"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// EventPublisher is the slice of the Kafka producer the services need.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo         bookingDomain.Repository
	vehicleRepo  vehicleDomain.Repository
	categoryRepo vehicleDomain.CategoryRepository
	pricing      *bookingDomain.PricingCalculator
	producer     EventPublisher
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	vehicleRepo vehicleDomain.Repository,
	categoryRepo vehicleDomain.CategoryRepository,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:         repo,
		vehicleRepo:  vehicleRepo,
		categoryRepo: categoryRepo,
		pricing:      bookingDomain.NewPricingCalculator(),
		producer:     producer,
		logger:       logger,
	}
}

// QuoteRental prices a rental for the given vehicle and dates without
// creating a booking.
func (s *BookingService) QuoteRental(ctx context.Context, req QuoteRequest) (*bookingDomain.Quote, error) {
	v, cat, err := s.loadVehicleWithCategory(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	pickupDate, returnDate, err := parseDates(req.PickupDate, req.ReturnDate)
	if err != nil {
		return nil, err
	}

	quote, err := s.pricing.Calculate(
		v.RatePerDayCents(), v.SecurityDepositCents(),
		pickupDate, returnDate,
		cat.MinimumRentalDays(), cat.MaximumRentalDays(),
	)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateBooking creates a pending booking for the customer and reserves the
// vehicle. Pricing is frozen from the vehicle's current rate.
func (s *BookingService) CreateBooking(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	v, cat, err := s.loadVehicleWithCategory(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsBookable() {
		return nil, domain.NewUnavailableError("vehicle is not available for booking")
	}

	pickupDate, returnDate, err := parseDates(req.PickupDate, req.ReturnDate)
	if err != nil {
		return nil, err
	}

	quote, err := s.pricing.Calculate(
		v.RatePerDayCents(), v.SecurityDepositCents(),
		pickupDate, returnDate,
		cat.MinimumRentalDays(), cat.MaximumRentalDays(),
	)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		customerID, v.ID(),
		pickupDate, returnDate,
		req.PickupLocation, req.ReturnLocation, req.SpecialRequests,
		quote,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.createWithReferenceRetry(ctx, bk); err != nil {
		return nil, err
	}

	s.publishBookingCreated(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// createWithReferenceRetry inserts the booking, minting a fresh reference and
// retrying when the insert collides with an existing reference.
func (s *BookingService) createWithReferenceRetry(ctx context.Context, bk *bookingDomain.Booking) error {
	for attempt := 1; ; attempt++ {
		err := s.repo.Create(ctx, bk)
		if err == nil {
			return nil
		}
		if !errors.Is(err, bookingDomain.ErrReferenceTaken) {
			return err
		}
		if attempt >= bookingDomain.MaxReferenceAttempts {
			s.logger.Error("booking reference space exhausted",
				zap.Int("attempts", attempt),
			)
			return domain.NewExhaustedError("could not allocate a unique booking reference")
		}

		s.logger.Warn("booking reference collision, regenerating",
			zap.String("reference", bk.BookingReference()),
			zap.Int("attempt", attempt),
		)
		if err := bk.RegenerateReference(time.Now().UTC()); err != nil {
			return err
		}
	}
}

// ConfirmBooking approves a pending booking (admin).
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, bookingDomain.StatusConfirmed, "", "")
}

// ActivateBooking marks the vehicle as picked up (admin).
func (s *BookingService) ActivateBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, bookingDomain.StatusActive, "", "")
}

// CompleteBooking marks the vehicle as returned (admin). The vehicle is
// released back to the offerable fleet in the same transaction.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, bookingDomain.StatusCompleted, "", "")
}

// CancelBooking cancels a booking. Customers may only cancel their own
// bookings; admins may cancel any.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, actorRole, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorRole != auth.RoleAdmin && bk.CustomerID() != actorID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	cancelledBy := "customer"
	if actorRole == auth.RoleAdmin {
		cancelledBy = "admin"
	}
	return s.transition(ctx, bookingID, bookingDomain.StatusCancelled, reason, cancelledBy)
}

// TransitionBooking drives a booking to the target status (admin).
func (s *BookingService) TransitionBooking(ctx context.Context, bookingID uuid.UUID, target bookingDomain.Status, reason, actor string) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, target, reason, actor)
}

// transition loads the booking, applies the transition and persists it with
// optimistic locking. One reload-and-retry absorbs a concurrent writer; a
// second conflict surfaces to the caller.
func (s *BookingService) transition(ctx context.Context, bookingID uuid.UUID, target bookingDomain.Status, reason, actor string) (*BookingDTO, error) {
	var bk *bookingDomain.Booking

	for attempt := 0; ; attempt++ {
		var err error
		bk, err = s.repo.FindByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}

		from := bk.Status()
		if err := bk.ApplyTransition(target, reason, actor); err != nil {
			return nil, err
		}

		bk.IncrementVersion()
		err = s.repo.UpdateStatus(ctx, bk)
		if err == nil {
			s.publishBookingTransitioned(ctx, bk, from, reason, actor)
			result := toBookingDTO(bk)
			return &result, nil
		}
		if attempt > 0 || !domain.IsKind(err, domain.KindConflict) {
			return nil, err
		}
	}
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByReference retrieves a booking by its booking reference.
func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*BookingDTO, error) {
	if !bookingDomain.IsValidReference(reference) {
		return nil, domain.NewFieldValidationError("reference", "invalid booking reference format")
	}
	bk, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings for a customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetVehicleBookings retrieves paginated bookings referencing a vehicle (admin).
func (s *BookingService) GetVehicleBookings(ctx context.Context, vehicleID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByVehicleID(ctx, vehicleID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) loadVehicleWithCategory(ctx context.Context, vehicleID uuid.UUID) (*vehicleDomain.Vehicle, *vehicleDomain.Category, error) {
	v, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, nil, err
	}
	cat, err := s.categoryRepo.FindByID(ctx, v.CategoryID())
	if err != nil {
		return nil, nil, err
	}
	return v, cat, nil
}

func parseDates(pickup, ret string) (time.Time, time.Time, error) {
	pickupDate, err := time.Parse(dateLayout, pickup)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewFieldValidationError("pickup_date", "must be formatted as YYYY-MM-DD")
	}
	returnDate, err := time.Parse(dateLayout, ret)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewFieldValidationError("return_date", "must be formatted as YYYY-MM-DD")
	}
	return pickupDate, returnDate, nil
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                   bk.ID(),
		BookingReference:     bk.BookingReference(),
		CustomerID:           bk.CustomerID(),
		VehicleID:            bk.VehicleID(),
		Status:               string(bk.Status()),
		PickupDate:           bk.PickupDate().Format(dateLayout),
		ReturnDate:           bk.ReturnDate().Format(dateLayout),
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

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishBookingCreated(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingCreatedEvent{
		BookingID:        bk.ID(),
		BookingReference: bk.BookingReference(),
		CustomerID:       bk.CustomerID(),
		VehicleID:        bk.VehicleID(),
		PickupDate:       bk.PickupDate(),
		ReturnDate:       bk.ReturnDate(),
		TotalDays:        bk.TotalDays(),
		TotalCostCents:   bk.TotalCostCents(),
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, bk.ID().String(), evt)
}

func (s *BookingService) publishBookingTransitioned(ctx context.Context, bk *bookingDomain.Booking, from bookingDomain.Status, reason, actor string) {
	evt := events.BookingTransitionedEvent{
		BookingID:        bk.ID(),
		BookingReference: bk.BookingReference(),
		CustomerID:       bk.CustomerID(),
		VehicleID:        bk.VehicleID(),
		FromStatus:       string(from),
		ToStatus:         string(bk.Status()),
		Reason:           reason,
		Actor:            actor,
		OccurredAt:       time.Now().UTC(),
	}

	eventType := events.BookingConfirmed
	switch bk.Status() {
	case bookingDomain.StatusActive:
		eventType = events.BookingActivated
	case bookingDomain.StatusCompleted:
		eventType = events.BookingCompleted
	case bookingDomain.StatusCancelled:
		eventType = events.BookingCancelled
	}
	s.publishEvent(ctx, events.TopicBookingEvents, eventType, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(events.EventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
