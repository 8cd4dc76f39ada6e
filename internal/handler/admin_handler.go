package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/premium-car-rentals/service-rental/internal/application"
	"github.com/premium-car-rentals/service-rental/internal/auth"
	bookingDomain "github.com/premium-car-rentals/service-rental/internal/domain/booking"
	"github.com/premium-car-rentals/service-rental/internal/middleware"
	"github.com/premium-car-rentals/service-rental/internal/response"
)

// AdminHandler handles the admin surface: booking lifecycle management and
// fleet administration.
type AdminHandler struct {
	bookings *application.BookingService
	fleet    *application.FleetService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, fleet *application.FleetService) *AdminHandler {
	return &AdminHandler{bookings: bookings, fleet: fleet}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/stats", h.GetStats)
		admin.POST("/bookings/:id/status", h.UpdateBookingStatus)
		admin.POST("/bookings/:id/confirm", h.ConfirmBooking)
		admin.POST("/bookings/:id/pickup", h.ActivateBooking)
		admin.POST("/bookings/:id/return", h.CompleteBooking)

		admin.POST("/vehicles", h.CreateVehicle)
		admin.GET("/vehicles/:id/bookings", h.GetVehicleBookings)
		admin.POST("/vehicles/:id/maintenance", h.PlaceUnderMaintenance)
		admin.POST("/vehicles/:id/unavailable", h.MarkUnavailable)
		admin.POST("/vehicles/:id/activate", h.ReturnToService)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	dtos, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dtos, total, page, limit)
}

// GetStats handles GET /api/v1/admin/bookings/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	result, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBookingStatus handles POST /api/v1/admin/bookings/:id/status, driving
// the booking to an arbitrary target status through the transition table.
func (h *AdminHandler) UpdateBookingStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	target, err := bookingDomain.ParseStatus(body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.bookings.TransitionBooking(c.Request.Context(), bookingID, target, body.Reason, "admin")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ConfirmBooking handles POST /api/v1/admin/bookings/:id/confirm.
func (h *AdminHandler) ConfirmBooking(c *gin.Context) {
	h.applyTransition(c, h.bookings.ConfirmBooking)
}

// ActivateBooking handles POST /api/v1/admin/bookings/:id/pickup.
func (h *AdminHandler) ActivateBooking(c *gin.Context) {
	h.applyTransition(c, h.bookings.ActivateBooking)
}

// CompleteBooking handles POST /api/v1/admin/bookings/:id/return.
func (h *AdminHandler) CompleteBooking(c *gin.Context) {
	h.applyTransition(c, h.bookings.CompleteBooking)
}

func (h *AdminHandler) applyTransition(c *gin.Context, op func(ctx context.Context, bookingID uuid.UUID) (*application.BookingDTO, error)) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := op(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func (h *AdminHandler) applyVehicleOp(c *gin.Context, op func(ctx context.Context, vehicleID uuid.UUID) (*application.VehicleDTO, error)) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	result, err := op(c.Request.Context(), vehicleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateVehicle handles POST /api/v1/admin/vehicles.
func (h *AdminHandler) CreateVehicle(c *gin.Context) {
	var req application.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.fleet.CreateVehicle(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetVehicleBookings handles GET /api/v1/admin/vehicles/:id/bookings.
func (h *AdminHandler) GetVehicleBookings(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	page, limit := parsePagination(c)

	result, err := h.bookings.GetVehicleBookings(c.Request.Context(), vehicleID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// PlaceUnderMaintenance handles POST /api/v1/admin/vehicles/:id/maintenance.
func (h *AdminHandler) PlaceUnderMaintenance(c *gin.Context) {
	h.applyVehicleOp(c, h.fleet.PlaceUnderMaintenance)
}

// MarkUnavailable handles POST /api/v1/admin/vehicles/:id/unavailable.
func (h *AdminHandler) MarkUnavailable(c *gin.Context) {
	h.applyVehicleOp(c, h.fleet.MarkUnavailable)
}

// ReturnToService handles POST /api/v1/admin/vehicles/:id/activate.
func (h *AdminHandler) ReturnToService(c *gin.Context) {
	h.applyVehicleOp(c, h.fleet.ReturnToService)
}
