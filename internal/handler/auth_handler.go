package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/premium-car-rentals/service-rental/internal/application"
	"github.com/premium-car-rentals/service-rental/internal/auth"
	"github.com/premium-car-rentals/service-rental/internal/middleware"
	"github.com/premium-car-rentals/service-rental/internal/response"
)

// AuthHandler exposes the login throttle to the authentication frontends.
// Callers report each attempt's outcome and are told whether further
// attempts are allowed.
type AuthHandler struct {
	service *application.SecurityService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *application.SecurityService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers the auth throttle routes. The endpoint is
// service-to-service; frontends authenticate with an admin-role token.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	attempts := r.Group("/api/v1/auth/attempts")
	attempts.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		attempts.POST("", h.RecordAttempt)
	}
}

// RecordAttempt handles POST /api/v1/auth/attempts.
func (h *AuthHandler) RecordAttempt(c *gin.Context) {
	var req application.RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	decision, err := h.service.RecordAttempt(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !decision.Allowed {
		c.JSON(http.StatusTooManyRequests, response.Envelope{Success: false, Data: decision})
		return
	}

	response.Success(c, decision)
}
