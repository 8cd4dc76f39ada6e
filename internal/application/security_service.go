package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/premium-car-rentals/service-rental/internal/domain"
	"github.com/premium-car-rentals/service-rental/internal/domain/security"
)

// RecordAttemptRequest reports one login attempt outcome for an identifier.
type RecordAttemptRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Success    bool   `json:"success"`
}

// SecurityService applies login throttling on behalf of the auth frontends.
type SecurityService struct {
	store  security.Store
	logger *zap.Logger
}

// NewSecurityService creates a new SecurityService.
func NewSecurityService(store security.Store, logger *zap.Logger) *SecurityService {
	return &SecurityService{store: store, logger: logger}
}

// RecordAttempt registers a login attempt and returns whether further
// attempts are allowed.
func (s *SecurityService) RecordAttempt(ctx context.Context, req RecordAttemptRequest) (*security.Decision, error) {
	if req.Identifier == "" {
		return nil, domain.NewFieldValidationError("identifier", "identifier is required")
	}

	decision, err := s.store.Record(ctx, req.Identifier, req.Success, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if !decision.Allowed {
		s.logger.Warn("login attempt throttled",
			zap.String("identifier", req.Identifier),
			zap.Timep("locked_until", decision.LockedUntil),
		)
	}
	return &decision, nil
}

// StartExpirySweep periodically purges expired throttle state until the
// context is cancelled.
func (s *SecurityService) StartExpirySweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.store.PurgeExpired(ctx, time.Now().UTC())
			if err != nil {
				s.logger.Error("failed to purge expired login attempts", zap.Error(err))
				continue
			}
			if purged > 0 {
				s.logger.Info("purged expired login attempts", zap.Int64("count", purged))
			}
		}
	}
}
