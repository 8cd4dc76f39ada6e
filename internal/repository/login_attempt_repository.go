package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/premium-car-rentals/service-rental/internal/domain/security"
)

// LoginAttemptModel is the GORM model for the login_attempts table. One row
// per identifier (e.g. "client_login_<ip>" or an email), shared by every
// service instance so a lock cannot be evaded by routing.
type LoginAttemptModel struct {
	Identifier  string     `gorm:"primaryKey;size:255"`
	Attempts    int        `gorm:"not null;default:0"`
	WindowStart time.Time  `gorm:"not null"`
	LockedUntil *time.Time `gorm:""`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (LoginAttemptModel) TableName() string {
	return "login_attempts"
}

// GormLoginAttemptStore is the GORM-based implementation of security.Store.
type GormLoginAttemptStore struct {
	db *gorm.DB
}

// NewGormLoginAttemptStore creates a new GormLoginAttemptStore.
func NewGormLoginAttemptStore(db *gorm.DB) *GormLoginAttemptStore {
	return &GormLoginAttemptStore{db: db}
}

// Record applies one login attempt for the identifier. The row is locked for
// the duration of the transaction so concurrent attempts against the same
// identifier serialize instead of losing counts.
func (s *GormLoginAttemptStore) Record(ctx context.Context, identifier string, success bool, now time.Time) (security.Decision, error) {
	var decision security.Decision

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model LoginAttemptModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("identifier = ?", identifier).
			First(&model).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model = LoginAttemptModel{
				Identifier:  identifier,
				WindowStart: now,
			}
		case err != nil:
			return fmt.Errorf("failed to load login attempt state: %w", err)
		}

		state := security.AttemptState{
			Identifier:  model.Identifier,
			Attempts:    model.Attempts,
			WindowStart: model.WindowStart,
			LockedUntil: model.LockedUntil,
		}
		decision = security.Apply(&state, success, now)

		model.Attempts = state.Attempts
		model.WindowStart = state.WindowStart
		model.LockedUntil = state.LockedUntil
		model.UpdatedAt = now

		if err := tx.Save(&model).Error; err != nil {
			return fmt.Errorf("failed to persist login attempt state: %w", err)
		}
		return nil
	})
	if err != nil {
		return security.Decision{}, err
	}
	return decision, nil
}

// PurgeExpired deletes rows whose window and lock have both lapsed.
func (s *GormLoginAttemptStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("(locked_until IS NULL OR locked_until <= ?) AND window_start <= ?",
			now, now.Add(-security.RateWindow)).
		Delete(&LoginAttemptModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge login attempt state: %w", res.Error)
	}
	return res.RowsAffected, nil
}
