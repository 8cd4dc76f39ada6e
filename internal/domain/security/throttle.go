// Package security implements login attempt throttling shared by the admin
// and customer login flows. State is keyed per identifier and lives in a
// process-independent store so the lock cannot be evaded by load-balancer
// routing.
package security

import (
	"context"
	"time"
)

const (
	// MaxFailedAttempts is the number of failures within the rate window
	// that locks the identifier.
	MaxFailedAttempts = 5

	// RateWindow is how long a failed-attempt counter survives without
	// further failures before resetting.
	RateWindow = 15 * time.Minute

	// LockDuration is how long an identifier stays locked after crossing
	// the failure threshold.
	LockDuration = 15 * time.Minute
)

// AttemptState is the per-identifier throttle state.
type AttemptState struct {
	Identifier  string
	Attempts    int
	WindowStart time.Time
	LockedUntil *time.Time
}

// Decision is the outcome of recording a login attempt.
type Decision struct {
	Allowed           bool       `json:"allowed"`
	RemainingAttempts int        `json:"remaining_attempts"`
	LockedUntil       *time.Time `json:"locked_until,omitempty"`
}

// Apply records one attempt against the state and returns the throttle
// decision. It mutates state; persisting the mutation atomically is the
// store's responsibility.
//
// Rules:
//   - An active lock denies the attempt without counting it.
//   - A success resets the counter and clears any expired lock.
//   - A failure increments the counter, restarting the window if the
//     previous one has lapsed; the failure that reaches the threshold sets
//     the lock from that moment.
func Apply(state *AttemptState, success bool, now time.Time) Decision {
	if state.LockedUntil != nil {
		if now.Before(*state.LockedUntil) {
			lockedUntil := *state.LockedUntil
			return Decision{Allowed: false, RemainingAttempts: 0, LockedUntil: &lockedUntil}
		}
		// Lock elapsed: start over.
		state.LockedUntil = nil
		state.Attempts = 0
	}

	if success {
		state.Attempts = 0
		state.WindowStart = now
		state.LockedUntil = nil
		return Decision{Allowed: true, RemainingAttempts: MaxFailedAttempts}
	}

	if state.Attempts == 0 || now.Sub(state.WindowStart) > RateWindow {
		state.Attempts = 1
		state.WindowStart = now
	} else {
		state.Attempts++
	}

	if state.Attempts >= MaxFailedAttempts {
		lockedUntil := now.Add(LockDuration)
		state.LockedUntil = &lockedUntil
		return Decision{Allowed: false, RemainingAttempts: 0, LockedUntil: &lockedUntil}
	}

	return Decision{Allowed: true, RemainingAttempts: MaxFailedAttempts - state.Attempts}
}

// Expired reports whether the state carries no live information at now and
// may be purged from the store.
func (s *AttemptState) Expired(now time.Time) bool {
	if s.LockedUntil != nil && now.Before(*s.LockedUntil) {
		return false
	}
	return now.Sub(s.WindowStart) > RateWindow
}

// Store is the persistence contract for throttle state. Record must apply
// the attempt atomically per identifier.
type Store interface {
	// Record loads (or creates) the identifier's state, applies the
	// attempt, persists the result and returns the decision.
	Record(ctx context.Context, identifier string, success bool, now time.Time) (Decision, error)

	// PurgeExpired deletes states carrying no live window or lock at now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
