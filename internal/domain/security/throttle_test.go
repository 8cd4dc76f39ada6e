package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("failures below the threshold stay allowed", func(t *testing.T) {
		state := &AttemptState{Identifier: "user@example.com"}

		for i := 1; i < MaxFailedAttempts; i++ {
			d := Apply(state, false, base.Add(time.Duration(i)*time.Second))
			assert.True(t, d.Allowed, "attempt %d", i)
			assert.Equal(t, MaxFailedAttempts-i, d.RemainingAttempts)
			assert.Nil(t, d.LockedUntil)
		}
	})

	t.Run("fifth failure locks the identifier", func(t *testing.T) {
		state := &AttemptState{Identifier: "user@example.com"}

		var d Decision
		for i := 0; i < MaxFailedAttempts; i++ {
			d = Apply(state, false, base)
		}

		assert.False(t, d.Allowed)
		assert.Equal(t, 0, d.RemainingAttempts)
		require.NotNil(t, d.LockedUntil)
		assert.Equal(t, base.Add(LockDuration), *d.LockedUntil)
	})

	t.Run("active lock denies without counting", func(t *testing.T) {
		lockedUntil := base.Add(LockDuration)
		state := &AttemptState{
			Identifier:  "user@example.com",
			Attempts:    MaxFailedAttempts,
			WindowStart: base,
			LockedUntil: &lockedUntil,
		}

		d := Apply(state, false, base.Add(time.Minute))
		assert.False(t, d.Allowed)
		assert.Equal(t, MaxFailedAttempts, state.Attempts, "denied attempt must not count")

		// Even a correct password is refused while locked.
		d = Apply(state, true, base.Add(2*time.Minute))
		assert.False(t, d.Allowed)
	})

	t.Run("lock expiry starts a fresh window", func(t *testing.T) {
		lockedUntil := base.Add(LockDuration)
		state := &AttemptState{
			Identifier:  "user@example.com",
			Attempts:    MaxFailedAttempts,
			WindowStart: base,
			LockedUntil: &lockedUntil,
		}

		after := base.Add(LockDuration + time.Second)
		d := Apply(state, false, after)
		assert.True(t, d.Allowed)
		assert.Equal(t, MaxFailedAttempts-1, d.RemainingAttempts)
		assert.Equal(t, 1, state.Attempts)
	})

	t.Run("success resets the counter", func(t *testing.T) {
		state := &AttemptState{Identifier: "user@example.com"}

		Apply(state, false, base)
		Apply(state, false, base.Add(time.Second))

		d := Apply(state, true, base.Add(2*time.Second))
		assert.True(t, d.Allowed)
		assert.Equal(t, MaxFailedAttempts, d.RemainingAttempts)
		assert.Equal(t, 0, state.Attempts)
	})

	t.Run("lapsed window restarts the count", func(t *testing.T) {
		state := &AttemptState{Identifier: "user@example.com"}

		for i := 0; i < MaxFailedAttempts-1; i++ {
			Apply(state, false, base)
		}

		d := Apply(state, false, base.Add(RateWindow+time.Second))
		assert.True(t, d.Allowed, "stale failures must not contribute to the lock")
		assert.Equal(t, 1, state.Attempts)
	})
}

func TestAttemptState_Expired(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("live window is not expired", func(t *testing.T) {
		state := &AttemptState{WindowStart: base, Attempts: 2}
		assert.False(t, state.Expired(base.Add(time.Minute)))
	})

	t.Run("active lock is not expired", func(t *testing.T) {
		lockedUntil := base.Add(LockDuration)
		state := &AttemptState{WindowStart: base.Add(-RateWindow * 2), LockedUntil: &lockedUntil}
		assert.False(t, state.Expired(base))
	})

	t.Run("lapsed window and lock are expired", func(t *testing.T) {
		lockedUntil := base.Add(LockDuration)
		state := &AttemptState{WindowStart: base, LockedUntil: &lockedUntil}
		assert.True(t, state.Expired(base.Add(RateWindow+LockDuration+time.Second)))
	})
}
