package booking

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

const (
	referencePrefix = "CR"
	referenceSpace  = 10000

	// MaxReferenceAttempts bounds how many fresh references are tried when
	// an insert collides with the booking_reference UNIQUE constraint. The
	// suffix space is only 10,000 values per month, so collisions are
	// expected under load and must be retried rather than trusted away.
	MaxReferenceAttempts = 5
)

// ErrReferenceTaken is returned by the repository when a booking insert hits
// the booking_reference uniqueness constraint. Callers regenerate and retry.
var ErrReferenceTaken = errors.New("booking reference already taken")

var referencePattern = regexp.MustCompile(`^CR\d{2}(0[1-9]|1[0-2])\d{4}$`)

// NewReference mints a booking reference in the format CR + two-digit year +
// two-digit month + four-digit zero-padded random number, e.g. CR25060427.
// The format is fixed for compatibility with existing records.
func NewReference(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(referenceSpace))
	if err != nil {
		return "", fmt.Errorf("failed to generate booking reference: %w", err)
	}
	return fmt.Sprintf("%s%s%04d", referencePrefix, now.Format("0601"), n.Int64()), nil
}

// IsValidReference reports whether s matches the booking reference format.
func IsValidReference(s string) bool {
	return referencePattern.MatchString(s)
}
