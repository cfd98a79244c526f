package schema

import (
	"fmt"
	"time"
)

// DateRange is an inclusive window over commit timestamps.
// A zero Since or Until means the bound is absent.
type DateRange struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

// NewDateRange builds a range and rejects one whose since bound is after its until bound.
func NewDateRange(since, until time.Time) (DateRange, error) {
	if !since.IsZero() && !until.IsZero() && since.After(until) {
		return DateRange{}, fmt.Errorf("invalid range: since %s is after until %s",
			since.Format(time.RFC3339), until.Format(time.RFC3339))
	}
	return DateRange{Since: since, Until: until}, nil
}

// Contains reports whether t satisfies every present bound.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Since.IsZero() && t.Before(r.Since) {
		return false
	}
	if !r.Until.IsZero() && t.After(r.Until) {
		return false
	}
	return true
}

// IsUnbounded is true when neither bound is set.
func (r DateRange) IsUnbounded() bool {
	return r.Since.IsZero() && r.Until.IsZero()
}

// SinceUnix returns the smallest whole second that is not before Since.
func (r DateRange) SinceUnix() int64 {
	s := r.Since.Unix()
	if r.Since.Nanosecond() > 0 {
		s++
	}
	return s
}

// UntilUnix returns the largest whole second that is not after Until.
func (r DateRange) UntilUnix() int64 {
	return r.Until.Unix()
}
