package contract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seeyebe/gmap/schema"
)

// DateOnlyFormat is the calendar date layout accepted for range bounds.
const DateOnlyFormat = "2006-01-02"

// Define the regular expression to capture "N [units] ago"
// e.g., "2 years ago", "3 months ago", "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 weeks ago" into a time in the past.
// Months are 30 days and years are 365 days.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative time value %q: %w", matches[1], err)
	}
	day := 24 * time.Hour

	var unit time.Duration
	switch matches[2] {
	case "year":
		unit = 365 * day
	case "month":
		unit = 30 * day
	case "week":
		unit = 7 * day
	case "day":
		unit = day
	case "hour":
		unit = time.Hour
	default: // minute
		unit = time.Minute
	}
	return now.Add(-time.Duration(value) * unit), nil
}

// ParseAbsoluteTime accepts RFC3339 timestamps and YYYY-MM-DD dates (midnight UTC).
func ParseAbsoluteTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateOnlyFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid absolute time %q: expected RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// RevisionTime resolves rev and returns the commit time it points at.
func RevisionTime(ctx context.Context, store ObjectStore, rev string) (time.Time, error) {
	id, err := store.ResolveRevision(ctx, rev)
	if err != nil {
		return time.Time{}, err
	}
	obj, err := store.ReadCommit(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	return obj.Timestamp, nil
}

// ParseTimeBound parses one range bound. It tries an absolute time, then "N units ago",
// then falls back to the commit time of a revision. An empty string yields the zero time.
func ParseTimeBound(ctx context.Context, s string, now time.Time, store ObjectStore) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := ParseAbsoluteTime(s); err == nil {
		return t, nil
	}
	if t, err := ParseRelativeTime(s, now); err == nil {
		return t, nil
	}
	if store == nil {
		return time.Time{}, Errorf(KindResolve, "parse time", "%q is not a date, a relative time or a known revision", s)
	}
	t, err := RevisionTime(ctx, store, s)
	if err != nil {
		return time.Time{}, Errorf(KindResolve, "parse time", "%q is not a date, a relative time or a known revision: %w", s, err)
	}
	return t, nil
}

// ResolveRange parses since and until and validates their order.
func ResolveRange(ctx context.Context, since, until string, now time.Time, store ObjectStore) (schema.DateRange, error) {
	sinceTime, err := ParseTimeBound(ctx, since, now, store)
	if err != nil {
		return schema.DateRange{}, err
	}
	untilTime, err := ParseTimeBound(ctx, until, now, store)
	if err != nil {
		return schema.DateRange{}, err
	}
	rng, err := schema.NewDateRange(sinceTime, untilTime)
	if err != nil {
		return schema.DateRange{}, NewError(KindResolve, "resolve range", err)
	}
	return rng, nil
}
