package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seeyebe/gmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

// TestParseRelativeTimeUnit covers various valid and invalid cases.
func TestParseRelativeTimeUnit(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{
			name:     "plural months are thirty days",
			input:    "3 MoNtHs AgO",
			expected: fixedNow.Add(-90 * 24 * time.Hour),
		},
		{
			name:     "singular week",
			input:    "1 Week Ago",
			expected: fixedNow.Add(-7 * 24 * time.Hour),
		},
		{
			name:     "days with surrounding spaces",
			input:    "  10 days ago ",
			expected: fixedNow.Add(-10 * 24 * time.Hour),
		},
		{
			name:     "years are 365 days",
			input:    "2 years ago",
			expected: fixedNow.Add(-730 * 24 * time.Hour),
		},
		{name: "missing ago", input: "2 years", expectError: true},
		{name: "bad unit", input: "4 decades ago", expectError: true},
		{name: "non-numeric value", input: "one year ago", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseAbsoluteTime(t *testing.T) {
	got, err := ParseAbsoluteTime("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseAbsoluteTime("2024-03-01T12:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC), got.UTC())

	_, err = ParseAbsoluteTime("03/01/2024")
	assert.Error(t, err)
}

func TestParseTimeBound(t *testing.T) {
	ctx := context.Background()
	commitTime := time.Date(2024, time.May, 5, 8, 0, 0, 0, time.UTC)

	store := &MockObjectStore{}
	store.On("ResolveRevision", ctx, "v1.0").Return("abc123", nil)
	store.On("ReadCommit", ctx, "abc123").Return(schema.CommitObject{
		CommitInfo: schema.CommitInfo{ID: "abc123", Timestamp: commitTime},
	}, nil)
	store.On("ResolveRevision", ctx, "nope").Return("", errors.New("reference not found"))

	t.Run("empty is absent", func(t *testing.T) {
		got, err := ParseTimeBound(ctx, "", fixedNow, store)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("revision falls back to commit time", func(t *testing.T) {
		got, err := ParseTimeBound(ctx, "v1.0", fixedNow, store)
		require.NoError(t, err)
		assert.Equal(t, commitTime, got)
	})

	t.Run("unknown revision is a resolve error", func(t *testing.T) {
		_, err := ParseTimeBound(ctx, "nope", fixedNow, store)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrResolve)
	})

	t.Run("dates never hit the store", func(t *testing.T) {
		_, err := ParseTimeBound(ctx, "2020-01-01", fixedNow, store)
		require.NoError(t, err)
		store.AssertNotCalled(t, "ResolveRevision", mock.Anything, "2020-01-01")
	})
}

func TestResolveRange(t *testing.T) {
	ctx := context.Background()

	rng, err := ResolveRange(ctx, "2024-01-01", "2024-02-01", fixedNow, nil)
	require.NoError(t, err)
	assert.True(t, rng.Contains(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)))

	_, err = ResolveRange(ctx, "2024-02-01", "2024-01-01", fixedNow, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolve)

	rng, err = ResolveRange(ctx, "", "", fixedNow, nil)
	require.NoError(t, err)
	assert.True(t, rng.IsUnbounded())
}
