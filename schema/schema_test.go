package schema_test

import (
	"testing"
	"time"

	"github.com/seeyebe/gmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRangeContains(t *testing.T) {
	since := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name     string
		rng      schema.DateRange
		at       time.Time
		expected bool
	}{
		{"unbounded", schema.DateRange{}, since.AddDate(-10, 0, 0), true},
		{"on since bound", schema.DateRange{Since: since}, since, true},
		{"before since", schema.DateRange{Since: since}, since.Add(-time.Second), false},
		{"on until bound", schema.DateRange{Until: until}, until, true},
		{"after until", schema.DateRange{Until: until}, until.Add(time.Second), false},
		{"inside both", schema.DateRange{Since: since, Until: until}, since.AddDate(0, 0, 10), true},
		{"outside both", schema.DateRange{Since: since, Until: until}, until.AddDate(0, 1, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rng.Contains(tt.at))
		})
	}
}

func TestNewDateRange(t *testing.T) {
	early := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	late := early.AddDate(0, 1, 0)

	rng, err := schema.NewDateRange(early, late)
	require.NoError(t, err)
	assert.Equal(t, early, rng.Since)
	assert.Equal(t, late, rng.Until)

	_, err = schema.NewDateRange(late, early)
	assert.Error(t, err)

	rng, err = schema.NewDateRange(time.Time{}, early)
	require.NoError(t, err)
	assert.True(t, rng.Since.IsZero())
	assert.False(t, rng.IsUnbounded())
}

func TestDateRangeUnixBounds(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	rng := schema.DateRange{Since: base.Add(500 * time.Millisecond), Until: base.Add(1500 * time.Millisecond)}

	assert.Equal(t, base.Unix()+1, rng.SinceUnix())
	assert.Equal(t, base.Unix()+1, rng.UntilUnix())
	assert.False(t, rng.Contains(base))
	assert.True(t, rng.Contains(base.Add(time.Second)))
}

func TestCommitStatsTotals(t *testing.T) {
	s := schema.CommitStats{
		CommitID: "abc",
		Files: []schema.FileStats{
			{Path: "a.go", AddedLines: 3, DeletedLines: 1},
			{Path: "b.bin", IsBinary: true},
			{Path: "c.go", AddedLines: 2, DeletedLines: 5},
		},
	}
	added, deleted := s.Totals()
	assert.Equal(t, uint64(5), added)
	assert.Equal(t, uint64(6), deleted)
}

func TestFlattenStats(t *testing.T) {
	ts := time.Unix(1_700_000_000, 0).UTC()
	stats := []schema.CommitStats{
		{CommitID: "c1", Files: []schema.FileStats{{Path: "a.go", AddedLines: 1}, {Path: "b.go", DeletedLines: 2}}},
		{CommitID: "c2", Files: []schema.FileStats{}},
		{CommitID: "c3", Files: []schema.FileStats{{Path: "x.png", IsBinary: true}}},
	}
	infos := map[string]schema.CommitInfo{
		"c1": {ID: "c1", AuthorName: "Ada", AuthorEmail: "ada@example.com", Timestamp: ts},
	}

	rows := schema.FlattenStats(stats, infos)
	require.Len(t, rows, 3)
	assert.Equal(t, "Ada", rows[0].AuthorName)
	assert.Equal(t, ts, rows[1].Timestamp)
	assert.Equal(t, "c3", rows[2].CommitID)
	assert.Empty(t, rows[2].AuthorName)
	assert.True(t, rows[2].IsBinary)
}
