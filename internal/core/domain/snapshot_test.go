package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Equal(t *testing.T) {
	checkIn := day(2026, time.June, 10)

	base := func() *Snapshot {
		s := NewSnapshot()
		s.TodayScore = 3
		s.CurrentStreak = 5
		s.LongestStreak = 9
		s.LastCheckInDate = &checkIn
		s.DayScores = map[string]int{"2026-06-09": 4, "2026-06-10": 3}
		return s
	}

	a, b := base(), base()
	assert.True(t, a.Equal(b))

	b = base()
	b.TodayScore = 4
	assert.False(t, a.Equal(b))

	b = base()
	b.DayScores["2026-06-08"] = 1
	assert.False(t, a.Equal(b))

	b = base()
	b.LastCheckInDate = nil
	assert.False(t, a.Equal(b))

	assert.False(t, a.Equal(nil))
}

func TestSnapshot_TrimWindow(t *testing.T) {
	today := day(2026, time.June, 10)

	snap := NewSnapshot()
	snap.DayScores = map[string]int{
		"2026-06-10": 4,
		"2026-06-04": 2,
		"2026-06-03": 1, // outside a 7-day window
		"not-a-date": 3,
	}

	snap.TrimWindow(today, 7)

	assert.Equal(t, map[string]int{"2026-06-10": 4, "2026-06-04": 2}, snap.DayScores)
}

func TestEncodeDayScores_Deterministic(t *testing.T) {
	scores := map[string]int{"2026-06-10": 4, "2026-01-02": 1, "2026-03-15": 2}

	first, err := EncodeDayScores(scores)
	require.NoError(t, err)

	second, err := EncodeDayScores(map[string]int{"2026-03-15": 2, "2026-06-10": 4, "2026-01-02": 1})
	require.NoError(t, err)

	assert.Equal(t, first, second, "same window must serialize to identical bytes")

	decoded, err := DecodeDayScores(first)
	require.NoError(t, err)
	assert.Equal(t, scores, decoded)
}

func TestDecodeDayScores_Corrupt(t *testing.T) {
	_, err := DecodeDayScores("{broken")
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	decoded, err := DecodeDayScores("")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestFreezeCapacity(t *testing.T) {
	fc := NewFreezeCapacity(3)

	assert.True(t, fc.CoversGap(2))
	assert.True(t, fc.CoversGap(3))
	assert.False(t, fc.CoversGap(4))
	assert.False(t, fc.CoversGap(0))

	fc.Remaining = 0
	fc.UsedThisMonth = 3
	rolled := fc.RollOver()
	assert.Equal(t, 3, rolled.Remaining)
	assert.Equal(t, 0, rolled.UsedThisMonth)
}

func TestNormalizeDay(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2026, time.June, 10, 0, 30, 0, 0, loc) // 23:30 UTC the day before

	got := NormalizeDay(ts)

	assert.Equal(t, day(2026, time.June, 9), got)
	assert.Equal(t, 1, DaysBetween(got, day(2026, time.June, 10)))
}
