package services

import (
	"context"
	"time"

	"github.com/lifeblock/activity-engine/internal/core/domain"
)

// BuildSnapshot projects the Ledger plus a derived StreakState into the shared
// wire form. The day-score window is bounded to windowDays ending today, and
// every field is recomputed from scratch so publishing the result overwrites
// any torn intent-origin values.
func BuildSnapshot(ctx context.Context, ledger domain.LedgerRepository, state domain.StreakState, now time.Time, windowDays int) (*domain.Snapshot, error) {
	today := domain.NormalizeDay(now)

	if windowDays <= 0 {
		windowDays = 1
	}
	from := today.AddDate(0, 0, -(windowDays - 1))

	records, err := ledger.ListDayRecords(ctx, from, today)
	if err != nil {
		return nil, err
	}

	snap := domain.NewSnapshot()
	snap.CurrentStreak = state.CurrentStreak
	snap.LongestStreak = state.LongestStreak
	snap.LastCheckInDate = state.LastCheckInDate

	for _, rec := range records {
		snap.DayScores[rec.Day.Format(domain.DayFormat)] = rec.TotalScore
		if rec.Day.Equal(today) {
			snap.TodayScore = rec.TotalScore
		}
	}

	return snap, nil
}
