package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeblock/activity-engine/internal/adapters/snapshot"
	"github.com/lifeblock/activity-engine/internal/core/domain"
	"github.com/lifeblock/activity-engine/internal/core/services"
)

func TestQuickCheckIn_FreshDay(t *testing.T) {
	store := snapshot.NewInMemoryStore()
	svc := services.NewIntentService(store, nil, quietLogger())
	ctx := context.Background()
	now := time.Date(2026, time.July, 20, 8, 0, 0, 0, time.UTC)

	require.NoError(t, svc.QuickCheckIn(ctx, now))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TodayScore)
	assert.Equal(t, 1, snap.CurrentStreak)
	assert.Equal(t, 1, snap.LongestStreak)
	require.NotNil(t, snap.LastCheckInDate)
	assert.Equal(t, domain.NormalizeDay(now), *snap.LastCheckInDate)
}

func TestQuickCheckIn_ConsecutiveDayExtends(t *testing.T) {
	store := snapshot.NewInMemoryStore()
	svc := services.NewIntentService(store, nil, quietLogger())
	ctx := context.Background()
	day1 := time.Date(2026, time.July, 20, 8, 0, 0, 0, time.UTC)

	require.NoError(t, svc.QuickCheckIn(ctx, day1))
	require.NoError(t, svc.QuickCheckIn(ctx, day1.AddDate(0, 0, 1)))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.CurrentStreak)
	assert.Equal(t, 2, snap.LongestStreak)
}

// Repeated taps the same day accumulate on the score and leave the streak
// fields alone. Intent processes cannot see ledger state; accumulation is the
// accepted tradeoff.
func TestQuickCheckIn_RepeatedTapsAccumulate(t *testing.T) {
	store := snapshot.NewInMemoryStore()
	svc := services.NewIntentService(store, nil, quietLogger())
	ctx := context.Background()
	now := time.Date(2026, time.July, 20, 8, 0, 0, 0, time.UTC)

	require.NoError(t, svc.QuickCheckIn(ctx, now))
	require.NoError(t, svc.QuickCheckIn(ctx, now.Add(5*time.Minute)))
	require.NoError(t, svc.QuickCheckIn(ctx, now.Add(10*time.Minute)))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.TodayScore)
	assert.Equal(t, 1, snap.CurrentStreak)
}

func TestQuickCheckIn_GapResetsOptimisticStreak(t *testing.T) {
	store := snapshot.NewInMemoryStore()
	svc := services.NewIntentService(store, nil, quietLogger())
	ctx := context.Background()
	day1 := time.Date(2026, time.July, 20, 8, 0, 0, 0, time.UTC)

	require.NoError(t, svc.QuickCheckIn(ctx, day1))
	require.NoError(t, svc.QuickCheckIn(ctx, day1.AddDate(0, 0, 1)))
	require.NoError(t, svc.QuickCheckIn(ctx, day1.AddDate(0, 0, 5)))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentStreak)
	assert.Equal(t, 2, snap.LongestStreak, "longest survives the reset")
}

func TestIncrement_ClampsAtMax(t *testing.T) {
	store := snapshot.NewInMemoryStore()
	svc := services.NewIntentService(store, nil, quietLogger())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, svc.Increment(ctx))
	}

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxDayScore, snap.TodayScore)
	assert.Zero(t, snap.CurrentStreak, "increment touches the score only")
}

func TestSetLevel_Idempotent(t *testing.T) {
	store := snapshot.NewInMemoryStore()
	svc := services.NewIntentService(store, nil, quietLogger())
	ctx := context.Background()

	require.NoError(t, svc.SetLevel(ctx, 3))
	before := store.RawFields()

	require.NoError(t, svc.SetLevel(ctx, 3))
	assert.Equal(t, before, store.RawFields())

	assert.Error(t, svc.SetLevel(ctx, 5))
	assert.Error(t, svc.SetLevel(ctx, -1))
}

func TestQuickCheckIn_CorruptSnapshotDegradesToEmpty(t *testing.T) {
	store := snapshot.NewInMemoryStore()
	svc := services.NewIntentService(store, nil, quietLogger())
	ctx := context.Background()
	now := time.Date(2026, time.July, 20, 8, 0, 0, 0, time.UTC)

	store.SetRawField(domain.FieldCurrentStreak, "NaN")

	require.NoError(t, svc.QuickCheckIn(ctx, now))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TodayScore)
	assert.Equal(t, 1, snap.CurrentStreak)
}

func TestIntentService_RequestsRefresh(t *testing.T) {
	store := snapshot.NewInMemoryStore()
	scheduler := services.NewTimelineScheduler(time.Hour, quietLogger())
	svc := services.NewIntentService(store, scheduler, quietLogger())

	require.NoError(t, svc.Increment(context.Background()))

	select {
	case <-scheduler.Refreshes():
	default:
		t.Fatal("expected a pushed refresh after a successful mutation")
	}
}
