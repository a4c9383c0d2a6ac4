package snapshot

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeblock/activity-engine/internal/core/domain"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRedisStore_Integration(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	pass := os.Getenv("REDIS_PASSWORD")

	rdb, err := NewRedisClient(host, port, pass, 1)
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	require.NoError(t, rdb.FlushDB(ctx).Err(), "Failed to flush test DB")

	store := NewRedisStore(rdb, "activity:snapshot:test", quietLogger())

	t.Run("Empty store loads as empty snapshot", func(t *testing.T) {
		snap, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Zero(t, snap.TodayScore)
		assert.Empty(t, snap.DayScores)
	})

	t.Run("Publish and load round trip", func(t *testing.T) {
		checkIn := time.Date(2026, time.July, 20, 0, 0, 0, 0, time.UTC)

		snap := domain.NewSnapshot()
		snap.TodayScore = 3
		snap.CurrentStreak = 4
		snap.LongestStreak = 9
		snap.LastCheckInDate = &checkIn
		snap.DayScores = map[string]int{"2026-07-19": 4, "2026-07-20": 3}

		require.NoError(t, store.Publish(ctx, snap))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.True(t, snap.Equal(loaded))
	})

	t.Run("Field-level increment tears only its field", func(t *testing.T) {
		val, err := store.IncrementTodayScore(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, val)

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, loaded.TodayScore)
		assert.Equal(t, 3, loaded.DayScores["2026-07-20"], "publish-era value survives in the window field")
	})

	t.Run("Increment clamps at max score", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := store.IncrementTodayScore(ctx, 1)
			require.NoError(t, err)
		}

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.MaxDayScore, loaded.TodayScore)
	})

	t.Run("Corrupt field is detected and cleaned up", func(t *testing.T) {
		require.NoError(t, rdb.HSet(ctx, "activity:snapshot:test", domain.FieldDayScores, "{broken").Err())

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrCorruptSnapshot)

		snap, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.DayScores, "poisoned key was deleted")
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.SetTodayScore(ctx, 2))
		require.NoError(t, store.Clear(ctx))

		snap, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Zero(t, snap.TodayScore)
	})
}
