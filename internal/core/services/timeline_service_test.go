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

func TestTimelineScheduler_Entries(t *testing.T) {
	scheduler := services.NewTimelineScheduler(30*time.Minute, quietLogger())
	now := time.Date(2026, time.July, 20, 8, 0, 0, 0, time.UTC)
	snap := domain.NewSnapshot()

	entries := scheduler.Entries(now, snap, 4)

	require.Len(t, entries, 4)
	assert.Equal(t, now, entries[0].At)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, 30*time.Minute, entries[i].At.Sub(entries[i-1].At))
		assert.False(t, entries[i].Placeholder)
	}

	assert.Empty(t, scheduler.Entries(now, snap, 0))
}

func TestTimelineScheduler_NextRefreshDefaultsToHour(t *testing.T) {
	scheduler := services.NewTimelineScheduler(0, quietLogger())
	now := time.Date(2026, time.July, 20, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(time.Hour), scheduler.NextRefresh(now))
}

func TestTimelineScheduler_PushCoalesces(t *testing.T) {
	scheduler := services.NewTimelineScheduler(time.Hour, quietLogger())

	scheduler.RequestRefresh()
	scheduler.RequestRefresh()
	scheduler.RequestRefresh()

	<-scheduler.Refreshes()

	select {
	case <-scheduler.Refreshes():
		t.Fatal("pending requests must coalesce into one wake-up")
	default:
	}
}

func TestTimelineScheduler_PlaceholderNeverPublished(t *testing.T) {
	scheduler := services.NewTimelineScheduler(time.Hour, quietLogger())
	store := snapshot.NewInMemoryStore()
	now := time.Date(2026, time.July, 20, 8, 0, 0, 0, time.UTC)

	entry := scheduler.PlaceholderEntry(now)
	assert.True(t, entry.Placeholder)
	assert.True(t, entry.Snapshot.Placeholder)

	err := store.Publish(context.Background(), entry.Snapshot)
	assert.ErrorIs(t, err, domain.ErrPlaceholderSnapshot)
	assert.Empty(t, store.RawFields())
}

func TestTimelineScheduler_RunDrivesPush(t *testing.T) {
	scheduler := services.NewTimelineScheduler(time.Hour, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshed := make(chan struct{}, 1)
	done := make(chan error, 1)

	go func() {
		done <- scheduler.Run(ctx, func(context.Context) {
			refreshed <- struct{}{}
		})
	}()

	scheduler.RequestRefresh()

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("push did not trigger a refresh")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}
