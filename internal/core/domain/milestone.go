package domain

import (
	"context"
	"time"
)

// DefaultMilestones are the streak lengths that fire a one-time event.
var DefaultMilestones = []int{7, 14, 21, 30, 50, 100, 200, 365, 500, 1000}

type MilestoneEvent struct {
	Streak int       `json:"streak"`
	Day    time.Time `json:"day"`
}

// MilestoneSink consumes milestone events. The real notification service is a
// collaborator of the host application; the engine only emits.
type MilestoneSink interface {
	Notify(ctx context.Context, event MilestoneEvent)
}

// MilestoneReached reports whether a single streak transition landed exactly on
// a milestone. Exact-match, not threshold-crossing: a transition that jumps
// over a milestone value does not fire it.
func MilestoneReached(oldStreak, newStreak int, milestones []int) (int, bool) {
	if newStreak == oldStreak {
		return 0, false
	}

	for _, m := range milestones {
		if newStreak == m {
			return m, true
		}
	}

	return 0, false
}
