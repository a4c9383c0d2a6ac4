package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/lifeblock/activity-engine/internal/core/domain"
)

// TimelineEntry is one (timestamp, snapshot) pair handed to an out-of-process
// renderer. Placeholder entries are shown before real data loads and must
// never be written to the shared store; Publish rejects them.
type TimelineEntry struct {
	At          time.Time
	Snapshot    *domain.Snapshot
	Placeholder bool
}

// TimelineScheduler produces refresh instants for out-of-process renderers.
// Pull: a fixed interval. Push: RequestRefresh, called by any successful
// mutation, coalesces into the same channel so a renderer wakes at most once
// per pending request.
type TimelineScheduler struct {
	interval time.Duration
	cron     *cron.Cron
	push     chan struct{}
	log      *logrus.Logger
}

func NewTimelineScheduler(interval time.Duration, log *logrus.Logger) *TimelineScheduler {
	if interval <= 0 {
		interval = time.Hour
	}

	return &TimelineScheduler{
		interval: interval,
		push:     make(chan struct{}, 1),
		log:      log,
	}
}

// NextRefresh returns when a renderer holding data stamped "now" should pull
// again, absent any push.
func (s *TimelineScheduler) NextRefresh(now time.Time) time.Time {
	return now.Add(s.interval)
}

// Entries produces a restartable sequence of n future entries at the refresh
// interval, all carrying the same snapshot. Renderers re-request the sequence
// whenever a push lands, so laziness beyond n buys nothing.
func (s *TimelineScheduler) Entries(now time.Time, snap *domain.Snapshot, n int) []TimelineEntry {
	if n <= 0 {
		return nil
	}

	entries := make([]TimelineEntry, 0, n)
	at := now
	for i := 0; i < n; i++ {
		entries = append(entries, TimelineEntry{At: at, Snapshot: snap})
		at = at.Add(s.interval)
	}
	return entries
}

// PlaceholderEntry is what a renderer shows before any real data exists.
func (s *TimelineScheduler) PlaceholderEntry(now time.Time) TimelineEntry {
	return TimelineEntry{
		At:          now,
		Snapshot:    domain.PlaceholderSnapshot(),
		Placeholder: true,
	}
}

// RequestRefresh asks for an immediate refresh instead of waiting out the
// interval. Non-blocking; concurrent requests coalesce.
func (s *TimelineScheduler) RequestRefresh() {
	select {
	case s.push <- struct{}{}:
	default:
	}
}

// Refreshes exposes the push channel for callers that drive their own loop.
func (s *TimelineScheduler) Refreshes() <-chan struct{} {
	return s.push
}

// Run drives fn on every refresh, pull- or push-triggered, until ctx ends.
func (s *TimelineScheduler) Run(ctx context.Context, fn func(context.Context)) error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.RequestRefresh)
	if err != nil {
		return fmt.Errorf("scheduling interval refresh: %w", err)
	}
	s.cron.Start()
	defer s.cron.Stop()

	s.log.WithField("interval", s.interval.String()).Info("timeline scheduler running")

	for {
		select {
		case <-s.push:
			fn(ctx)
		case <-ctx.Done():
			s.log.Info("timeline scheduler stopping")
			return ctx.Err()
		}
	}
}
