package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifeblock/activity-engine/internal/core/domain"
	"github.com/lifeblock/activity-engine/internal/observability"
)

// Refresher is the push side of the timeline scheduler: any successful
// mutation may request an immediate out-of-process refresh.
type Refresher interface {
	RequestRefresh()
}

// ActivityService is the main-process writer. It owns the Ledger: completions
// flow in here, day scores are recomputed from the full completion set, the
// streak transition runs, and the whole snapshot is re-published as one unit.
type ActivityService struct {
	ledger     domain.LedgerRepository
	store      domain.SnapshotStore
	sink       domain.MilestoneSink
	refresher  Refresher
	log        *logrus.Logger
	milestones []int
	windowDays int

	mu    sync.Mutex
	state domain.StreakState
}

func NewActivityService(
	ledger domain.LedgerRepository,
	store domain.SnapshotStore,
	sink domain.MilestoneSink,
	refresher Refresher,
	log *logrus.Logger,
	windowDays int,
) *ActivityService {
	return &ActivityService{
		ledger:     ledger,
		store:      store,
		sink:       sink,
		refresher:  refresher,
		log:        log,
		milestones: domain.DefaultMilestones,
		windowDays: windowDays,
	}
}

// AdoptState replaces the in-memory derived state with an authoritative one,
// normally the reconciler's replay result at startup or foreground resume.
func (s *ActivityService) AdoptState(state domain.StreakState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
}

// State returns the current in-memory streak state.
func (s *ActivityService) State() domain.StreakState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// RecordCompletion records one habit's completion level for a day, then runs
// the whole derivation pipeline: day score recomputed from the full completion
// set, streak transition, snapshot publish, milestone emission, refresh push.
func (s *ActivityService) RecordCompletion(ctx context.Context, habitID string, day time.Time, level int, autoTracked bool) (*domain.DayRecord, error) {
	completion := domain.NewHabitCompletion(habitID, day, level, autoTracked)
	if err := completion.Validate(); err != nil {
		return nil, err
	}

	if err := s.ledger.RecordCompletion(ctx, completion); err != nil {
		return nil, err
	}

	record, err := s.recomputeDay(ctx, completion.Day)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	oldStreak := s.state.CurrentStreak
	next, err := s.state.RecordCheckIn(record.Day, record.CheckedIn)
	if err != nil {
		// Backwards-dated completions still land in the ledger, but the
		// streak counter stays put until the next full replay.
		s.log.WithError(err).WithField("day", record.Day.Format(domain.DayFormat)).
			Warn("check-in rejected, keeping current streak state")
	} else {
		s.state = next
	}
	state := s.state
	s.mu.Unlock()

	if milestone, fired := domain.MilestoneReached(oldStreak, state.CurrentStreak, s.milestones); fired && s.sink != nil {
		s.sink.Notify(ctx, domain.MilestoneEvent{Streak: milestone, Day: record.Day})
	}

	if err := s.publish(ctx, state, time.Now()); err != nil {
		// The ledger write already succeeded; a failed publish costs at most
		// one stale refresh cycle and the next publish heals it.
		s.log.WithError(err).Warn("snapshot publish failed after completion")
	}

	return record, nil
}

// PublishCurrent rebuilds the snapshot from the Ledger and the in-memory state
// and publishes it. The background publish worker calls this off the UI path.
func (s *ActivityService) PublishCurrent(ctx context.Context, now time.Time) error {
	return s.publish(ctx, s.State(), now)
}

// ResetAllData wipes the ledger, the shared snapshot, and the derived state.
func (s *ActivityService) ResetAllData(ctx context.Context) error {
	if err := s.ledger.Reset(ctx); err != nil {
		return err
	}
	if err := s.store.Clear(ctx); err != nil {
		return err
	}

	s.AdoptState(domain.StreakState{})

	if s.refresher != nil {
		s.refresher.RequestRefresh()
	}
	return nil
}

// recomputeDay rebuilds the day's record from its full completion set. The
// score is replaced, never incremented, so same-day re-check-ins are safe.
func (s *ActivityService) recomputeDay(ctx context.Context, day time.Time) (*domain.DayRecord, error) {
	completions, err := s.ledger.CompletionsForDate(ctx, day)
	if err != nil {
		return nil, err
	}

	scheduled, err := s.ledger.ScheduledHabitCount(ctx, day)
	if err != nil {
		return nil, err
	}

	totalPoints := 0
	for _, c := range completions {
		totalPoints += c.Level
	}
	score := domain.ScoreFromPoints(totalPoints, scheduled)

	record, err := s.ledger.GetDayRecord(ctx, day)
	if errors.Is(err, domain.ErrDayRecordNotFound) {
		record = domain.NewDayRecord(day, 0)
	} else if err != nil {
		return nil, err
	}

	record.ApplyScore(score, time.Now())

	if err := s.ledger.UpsertDayRecord(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ActivityService) publish(ctx context.Context, state domain.StreakState, now time.Time) error {
	snap, err := BuildSnapshot(ctx, s.ledger, state, now, s.windowDays)
	if err != nil {
		return err
	}

	if err := s.store.Publish(ctx, snap); err != nil {
		return err
	}
	observability.RecordSnapshotPublish()

	if s.refresher != nil {
		s.refresher.RequestRefresh()
	}
	return nil
}
