package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifeblock/activity-engine/internal/core/domain"
)

// IntentService is what short-lived quick-action processes link. It has no
// Ledger handle: every write is a narrow field-level operation on the shared
// snapshot, ordered so the OS killing the process mid-sequence leaves a safe,
// partially-applied state (score first, streak fields next, check-in date
// last). Nothing here retries; the next reconciliation pass corrects any lost
// write.
type IntentService struct {
	store     domain.SnapshotStore
	refresher Refresher
	log       *logrus.Logger
}

func NewIntentService(store domain.SnapshotStore, refresher Refresher, log *logrus.Logger) *IntentService {
	return &IntentService{
		store:     store,
		refresher: refresher,
		log:       log,
	}
}

// QuickCheckIn marks today done from a widget or lock-screen action. Repeated
// taps accumulate on the score; these processes cannot see ledger state, so
// accumulation is the accepted tradeoff. The streak bump is optimistic and the
// reconciler's replay remains authoritative.
func (s *IntentService) QuickCheckIn(ctx context.Context, now time.Time) error {
	today := domain.NormalizeDay(now)

	snap, err := s.loadOrEmpty(ctx)
	if err != nil {
		return err
	}

	if _, err := s.store.IncrementTodayScore(ctx, 1); err != nil {
		return err
	}

	alreadyToday := snap.LastCheckInDate != nil &&
		domain.NormalizeDay(*snap.LastCheckInDate).Equal(today)
	if alreadyToday {
		s.requestRefresh()
		return nil
	}

	nextStreak := 1
	if snap.LastCheckInDate != nil &&
		domain.DaysBetween(domain.NormalizeDay(*snap.LastCheckInDate), today) == 1 {
		nextStreak = snap.CurrentStreak + 1
	}

	if err := s.store.SetCurrentStreak(ctx, nextStreak); err != nil {
		return err
	}
	if nextStreak > snap.LongestStreak {
		if err := s.store.SetLongestStreak(ctx, nextStreak); err != nil {
			return err
		}
	}
	if err := s.store.SetCheckIn(ctx, today); err != nil {
		return err
	}

	s.requestRefresh()
	return nil
}

// Increment adds one point to today's score and nothing else. Not idempotent:
// repeated invocations accumulate.
func (s *IntentService) Increment(ctx context.Context) error {
	if _, err := s.store.IncrementTodayScore(ctx, 1); err != nil {
		return err
	}

	s.requestRefresh()
	return nil
}

// SetLevel pins today's score to an absolute level. Idempotent.
func (s *IntentService) SetLevel(ctx context.Context, level int) error {
	if level < 0 || level > domain.MaxDayScore {
		return fmt.Errorf("level must be between 0 and %d", domain.MaxDayScore)
	}

	if err := s.store.SetTodayScore(ctx, level); err != nil {
		return err
	}

	s.requestRefresh()
	return nil
}

// loadOrEmpty reads the snapshot, degrading a corrupt one to empty. An intent
// process has a second-scale execution budget and cannot rebuild from the
// Ledger; the main process heals the store on its next resume.
func (s *IntentService) loadOrEmpty(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptSnapshot) {
			s.log.WithError(err).Warn("corrupt snapshot during intent, proceeding from empty")
			return domain.NewSnapshot(), nil
		}
		return nil, err
	}
	return snap, nil
}

func (s *IntentService) requestRefresh() {
	if s.refresher != nil {
		s.refresher.RequestRefresh()
	}
}
