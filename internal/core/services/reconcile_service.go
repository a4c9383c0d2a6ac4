package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifeblock/activity-engine/internal/core/domain"
	"github.com/lifeblock/activity-engine/internal/observability"
)

// ReconcileReport is what one reconciliation pass found and healed.
type ReconcileReport struct {
	// GapFound is true when intent-origin activity was merged into the Ledger.
	GapFound bool
	// GapScore is the snapshot score adopted for today when a gap was found.
	GapScore int
	// SnapshotCorrupt is true when the stored snapshot failed to deserialize
	// and was treated as empty.
	SnapshotCorrupt bool
	// PartialWrite is true when the stored streak disagreed with the
	// ledger-derived one, the footprint of a writer killed mid-sequence.
	PartialWrite bool
	// State is the authoritative streak state replayed from the full Ledger.
	State domain.StreakState
	// Milestones fired by today's replayed transition, if any.
	Milestones []domain.MilestoneEvent
	// Freeze is the declared freeze capacity, surfaced for the host UI.
	Freeze domain.FreezeCapacity
}

// ReconcileService merges intent-origin snapshot writes back into the Ledger
// and recomputes all derived state. It runs whenever the main process resumes
// foreground. Running it twice with no intervening intent writes publishes a
// byte-identical snapshot both times.
type ReconcileService struct {
	ledger     domain.LedgerRepository
	store      domain.SnapshotStore
	sink       domain.MilestoneSink
	log        *logrus.Logger
	milestones []int
	windowDays int
	freeze     domain.FreezeCapacity
}

func NewReconcileService(
	ledger domain.LedgerRepository,
	store domain.SnapshotStore,
	sink domain.MilestoneSink,
	log *logrus.Logger,
	windowDays int,
	freeze domain.FreezeCapacity,
) *ReconcileService {
	return &ReconcileService{
		ledger:     ledger,
		store:      store,
		sink:       sink,
		log:        log,
		milestones: domain.DefaultMilestones,
		windowDays: windowDays,
		freeze:     freeze,
	}
}

func (s *ReconcileService) Reconcile(ctx context.Context, now time.Time) (*ReconcileReport, error) {
	observability.RecordReconcilePass()

	report := &ReconcileReport{Freeze: s.freeze}
	today := domain.NormalizeDay(now)

	snap, err := s.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrCorruptSnapshot) {
			return nil, err
		}
		s.log.WithError(err).Warn("corrupt snapshot, rebuilding from ledger")
		observability.RecordCorruptSnapshot()
		report.SnapshotCorrupt = true
		snap = domain.NewSnapshot()
	}

	newlyChecked, err := s.mergeIntentGap(ctx, snap, today, now, report)
	if err != nil {
		return nil, err
	}

	state, milestones, err := s.replay(ctx, today, newlyChecked)
	if err != nil {
		return nil, err
	}
	report.State = state
	report.Milestones = milestones

	if !report.SnapshotCorrupt &&
		(snap.CurrentStreak != state.CurrentStreak || snap.LongestStreak != state.LongestStreak) {
		// Derived vs stored disagreement is how a truncated multi-field
		// write surfaces. The republish below heals it.
		s.log.WithField("stored_current", snap.CurrentStreak).
			WithField("derived_current", state.CurrentStreak).
			WithField("stored_longest", snap.LongestStreak).
			WithField("derived_longest", state.LongestStreak).
			Warn("stored streak disagrees with ledger, healing")
		observability.RecordPartialWrite()
		report.PartialWrite = true
	}

	rebuilt, err := BuildSnapshot(ctx, s.ledger, state, now, s.windowDays)
	if err != nil {
		return nil, err
	}
	if err := s.store.Publish(ctx, rebuilt); err != nil {
		return nil, err
	}
	observability.RecordSnapshotPublish()

	for _, event := range report.Milestones {
		if s.sink != nil {
			s.sink.Notify(ctx, event)
		}
	}

	return report, nil
}

// mergeIntentGap attributes a snapshot score above the Ledger's to intent
// activity performed while the app was backgrounded and folds it into today's
// DayRecord. The exact check-in time is unrecoverable, so "now" stands in.
// Returns whether this pass flipped today from unchecked to checked.
func (s *ReconcileService) mergeIntentGap(ctx context.Context, snap *domain.Snapshot, today, now time.Time, report *ReconcileReport) (bool, error) {
	snapScore := snap.TodayScore
	if snapScore > domain.MaxDayScore {
		snapScore = domain.MaxDayScore
	}
	if snapScore <= 0 {
		return false, nil
	}

	record, err := s.ledger.GetDayRecord(ctx, today)
	if errors.Is(err, domain.ErrDayRecordNotFound) {
		record = domain.NewDayRecord(today, 0)
	} else if err != nil {
		return false, err
	}

	if snapScore <= record.TotalScore {
		return false, nil
	}

	newlyChecked := false
	record.TotalScore = snapScore
	if !record.CheckedIn {
		record.CheckedIn = true
		checkedAt := now.UTC()
		record.CheckedInAt = &checkedAt
		newlyChecked = true
	}
	record.UpdatedAt = now.UTC()

	if err := s.ledger.UpsertDayRecord(ctx, record); err != nil {
		return false, err
	}

	report.GapFound = true
	report.GapScore = snapScore

	s.log.WithField("day", today.Format(domain.DayFormat)).
		WithField("score", snapScore).
		Info("merged intent-origin activity into ledger")
	return newlyChecked, nil
}

// replay rebuilds the streak state over the full Ledger history. Milestones
// fire only off today's transition, and only when this pass itself created
// today's check-in edge: edges the main process wrote were already notified
// at write time, and a repeat pass over an unchanged ledger must stay silent.
func (s *ReconcileService) replay(ctx context.Context, today time.Time, notifyToday bool) (domain.StreakState, []domain.MilestoneEvent, error) {
	records, err := s.ledger.ListAllDays(ctx)
	if err != nil {
		return domain.StreakState{}, nil, err
	}

	state := domain.StreakState{}
	var milestones []domain.MilestoneEvent

	for _, rec := range records {
		next, err := state.RecordCheckIn(rec.Day, rec.CheckedIn)
		if err != nil {
			return domain.StreakState{}, nil, err
		}

		if notifyToday && rec.Day.Equal(today) {
			if m, fired := domain.MilestoneReached(state.CurrentStreak, next.CurrentStreak, s.milestones); fired {
				milestones = append(milestones, domain.MilestoneEvent{Streak: m, Day: rec.Day})
			}
		}

		state = next
	}

	return state, milestones, nil
}
