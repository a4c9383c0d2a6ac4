package domain

import (
	"errors"
	"time"
)

var (
	ErrOutOfOrderCheckIn = errors.New("check-in date precedes the last recorded check-in")
)

// StreakState is the derived streak bookkeeping. Value semantics: RecordCheckIn
// returns the next state and never mutates the receiver, so callers can replay
// transitions over history without aliasing surprises.
//
// Invariants after every successful RecordCheckIn: LongestStreak >= CurrentStreak
// and LastCheckInDate is monotonically non-decreasing.
type StreakState struct {
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	LastCheckInDate *time.Time `json:"last_check_in_date,omitempty"`
}

// RecordCheckIn applies one day's check-in outcome to the state.
//
// A call with today earlier than LastCheckInDate is rejected with
// ErrOutOfOrderCheckIn and the state is returned unchanged: time never moves
// backwards through this path. A same-day call is a no-op on the counter; only
// the day's score (recomputed elsewhere) changes on re-check-in.
func (s StreakState) RecordCheckIn(today time.Time, checkedIn bool) (StreakState, error) {
	day := NormalizeDay(today)

	if s.LastCheckInDate == nil {
		if checkedIn {
			s.CurrentStreak = 1
		} else {
			s.CurrentStreak = 0
		}
	} else {
		last := NormalizeDay(*s.LastCheckInDate)
		if day.Before(last) {
			return s, ErrOutOfOrderCheckIn
		}

		switch daysSince := DaysBetween(last, day); {
		case daysSince == 1 && checkedIn:
			s.CurrentStreak++
		case daysSince > 1:
			if checkedIn {
				s.CurrentStreak = 1
			} else {
				s.CurrentStreak = 0
			}
		}
	}

	if checkedIn {
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		s.LastCheckInDate = &day
	}

	return s, nil
}

// ReplayCheckIns rebuilds a StreakState from scratch over day records sorted
// ascending by day. This is the only authoritative derivation: snapshot streak
// fields are never copied.
func ReplayCheckIns(records []*DayRecord) (StreakState, error) {
	state := StreakState{}

	for _, rec := range records {
		next, err := state.RecordCheckIn(rec.Day, rec.CheckedIn)
		if err != nil {
			return state, err
		}
		state = next
	}

	return state, nil
}
