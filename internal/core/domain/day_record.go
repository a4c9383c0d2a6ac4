package domain

import (
	"errors"
	"time"
)

var (
	ErrDayRecordNotFound = errors.New("day record not found")
)

// DayFormat is the ISO date layout used for every day-keyed map and wire field.
const DayFormat = "2006-01-02"

// DayRecord is the Ledger's per-day entry, keyed by its midnight-normalized
// day. Created on the first completion recorded for a day; the score is
// recomputed from the full completion set on every change, never incremented.
// Deleted only by a full data reset.
type DayRecord struct {
	Day         time.Time  `json:"day" db:"day"`
	TotalScore  int        `json:"total_score" db:"total_score"`
	CheckedIn   bool       `json:"checked_in" db:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty" db:"checked_in_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewDayRecord(day time.Time, totalScore int) *DayRecord {
	now := time.Now().UTC()

	return &DayRecord{
		Day:        NormalizeDay(day),
		TotalScore: totalScore,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ApplyScore replaces the record's score with a freshly recomputed one and
// maintains the check-in flag. checkedInAt is set on the 0 -> checked-in edge
// only, so same-day recomputes keep the original check-in time.
func (r *DayRecord) ApplyScore(totalScore int, at time.Time) {
	r.TotalScore = totalScore

	if totalScore > 0 && !r.CheckedIn {
		r.CheckedIn = true
		checkedAt := at.UTC()
		r.CheckedInAt = &checkedAt
	}

	r.UpdatedAt = at.UTC()
}

// NormalizeDay truncates t to midnight UTC. Every date keyed into the Ledger
// or the Snapshot passes through here first.
func NormalizeDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b. Both arguments must
// be midnight-normalized UTC days.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
