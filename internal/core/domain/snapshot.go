package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SnapshotSchemaVersion is the current wire schema. Readers tolerate unknown
// fields within a version but treat a higher version as undecodable.
const SnapshotSchemaVersion = 1

// Shared-store field names. Every process that touches the store uses these;
// they are the wire contract, not an implementation detail.
const (
	FieldSchemaVersion = "schemaVersion"
	FieldTodayScore    = "todayScore"
	FieldCurrentStreak = "currentStreak"
	FieldLongestStreak = "longestStreak"
	FieldLastCheckIn   = "lastCheckInDate"
	FieldDayScores     = "dayScores"
)

var (
	// ErrCorruptSnapshot marks a projection that failed to deserialize.
	// Recovery is treating it as empty and rebuilding from the Ledger.
	ErrCorruptSnapshot = errors.New("snapshot data is corrupt")

	// ErrPartialWrite marks a projection whose stored streak disagrees with
	// the one derived from the Ledger, the footprint of a writer terminated
	// mid multi-field write. Detected opportunistically at reconciliation.
	ErrPartialWrite = errors.New("snapshot reflects a partial multi-field write")

	// ErrPlaceholderSnapshot rejects an attempt to publish a placeholder.
	// Placeholders exist for renderers waiting on real data and never reach
	// the shared store.
	ErrPlaceholderSnapshot = errors.New("placeholder snapshots must not be published")
)

// Snapshot is the denormalized cross-process projection of Ledger + StreakState.
// It may be briefly stale or torn relative to the Ledger and is never treated
// as ground truth without reconciliation.
type Snapshot struct {
	SchemaVersion   int            `json:"schemaVersion"`
	TodayScore      int            `json:"todayScore"`
	CurrentStreak   int            `json:"currentStreak"`
	LongestStreak   int            `json:"longestStreak"`
	LastCheckInDate *time.Time     `json:"lastCheckInDate,omitempty"`
	DayScores       map[string]int `json:"dayScores"`

	// Placeholder tags pre-data renderer entries. Not part of the wire form.
	Placeholder bool `json:"-"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		DayScores:     map[string]int{},
	}
}

// PlaceholderSnapshot is what a renderer shows before real data loads.
func PlaceholderSnapshot() *Snapshot {
	snap := NewSnapshot()
	snap.Placeholder = true
	return snap
}

// Equal compares the wire-visible fields. Used by the reconciler's idempotence
// guarantee: two runs with no intervening intent writes publish equal snapshots.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if other == nil {
		return false
	}
	if s.SchemaVersion != other.SchemaVersion ||
		s.TodayScore != other.TodayScore ||
		s.CurrentStreak != other.CurrentStreak ||
		s.LongestStreak != other.LongestStreak {
		return false
	}

	switch {
	case s.LastCheckInDate == nil && other.LastCheckInDate != nil:
		return false
	case s.LastCheckInDate != nil && other.LastCheckInDate == nil:
		return false
	case s.LastCheckInDate != nil && !NormalizeDay(*s.LastCheckInDate).Equal(NormalizeDay(*other.LastCheckInDate)):
		return false
	}

	if len(s.DayScores) != len(other.DayScores) {
		return false
	}
	for day, score := range s.DayScores {
		if other.DayScores[day] != score {
			return false
		}
	}
	return true
}

// TrimWindow drops day scores older than windowDays before today, keeping the
// projection bounded regardless of ledger size.
func (s *Snapshot) TrimWindow(today time.Time, windowDays int) {
	if windowDays <= 0 {
		return
	}

	cutoff := NormalizeDay(today).AddDate(0, 0, -(windowDays - 1))
	for key := range s.DayScores {
		day, err := time.Parse(DayFormat, key)
		if err != nil || day.Before(cutoff) {
			delete(s.DayScores, key)
		}
	}
}

// EncodeDayScores serializes the day-score window. encoding/json writes map
// keys in sorted order, so identical projections produce identical bytes,
// which the reconciler's idempotence guarantee relies on.
func EncodeDayScores(scores map[string]int) (string, error) {
	if scores == nil {
		scores = map[string]int{}
	}

	data, err := json.Marshal(scores)
	if err != nil {
		return "", fmt.Errorf("encoding day scores: %w", err)
	}
	return string(data), nil
}

func DecodeDayScores(raw string) (map[string]int, error) {
	if raw == "" {
		return map[string]int{}, nil
	}

	var scores map[string]int
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return nil, fmt.Errorf("%w: day scores: %v", ErrCorruptSnapshot, err)
	}
	if scores == nil {
		scores = map[string]int{}
	}
	return scores, nil
}
