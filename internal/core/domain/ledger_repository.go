package domain

import (
	"context"
	"time"
)

// LedgerRepository is the authoritative per-day activity store. Only the main
// process holds one; widget and intent processes cannot open it and go through
// the SnapshotStore instead.
type LedgerRepository interface {
	// RecordCompletion inserts or replaces the completion for (habit, day).
	RecordCompletion(ctx context.Context, completion *HabitCompletion) error

	// CompletionsForDate returns every completion recorded for the given day.
	// Day scores are always recomputed from this full set, never incremented.
	CompletionsForDate(ctx context.Context, day time.Time) ([]*HabitCompletion, error)

	// ScheduledHabitCount returns how many habits are due on the given day.
	// Habits on a non-daily cadence are excluded on days they are not
	// scheduled, so they never inflate the scoring denominator.
	ScheduledHabitCount(ctx context.Context, day time.Time) (int, error)

	// GetDayRecord returns the record for a day, or ErrDayRecordNotFound.
	GetDayRecord(ctx context.Context, day time.Time) (*DayRecord, error)

	// UpsertDayRecord creates or replaces the record keyed by its day.
	UpsertDayRecord(ctx context.Context, record *DayRecord) error

	// ListDayRecords returns records in [from, to], ascending by day.
	ListDayRecords(ctx context.Context, from, to time.Time) ([]*DayRecord, error)

	// ListAllDays returns the full history ascending by day. The reconciler
	// replays streak transitions over it.
	ListAllDays(ctx context.Context) ([]*DayRecord, error)

	// Reset deletes all completions and day records. Full data reset is the
	// only path that deletes ledger entries.
	Reset(ctx context.Context) error
}

// SnapshotStore is the flat, group-visible projection shared by every process.
// It guarantees atomic single-key read-modify-write but no multi-key
// transaction and no cross-process lock: field-level writes from different
// processes interleaved in time are last-writer-wins per field.
type SnapshotStore interface {
	// Load reads the whole projection. A missing snapshot decodes as an empty
	// one; undecodable data returns an error wrapping ErrCorruptSnapshot.
	Load(ctx context.Context) (*Snapshot, error)

	// Publish recomputed state as one serialized unit. Main-process writer
	// only; eliminates torn reads for app-originated updates. Rejects
	// placeholder-tagged snapshots.
	Publish(ctx context.Context, snap *Snapshot) error

	// Field-level intent writes. Each is one atomic single-key operation so a
	// process killed mid-sequence leaves a safe, partially-applied state.
	IncrementTodayScore(ctx context.Context, delta int) (int, error)
	SetTodayScore(ctx context.Context, score int) error
	SetCurrentStreak(ctx context.Context, streak int) error
	SetLongestStreak(ctx context.Context, streak int) error
	SetCheckIn(ctx context.Context, day time.Time) error

	// Clear wipes the projection. Full data reset only.
	Clear(ctx context.Context) error
}
