package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lifeblock/activity-engine/internal/core/domain"
)

var _ domain.LedgerRepository = (*InMemoryLedgerRepository)(nil)

// InMemoryLedgerRepository backs tests and previews. Scheduled habit counts
// are seeded per day (default applies when a day was never seeded).
type InMemoryLedgerRepository struct {
	completions   map[string]map[string]*domain.HabitCompletion
	days          map[string]*domain.DayRecord
	scheduled     map[string]int
	defaultHabits int

	mu sync.RWMutex
}

func NewInMemoryLedgerRepository(defaultScheduledHabits int) *InMemoryLedgerRepository {
	return &InMemoryLedgerRepository{
		completions:   make(map[string]map[string]*domain.HabitCompletion),
		days:          make(map[string]*domain.DayRecord),
		scheduled:     make(map[string]int),
		defaultHabits: defaultScheduledHabits,
	}
}

func (r *InMemoryLedgerRepository) SetScheduledHabitCount(day time.Time, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scheduled[dayKey(day)] = count
}

func (r *InMemoryLedgerRepository) RecordCompletion(ctx context.Context, completion *domain.HabitCompletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := dayKey(completion.Day)
	if _, ok := r.completions[key]; !ok {
		r.completions[key] = make(map[string]*domain.HabitCompletion)
	}
	r.completions[key][completion.HabitID] = completion
	return nil
}

func (r *InMemoryLedgerRepository) CompletionsForDate(ctx context.Context, day time.Time) ([]*domain.HabitCompletion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.HabitCompletion
	for _, c := range r.completions[dayKey(day)] {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].HabitID < out[j].HabitID
	})
	return out, nil
}

func (r *InMemoryLedgerRepository) ScheduledHabitCount(ctx context.Context, day time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if count, ok := r.scheduled[dayKey(day)]; ok {
		return count, nil
	}
	return r.defaultHabits, nil
}

func (r *InMemoryLedgerRepository) GetDayRecord(ctx context.Context, day time.Time) (*domain.DayRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.days[dayKey(day)]
	if !ok {
		return nil, domain.ErrDayRecordNotFound
	}

	clone := *record
	return &clone, nil
}

func (r *InMemoryLedgerRepository) UpsertDayRecord(ctx context.Context, record *domain.DayRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.Day = domain.NormalizeDay(record.Day)
	clone := *record
	r.days[dayKey(record.Day)] = &clone
	return nil
}

func (r *InMemoryLedgerRepository) ListDayRecords(ctx context.Context, from, to time.Time) ([]*domain.DayRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fromDay := domain.NormalizeDay(from)
	toDay := domain.NormalizeDay(to)

	var out []*domain.DayRecord
	for _, record := range r.days {
		if record.Day.Before(fromDay) || record.Day.After(toDay) {
			continue
		}
		clone := *record
		out = append(out, &clone)
	}

	sortByDay(out)
	return out, nil
}

func (r *InMemoryLedgerRepository) ListAllDays(ctx context.Context) ([]*domain.DayRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.DayRecord
	for _, record := range r.days {
		clone := *record
		out = append(out, &clone)
	}

	sortByDay(out)
	return out, nil
}

func (r *InMemoryLedgerRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completions = make(map[string]map[string]*domain.HabitCompletion)
	r.days = make(map[string]*domain.DayRecord)
	return nil
}

func dayKey(day time.Time) string {
	return domain.NormalizeDay(day).Format(domain.DayFormat)
}

func sortByDay(records []*domain.DayRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Day.Before(records[j].Day)
	})
}
