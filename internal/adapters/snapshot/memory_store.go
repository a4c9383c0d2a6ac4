package snapshot

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/lifeblock/activity-engine/internal/core/domain"
)

var _ domain.SnapshotStore = (*InMemoryStore)(nil)

// InMemoryStore mirrors the Redis hash semantics on a field map: every method
// is one atomic operation on one field (or the whole map for Publish), and
// nothing spans fields. Tests use it to interleave "processes" deterministically
// and to inject corrupt field values.
type InMemoryStore struct {
	fields map[string]string

	mu sync.Mutex
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		fields: make(map[string]string),
	}
}

// SetRawField writes an arbitrary field value, bypassing encoding. Test hook
// for corruption and torn-write scenarios.
func (s *InMemoryStore) SetRawField(field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fields[field] = value
}

// RawFields returns a copy of the stored fields for wire-level assertions.
func (s *InMemoryStore) RawFields() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

func (s *InMemoryStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	fields := s.RawFields()
	if len(fields) == 0 {
		return domain.NewSnapshot(), nil
	}

	snap, err := decodeFields(fields)
	if err != nil {
		s.mu.Lock()
		s.fields = make(map[string]string)
		s.mu.Unlock()
		return nil, err
	}
	return snap, nil
}

func (s *InMemoryStore) Publish(ctx context.Context, snap *domain.Snapshot) error {
	encoded, err := encodeFields(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for field, value := range encoded {
		s.fields[field] = stringify(value)
	}
	return nil
}

func (s *InMemoryStore) IncrementTodayScore(ctx context.Context, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _ := strconv.Atoi(s.fields[domain.FieldTodayScore])
	next := current + delta
	if next > domain.MaxDayScore {
		next = domain.MaxDayScore
	}

	s.fields[domain.FieldTodayScore] = strconv.Itoa(next)
	return next, nil
}

func (s *InMemoryStore) SetTodayScore(ctx context.Context, score int) error {
	s.SetRawField(domain.FieldTodayScore, strconv.Itoa(clampScore(score)))
	return nil
}

func (s *InMemoryStore) SetCurrentStreak(ctx context.Context, streak int) error {
	s.SetRawField(domain.FieldCurrentStreak, strconv.Itoa(streak))
	return nil
}

func (s *InMemoryStore) SetLongestStreak(ctx context.Context, streak int) error {
	s.SetRawField(domain.FieldLongestStreak, strconv.Itoa(streak))
	return nil
}

func (s *InMemoryStore) SetCheckIn(ctx context.Context, day time.Time) error {
	s.SetRawField(domain.FieldLastCheckIn, domain.NormalizeDay(day).Format(time.RFC3339))
	return nil
}

func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fields = make(map[string]string)
	return nil
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
