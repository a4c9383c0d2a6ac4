package snapshot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lifeblock/activity-engine/internal/core/domain"
)

var _ domain.SnapshotStore = (*RedisStore)(nil)

// RedisStore keeps the shared snapshot in one hash: one field per wire key.
// HSET of every field at once is the main-process "one serialized unit" write;
// HINCRBY/HSET on single fields are the intent writers' atomic single-key
// read-modify-writes. No MULTI/EXEC anywhere: the store offers the same
// guarantees as the platform's flat group container it models.
type RedisStore struct {
	rdb *redis.Client
	key string
	log *logrus.Logger
}

func NewRedisClient(host, port, password string, dbIndex int) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", host, port)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           dbIndex,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return rdb, nil
}

func NewRedisStore(rdb *redis.Client, key string, log *logrus.Logger) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		key: key,
		log: log,
	}
}

func (s *RedisStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("snapshot read: %w", err)
	}
	if len(fields) == 0 {
		return domain.NewSnapshot(), nil
	}

	snap, err := decodeFields(fields)
	if err != nil {
		s.log.WithError(err).Warn("corrupt snapshot in shared store, cleaning up key")
		s.rdb.Del(ctx, s.key)
		return nil, err
	}
	return snap, nil
}

func (s *RedisStore) Publish(ctx context.Context, snap *domain.Snapshot) error {
	fields, err := encodeFields(snap)
	if err != nil {
		return err
	}

	if err := s.rdb.HSet(ctx, s.key, fields).Err(); err != nil {
		return fmt.Errorf("snapshot publish: %w", err)
	}
	return nil
}

// IncrementTodayScore accumulates intent-origin taps. The result is clamped
// to the wire range afterwards; the clamp is its own single-field write, so a
// kill between the two leaves an over-range value the next reconcile corrects.
func (s *RedisStore) IncrementTodayScore(ctx context.Context, delta int) (int, error) {
	val, err := s.rdb.HIncrBy(ctx, s.key, domain.FieldTodayScore, int64(delta)).Result()
	if err != nil {
		return 0, fmt.Errorf("increment today score: %w", err)
	}

	if val > domain.MaxDayScore {
		if err := s.rdb.HSet(ctx, s.key, domain.FieldTodayScore, domain.MaxDayScore).Err(); err != nil {
			return domain.MaxDayScore, fmt.Errorf("clamp today score: %w", err)
		}
		return domain.MaxDayScore, nil
	}
	return int(val), nil
}

func (s *RedisStore) SetTodayScore(ctx context.Context, score int) error {
	return s.setIntField(ctx, domain.FieldTodayScore, clampScore(score))
}

func (s *RedisStore) SetCurrentStreak(ctx context.Context, streak int) error {
	return s.setIntField(ctx, domain.FieldCurrentStreak, streak)
}

func (s *RedisStore) SetLongestStreak(ctx context.Context, streak int) error {
	return s.setIntField(ctx, domain.FieldLongestStreak, streak)
}

func (s *RedisStore) SetCheckIn(ctx context.Context, day time.Time) error {
	value := domain.NormalizeDay(day).Format(time.RFC3339)
	if err := s.rdb.HSet(ctx, s.key, domain.FieldLastCheckIn, value).Err(); err != nil {
		return fmt.Errorf("set check-in date: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("snapshot clear: %w", err)
	}
	return nil
}

func (s *RedisStore) setIntField(ctx context.Context, field string, value int) error {
	if err := s.rdb.HSet(ctx, s.key, field, value).Err(); err != nil {
		return fmt.Errorf("set %s: %w", field, err)
	}
	return nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > domain.MaxDayScore {
		return domain.MaxDayScore
	}
	return score
}

func encodeFields(snap *domain.Snapshot) (map[string]interface{}, error) {
	if snap.Placeholder {
		return nil, domain.ErrPlaceholderSnapshot
	}

	dayScores, err := domain.EncodeDayScores(snap.DayScores)
	if err != nil {
		return nil, err
	}

	lastCheckIn := ""
	if snap.LastCheckInDate != nil {
		lastCheckIn = domain.NormalizeDay(*snap.LastCheckInDate).Format(time.RFC3339)
	}

	return map[string]interface{}{
		domain.FieldSchemaVersion: domain.SnapshotSchemaVersion,
		domain.FieldTodayScore:    clampScore(snap.TodayScore),
		domain.FieldCurrentStreak: snap.CurrentStreak,
		domain.FieldLongestStreak: snap.LongestStreak,
		domain.FieldLastCheckIn:   lastCheckIn,
		domain.FieldDayScores:     dayScores,
	}, nil
}

func decodeFields(fields map[string]string) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	version, err := intField(fields, domain.FieldSchemaVersion, domain.SnapshotSchemaVersion)
	if err != nil {
		return nil, err
	}
	if version > domain.SnapshotSchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d is newer than this reader", domain.ErrCorruptSnapshot, version)
	}
	snap.SchemaVersion = version

	if snap.TodayScore, err = intField(fields, domain.FieldTodayScore, 0); err != nil {
		return nil, err
	}
	if snap.CurrentStreak, err = intField(fields, domain.FieldCurrentStreak, 0); err != nil {
		return nil, err
	}
	if snap.LongestStreak, err = intField(fields, domain.FieldLongestStreak, 0); err != nil {
		return nil, err
	}

	if raw := fields[domain.FieldLastCheckIn]; raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptSnapshot, domain.FieldLastCheckIn, err)
		}
		day := domain.NormalizeDay(ts)
		snap.LastCheckInDate = &day
	}

	if snap.DayScores, err = domain.DecodeDayScores(fields[domain.FieldDayScores]); err != nil {
		return nil, err
	}

	return snap, nil
}

func intField(fields map[string]string, field string, fallback int) (int, error) {
	raw, ok := fields[field]
	if !ok || raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrCorruptSnapshot, field, err)
	}
	return value, nil
}
