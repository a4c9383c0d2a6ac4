package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lifeblock/activity-engine/internal/core/domain"
)

var _ domain.LedgerRepository = (*PostgresLedgerRepository)(nil)

type PostgresLedgerRepository struct {
	db *sqlx.DB
}

// Connect opens the ledger database with the pool settings the main process
// runs with.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func NewPostgresLedgerRepository(db *sqlx.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

func (r *PostgresLedgerRepository) RecordCompletion(ctx context.Context, completion *domain.HabitCompletion) error {
	query := `
		INSERT INTO habit_completions (
			id, habit_id, day, level, auto_tracked, created_at, updated_at
		) VALUES (
			:id, :habit_id, :day, :level, :auto_tracked, :created_at, :updated_at
		)
		ON CONFLICT (habit_id, day) DO UPDATE
		SET level = EXCLUDED.level,
		    auto_tracked = EXCLUDED.auto_tracked,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, completion)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return errors.New("referenced habit does not exist")
		}
		return err
	}
	return nil
}

func (r *PostgresLedgerRepository) CompletionsForDate(ctx context.Context, day time.Time) ([]*domain.HabitCompletion, error) {
	completions := []*domain.HabitCompletion{}

	query := `
		SELECT * FROM habit_completions
		WHERE day = $1
		ORDER BY habit_id ASC`

	err := r.db.SelectContext(ctx, &completions, query, domain.NormalizeDay(day))
	if err != nil {
		return nil, err
	}
	return completions, nil
}

// ScheduledHabitCount counts habits due on the given day. Daily habits always
// count; specific-day habits count when the weekday matches; interval habits
// count when the day lands on a multiple of their interval from start_date.
func (r *PostgresLedgerRepository) ScheduledHabitCount(ctx context.Context, day time.Time) (int, error) {
	var count int

	query := `
		SELECT count(*) FROM habits
		WHERE start_date <= $1
		  AND (end_date IS NULL OR end_date >= $1)
		  AND archived_at IS NULL
		  AND (
		    frequency_type = 'daily'
		    OR (frequency_type = 'specific_days' AND EXTRACT(DOW FROM $1::date)::int = ANY(weekdays))
		    OR (frequency_type = 'interval' AND ($1::date - start_date::date) % interval_days = 0)
		  )`

	err := r.db.GetContext(ctx, &count, query, domain.NormalizeDay(day))
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresLedgerRepository) GetDayRecord(ctx context.Context, day time.Time) (*domain.DayRecord, error) {
	var record domain.DayRecord

	query := `SELECT * FROM day_records WHERE day = $1`

	err := r.db.GetContext(ctx, &record, query, domain.NormalizeDay(day))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDayRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *PostgresLedgerRepository) UpsertDayRecord(ctx context.Context, record *domain.DayRecord) error {
	record.Day = domain.NormalizeDay(record.Day)

	query := `
		INSERT INTO day_records (
			day, total_score, checked_in, checked_in_at, created_at, updated_at
		) VALUES (
			:day, :total_score, :checked_in, :checked_in_at, :created_at, :updated_at
		)
		ON CONFLICT (day) DO UPDATE
		SET total_score = EXCLUDED.total_score,
		    checked_in = EXCLUDED.checked_in,
		    checked_in_at = EXCLUDED.checked_in_at,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, record)
	return err
}

func (r *PostgresLedgerRepository) ListDayRecords(ctx context.Context, from, to time.Time) ([]*domain.DayRecord, error) {
	records := []*domain.DayRecord{}

	query := `
		SELECT * FROM day_records
		WHERE day >= $1 AND day <= $2
		ORDER BY day ASC`

	err := r.db.SelectContext(ctx, &records, query, domain.NormalizeDay(from), domain.NormalizeDay(to))
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PostgresLedgerRepository) ListAllDays(ctx context.Context) ([]*domain.DayRecord, error) {
	records := []*domain.DayRecord{}

	query := `SELECT * FROM day_records ORDER BY day ASC`

	err := r.db.SelectContext(ctx, &records, query)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PostgresLedgerRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM habit_completions`); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM day_records`)
	return err
}
