package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCompletion = errors.New("invalid habit completion data")
)

const (
	CompletionLevelNone    = 0
	CompletionLevelPartial = 1
	CompletionLevelFull    = 2

	MaxCompletionLevel = CompletionLevelFull
)

// HabitCompletion is one habit's completion for one calendar day.
// Owned by the Ledger; only the main process creates or updates these.
type HabitCompletion struct {
	ID          string    `json:"id" db:"id"`
	HabitID     string    `json:"habit_id" db:"habit_id"`
	Day         time.Time `json:"day" db:"day"`
	Level       int       `json:"level" db:"level"`
	AutoTracked bool      `json:"auto_tracked" db:"auto_tracked"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewHabitCompletion(habitID string, day time.Time, level int, autoTracked bool) *HabitCompletion {
	now := time.Now().UTC()

	return &HabitCompletion{
		ID:          uuid.NewString(),
		HabitID:     habitID,
		Day:         NormalizeDay(day),
		Level:       level,
		AutoTracked: autoTracked,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *HabitCompletion) Validate() error {
	if strings.TrimSpace(c.HabitID) == "" {
		return errors.New("habit_id is required")
	}
	if c.Level < CompletionLevelNone || c.Level > MaxCompletionLevel {
		return errors.New("level must be between 0 and 2")
	}
	if c.Day.IsZero() {
		return errors.New("day is required")
	}
	return nil
}
