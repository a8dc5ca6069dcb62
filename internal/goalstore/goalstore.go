package goalstore

import (
	"os"
	"strconv"

	"github.com/mrlokans/readtrack/internal/database"
	"github.com/mrlokans/readtrack/internal/entities"
)

// Priority: database > environment > default
type Store struct {
	db *database.Database
}

func New(db *database.Database) *Store {
	return &Store{db: db}
}

// GetYearlyBooksGoal returns the books-per-year target, 0 when no goal is
// set.
func (s *Store) GetYearlyBooksGoal() int {
	// Try database first
	setting, err := s.db.GetSetting(entities.SettingKeyYearlyBooksGoal)
	if err == nil && setting.Value != "" {
		if goal, err := strconv.Atoi(setting.Value); err == nil {
			return goal
		}
	}

	// Try environment variable
	if envVal := os.Getenv("READTRACK_YEARLY_BOOKS_GOAL"); envVal != "" {
		if goal, err := strconv.Atoi(envVal); err == nil {
			return goal
		}
	}

	// Default: no goal
	return 0
}

// GetYearlyBooksGoalSource returns the source of the yearly goal
func (s *Store) GetYearlyBooksGoalSource() string {
	setting, err := s.db.GetSetting(entities.SettingKeyYearlyBooksGoal)
	if err == nil && setting.Value != "" {
		return "database"
	}
	if envVal := os.Getenv("READTRACK_YEARLY_BOOKS_GOAL"); envVal != "" {
		return "environment"
	}
	return "default"
}

// SetYearlyBooksGoal saves the yearly goal to database
func (s *Store) SetYearlyBooksGoal(goal int) error {
	return s.db.SetSetting(entities.SettingKeyYearlyBooksGoal, strconv.Itoa(goal))
}

// GetDailyPagesGoal returns the pages-per-day target, 0 when no goal is set.
func (s *Store) GetDailyPagesGoal() int {
	// Try database first
	setting, err := s.db.GetSetting(entities.SettingKeyDailyPagesGoal)
	if err == nil && setting.Value != "" {
		if goal, err := strconv.Atoi(setting.Value); err == nil {
			return goal
		}
	}

	// Try environment variable
	if envVal := os.Getenv("READTRACK_DAILY_PAGES_GOAL"); envVal != "" {
		if goal, err := strconv.Atoi(envVal); err == nil {
			return goal
		}
	}

	// Default: no goal
	return 0
}

// GetDailyPagesGoalSource returns the source of the daily goal
func (s *Store) GetDailyPagesGoalSource() string {
	setting, err := s.db.GetSetting(entities.SettingKeyDailyPagesGoal)
	if err == nil && setting.Value != "" {
		return "database"
	}
	if envVal := os.Getenv("READTRACK_DAILY_PAGES_GOAL"); envVal != "" {
		return "environment"
	}
	return "default"
}

// SetDailyPagesGoal saves the daily goal to database
func (s *Store) SetDailyPagesGoal(goal int) error {
	return s.db.SetSetting(entities.SettingKeyDailyPagesGoal, strconv.Itoa(goal))
}

type GoalsInfo struct {
	YearlyBooks       int    `json:"yearly_books"`
	YearlyBooksSource string `json:"yearly_books_source"` // "database", "environment", or "default"

	DailyPages       int    `json:"daily_pages"`
	DailyPagesSource string `json:"daily_pages_source"`
}

// GetGoalsInfo returns both goals with source information
func (s *Store) GetGoalsInfo() GoalsInfo {
	return GoalsInfo{
		YearlyBooks:       s.GetYearlyBooksGoal(),
		YearlyBooksSource: s.GetYearlyBooksGoalSource(),
		DailyPages:        s.GetDailyPagesGoal(),
		DailyPagesSource:  s.GetDailyPagesGoalSource(),
	}
}

// ClearGoals clears all database overrides, reverting to env/default
func (s *Store) ClearGoals() error {
	keys := []string{
		entities.SettingKeyYearlyBooksGoal,
		entities.SettingKeyDailyPagesGoal,
	}
	for _, key := range keys {
		if err := s.db.DeleteSetting(key); err != nil {
			// Ignore not found errors
			continue
		}
	}
	return nil
}
