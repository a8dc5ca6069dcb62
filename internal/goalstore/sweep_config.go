package goalstore

import (
	"os"
	"strconv"
	"time"

	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/robfig/cron/v3"
)

// SweepConfig represents the effective configuration for the consistency sweep
type SweepConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// SweepConfigInfo includes source information for each field
type SweepConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"` // "database", "environment", "default"

	Schedule       string `json:"schedule"`
	ScheduleSource string `json:"schedule_source"`
}

// GetSweepEnabled returns whether the periodic sweep is enabled (database > env > default)
func (s *Store) GetSweepEnabled() bool {
	// Try database first
	setting, err := s.db.GetSetting(entities.SettingKeySweepEnabled)
	if err == nil && setting.Value != "" {
		return setting.Value == "true" || setting.Value == "1"
	}

	// Try environment variable
	if envVal := os.Getenv("READTRACK_SWEEP_ENABLED"); envVal != "" {
		return envVal == "true" || envVal == "1"
	}

	// Default: enabled
	return true
}

// GetSweepEnabledSource returns the source of the enabled setting
func (s *Store) GetSweepEnabledSource() string {
	setting, err := s.db.GetSetting(entities.SettingKeySweepEnabled)
	if err == nil && setting.Value != "" {
		return "database"
	}
	if envVal := os.Getenv("READTRACK_SWEEP_ENABLED"); envVal != "" {
		return "environment"
	}
	return "default"
}

// SetSweepEnabled saves the enabled setting to database
func (s *Store) SetSweepEnabled(enabled bool) error {
	return s.db.SetSetting(entities.SettingKeySweepEnabled, strconv.FormatBool(enabled))
}

// GetSweepSchedule returns the cron schedule (database > env > default)
func (s *Store) GetSweepSchedule() string {
	// Try database first
	setting, err := s.db.GetSetting(entities.SettingKeySweepSchedule)
	if err == nil && setting.Value != "" {
		return setting.Value
	}

	// Try environment variable
	if envVal := os.Getenv("READTRACK_SWEEP_SCHEDULE"); envVal != "" {
		return envVal
	}

	// Default: nightly at 04:00
	return "0 4 * * *"
}

// GetSweepScheduleSource returns the source of the schedule setting
func (s *Store) GetSweepScheduleSource() string {
	setting, err := s.db.GetSetting(entities.SettingKeySweepSchedule)
	if err == nil && setting.Value != "" {
		return "database"
	}
	if envVal := os.Getenv("READTRACK_SWEEP_SCHEDULE"); envVal != "" {
		return "environment"
	}
	return "default"
}

// SetSweepSchedule saves the schedule to database
func (s *Store) SetSweepSchedule(schedule string) error {
	return s.db.SetSetting(entities.SettingKeySweepSchedule, schedule)
}

// GetSweepConfig returns the effective configuration
func (s *Store) GetSweepConfig() SweepConfig {
	return SweepConfig{
		Enabled:  s.GetSweepEnabled(),
		Schedule: s.GetSweepSchedule(),
	}
}

// GetSweepConfigInfo returns the configuration with source information
func (s *Store) GetSweepConfigInfo() SweepConfigInfo {
	return SweepConfigInfo{
		Enabled:        s.GetSweepEnabled(),
		EnabledSource:  s.GetSweepEnabledSource(),
		Schedule:       s.GetSweepSchedule(),
		ScheduleSource: s.GetSweepScheduleSource(),
	}
}

// ClearSweepSettings clears all database overrides, reverting to env/default
func (s *Store) ClearSweepSettings() error {
	keys := []string{
		entities.SettingKeySweepEnabled,
		entities.SettingKeySweepSchedule,
	}
	for _, key := range keys {
		if err := s.db.DeleteSetting(key); err != nil {
			// Ignore not found errors
			continue
		}
	}
	return nil
}

// ValidateCronSchedule validates a cron schedule string
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 4 * * *":
		return "Daily at 04:00"
	case "0 * * * *":
		return "Every hour at :00"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the next sweep will run based on the schedule
func GetNextRunTime(schedule string) (*time.Time, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
