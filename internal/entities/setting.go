package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Reading goal settings
	SettingKeyYearlyBooksGoal = "goal_yearly_books"
	SettingKeyDailyPagesGoal  = "goal_daily_pages"

	// Consistency sweep settings
	SettingKeySweepEnabled     = "consistency_sweep_enabled"
	SettingKeySweepSchedule    = "consistency_sweep_schedule"
	SettingKeySweepLastAt      = "consistency_sweep_last_at"
	SettingKeySweepLastStatus  = "consistency_sweep_last_status"
	SettingKeySweepLastSummary = "consistency_sweep_last_summary"
)
