package goalstore

import (
	"time"

	"github.com/mrlokans/readtrack/internal/entities"
)

// SweepStatus represents the last consistency sweep outcome
type SweepStatus struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"` // "clean", "issues", "failed", ""
	Summary   string     `json:"summary,omitempty"`
}

// GetSweepStatus returns the last sweep outcome
func (s *Store) GetSweepStatus() SweepStatus {
	status := SweepStatus{}

	if setting, err := s.db.GetSetting(entities.SettingKeySweepLastAt); err == nil && setting.Value != "" {
		if ts, err := time.Parse(time.RFC3339, setting.Value); err == nil {
			status.LastRunAt = &ts
		}
	}

	if setting, err := s.db.GetSetting(entities.SettingKeySweepLastStatus); err == nil {
		status.Status = setting.Value
	}

	if setting, err := s.db.GetSetting(entities.SettingKeySweepLastSummary); err == nil {
		status.Summary = setting.Value
	}

	return status
}

// SetSweepStatus records a sweep outcome
func (s *Store) SetSweepStatus(status, summary string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := s.db.SetSetting(entities.SettingKeySweepLastAt, now); err != nil {
		return err
	}
	if err := s.db.SetSetting(entities.SettingKeySweepLastStatus, status); err != nil {
		return err
	}
	return s.db.SetSetting(entities.SettingKeySweepLastSummary, summary)
}
