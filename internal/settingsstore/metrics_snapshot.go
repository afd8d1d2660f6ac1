package settingsstore

import (
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/givin-app/givin/internal/config"
	"github.com/givin-app/givin/internal/entities"
)

const DefaultSnapshotSchedule = "0 6 * * *"

// MetricsSnapshotConfig represents the effective configuration for the daily
// dashboard snapshot.
type MetricsSnapshotConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// MetricsSnapshotConfigInfo includes source information for each field
type MetricsSnapshotConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"` // "database", "environment", "default"

	Schedule       string `json:"schedule"`
	ScheduleSource string `json:"schedule_source"`
}

// MetricsSnapshotStatus represents the last snapshot run
type MetricsSnapshotStatus struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"` // "success", "failed", "running", ""
	Message   string     `json:"message,omitempty"`
}

func (s *SettingsStore) value(key string) string {
	v, ok, err := s.repo.GetValue(key)
	if err != nil || !ok {
		return ""
	}
	return v
}

// GetMetricsSnapshotEnabled returns whether snapshots are enabled (database > env > default)
func (s *SettingsStore) GetMetricsSnapshotEnabled() bool {
	if v := s.value(entities.SettingKeyMetricsSnapshotEnabled); v != "" {
		return v == "true" || v == "1"
	}
	if envVal := os.Getenv("METRICS_SNAPSHOT_ENABLED"); envVal != "" {
		return envVal == "true" || envVal == "1"
	}
	return false
}

func (s *SettingsStore) GetMetricsSnapshotEnabledSource() string {
	if s.value(entities.SettingKeyMetricsSnapshotEnabled) != "" {
		return "database"
	}
	if os.Getenv("METRICS_SNAPSHOT_ENABLED") != "" {
		return "environment"
	}
	return "default"
}

func (s *SettingsStore) SetMetricsSnapshotEnabled(enabled bool) error {
	return s.repo.SetSetting(entities.SettingKeyMetricsSnapshotEnabled, strconv.FormatBool(enabled))
}

// GetMetricsSnapshotSchedule returns the cron schedule (database > env > default)
func (s *SettingsStore) GetMetricsSnapshotSchedule() string {
	if v := s.value(entities.SettingKeyMetricsSnapshotSchedule); v != "" {
		return v
	}
	if envVal := os.Getenv("METRICS_SNAPSHOT_SCHEDULE"); envVal != "" {
		return envVal
	}
	return DefaultSnapshotSchedule
}

func (s *SettingsStore) GetMetricsSnapshotScheduleSource() string {
	if s.value(entities.SettingKeyMetricsSnapshotSchedule) != "" {
		return "database"
	}
	if os.Getenv("METRICS_SNAPSHOT_SCHEDULE") != "" {
		return "environment"
	}
	return "default"
}

func (s *SettingsStore) SetMetricsSnapshotSchedule(schedule string) error {
	return s.repo.SetSetting(entities.SettingKeyMetricsSnapshotSchedule, schedule)
}

// GetMetricsSnapshotConfig returns the effective configuration
func (s *SettingsStore) GetMetricsSnapshotConfig() MetricsSnapshotConfig {
	return MetricsSnapshotConfig{
		Enabled:  s.GetMetricsSnapshotEnabled(),
		Schedule: s.GetMetricsSnapshotSchedule(),
	}
}

// GetMetricsSnapshotConfigInfo returns the configuration with source information
func (s *SettingsStore) GetMetricsSnapshotConfigInfo() MetricsSnapshotConfigInfo {
	return MetricsSnapshotConfigInfo{
		Enabled:        s.GetMetricsSnapshotEnabled(),
		EnabledSource:  s.GetMetricsSnapshotEnabledSource(),
		Schedule:       s.GetMetricsSnapshotSchedule(),
		ScheduleSource: s.GetMetricsSnapshotScheduleSource(),
	}
}

// GetMetricsSnapshotStatus returns the last run status
func (s *SettingsStore) GetMetricsSnapshotStatus() MetricsSnapshotStatus {
	status := MetricsSnapshotStatus{
		Status:  s.value(entities.SettingKeyMetricsSnapshotLastStatus),
		Message: s.value(entities.SettingKeyMetricsSnapshotLastMessage),
	}
	if v := s.value(entities.SettingKeyMetricsSnapshotLastAt); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			status.LastRunAt = &ts
		}
	}
	return status
}

// SetMetricsSnapshotStatus records the outcome of a run
func (s *SettingsStore) SetMetricsSnapshotStatus(status, message string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := s.repo.SetSetting(entities.SettingKeyMetricsSnapshotLastAt, now); err != nil {
		return err
	}
	if err := s.repo.SetSetting(entities.SettingKeyMetricsSnapshotLastStatus, status); err != nil {
		return err
	}
	return s.repo.SetSetting(entities.SettingKeyMetricsSnapshotLastMessage, message)
}

// ClearMetricsSnapshotSettings clears all database overrides, reverting to env/default
func (s *SettingsStore) ClearMetricsSnapshotSettings() error {
	keys := []string{
		entities.SettingKeyMetricsSnapshotEnabled,
		entities.SettingKeyMetricsSnapshotSchedule,
	}
	for _, key := range keys {
		if err := s.repo.DeleteSetting(key); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCronSchedule validates a five-field cron schedule string
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "0 0 * * *":
		return "Daily at midnight"
	case DefaultSnapshotSchedule:
		return "Daily at 06:00"
	case "0 0 * * 1":
		return "Weekly on Monday at midnight"
	case "0 0 1 * *":
		return "Monthly on the 1st at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the next snapshot will run
func GetNextRunTime(schedule string, from time.Time) (*time.Time, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(from)
	return &next, nil
}

// NewMetricsSnapshotConfigFromConfig builds settings from static config (for use when database not yet ready)
func NewMetricsSnapshotConfigFromConfig(cfg config.Metrics) MetricsSnapshotConfig {
	schedule := cfg.SnapshotSchedule
	if schedule == "" {
		schedule = DefaultSnapshotSchedule
	}
	return MetricsSnapshotConfig{
		Enabled:  cfg.SnapshotEnabled,
		Schedule: schedule,
	}
}
