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
	// Organization profile, stored as one JSON document
	SettingKeyOrganizationProfile = "organization_profile"

	// Last generated insight report, stored as JSON
	SettingKeyInsightsLastReport = "insights_last_report"

	// Metrics snapshot scheduler
	SettingKeyMetricsSnapshotEnabled     = "metrics_snapshot_enabled"
	SettingKeyMetricsSnapshotSchedule    = "metrics_snapshot_schedule"
	SettingKeyMetricsSnapshotLastAt      = "metrics_snapshot_last_at"
	SettingKeyMetricsSnapshotLastStatus  = "metrics_snapshot_last_status"
	SettingKeyMetricsSnapshotLastMessage = "metrics_snapshot_last_message"
)
