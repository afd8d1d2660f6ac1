package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricsSnapshot is a stored copy of the dashboard headline figures,
// written by the snapshot scheduler. Payload holds the full snapshot as JSON.
type MetricsSnapshot struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	TakenAt            time.Time       `gorm:"index" json:"taken_at"`
	TotalDonationsMTD  decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_donations_mtd"`
	TotalDonorPool     int             `json:"total_donor_pool"`
	AverageDonation    decimal.Decimal `gorm:"type:decimal(14,2)" json:"average_donation"`
	RecurringDonations int             `json:"recurring_donations"`
	LybuntCount        int             `json:"lybunt_count"`
	SybuntCount        int             `json:"sybunt_count"`
	Payload            string          `gorm:"type:text" json:"-"`
	CreatedAt          time.Time       `json:"created_at"`
}

func (MetricsSnapshot) TableName() string {
	return "metrics_snapshots"
}
