package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignTotal is one campaign's share of a donation batch.
type CampaignTotal struct {
	Campaign string          `json:"campaign"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// TrendPoint is the total donated in one calendar month ("2006-01").
type TrendPoint struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// DonationMetrics is the insight report produced after a donation import or
// an explicit regeneration. Figures are computed locally; Insights carries the
// narrative observations returned by the language model.
type DonationMetrics struct {
	TotalDonations     int             `json:"total_donations"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	AverageDonation    decimal.Decimal `json:"average_donation"`
	TopCampaigns       []CampaignTotal `json:"top_campaigns"`
	DonationTrends     []TrendPoint    `json:"donation_trends"`
	GrowthRate         float64         `json:"growth_rate"`
	DonorRetentionRate float64         `json:"donor_retention_rate"`
	Insights           []string        `json:"insights"`
	Model              string          `json:"model,omitempty"`
	GeneratedAt        time.Time       `json:"generated_at"`
}
