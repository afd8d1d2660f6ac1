package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type Gift struct {
	ID            string          `gorm:"primaryKey;size:64" json:"id"`
	DonorID       string          `gorm:"index;size:64" json:"donor_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"`
	GiftDate      *time.Time      `gorm:"index" json:"gift_date,omitempty"`
	Campaign      string          `gorm:"index;size:255" json:"campaign"`
	PaymentMethod string          `gorm:"size:64" json:"payment_method,omitempty"`
	IsRecurring   bool            `json:"is_recurring"`
	Source        string          `gorm:"size:64" json:"source,omitempty"` // "import", "manual"
	ReceiptNumber string          `gorm:"size:64" json:"receipt_number,omitempty"`
	Metadata      Metadata        `gorm:"serializer:json;type:text" json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Gift) TableName() string {
	return "gifts"
}

// GiftSummary is a gift with its donor's display name, for listings.
type GiftSummary struct {
	Gift
	DonorName string `json:"donor_name"`
}
