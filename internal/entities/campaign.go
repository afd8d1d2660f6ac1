package entities

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Campaign struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"uniqueIndex;size:255" json:"name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Goal        decimal.Decimal `gorm:"type:decimal(14,2)" json:"goal"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Active      bool            `gorm:"default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`

	// Raised is filled from gift totals at read time.
	Raised    decimal.Decimal `gorm:"-" json:"raised"`
	GiftCount int             `gorm:"-" json:"gift_count"`
}

func (Campaign) TableName() string {
	return "campaigns"
}
