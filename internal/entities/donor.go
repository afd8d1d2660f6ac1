package entities

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Donor struct {
	ID        string         `gorm:"primaryKey;size:64" json:"id"`
	FirstName string         `gorm:"size:128" json:"first_name"`
	LastName  string         `gorm:"index;size:128" json:"last_name"`
	Email     string         `gorm:"index;size:255" json:"email"`
	Phone     string         `gorm:"size:64" json:"phone,omitempty"`
	Address   string         `gorm:"size:512" json:"address,omitempty"`
	City      string         `gorm:"size:128" json:"city,omitempty"`
	State     string         `gorm:"size:64" json:"state,omitempty"`
	ZipCode   string         `gorm:"size:32" json:"zip_code,omitempty"`
	Country   string         `gorm:"size:64" json:"country,omitempty"`
	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
	Metadata  Metadata       `gorm:"serializer:json;type:text" json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Donor) TableName() string {
	return "donors"
}

// DisplayName joins first and last name, trimmed.
func (d Donor) DisplayName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}
