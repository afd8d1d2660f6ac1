package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetadataEntry is one extra mapped column carried alongside a record.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Metadata keeps extra mapped columns in mapping order.
type Metadata []MetadataEntry

// Get returns the value stored under key.
func (m Metadata) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces the value under key or appends a new entry.
func (m Metadata) Set(key, value string) Metadata {
	for i, e := range m {
		if e.Key == key {
			m[i].Value = value
			return m
		}
	}
	return append(m, MetadataEntry{Key: key, Value: value})
}

// DonationRecord is one validated row of a donation import.
type DonationRecord struct {
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Campaign string          `json:"campaign"`
	DonorID  string          `json:"donor_id"`
	Metadata Metadata        `json:"metadata,omitempty"`
}

// DonorRecord is one validated row of a donor import.
type DonorRecord struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	ZipCode   string   `json:"zip_code,omitempty"`
	Country   string   `json:"country,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	Metadata  Metadata `json:"metadata,omitempty"`
}
