package database

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/database/campaigns"
	"github.com/givin-app/givin/internal/database/donors"
	"github.com/givin-app/givin/internal/database/gifts"
	"github.com/givin-app/givin/internal/entities"
)

// StoreDonations writes imported donations in one transaction and creates
// any campaign named by the batch that does not exist yet.
// Implements importers.Store.
func (d *Database) StoreDonations(ctx context.Context, records []entities.DonationRecord) (int, error) {
	var stored int
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		names := make([]string, 0, len(records))
		for _, r := range records {
			names = append(names, r.Campaign)
		}
		if _, err := campaigns.NewRepository(tx).EnsureExist(names); err != nil {
			return fmt.Errorf("failed to create campaigns: %w", err)
		}

		n, err := gifts.NewRepository(tx).InsertRecords(records)
		if err != nil {
			return err
		}
		stored = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("Import: stored %d donations", stored)
	return stored, nil
}

// StoreDonors upserts imported donors, matching existing rows by email.
// Implements importers.Store.
func (d *Database) StoreDonors(ctx context.Context, records []entities.DonorRecord) (int, error) {
	var created, updated int
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, updated, err = donors.NewRepository(tx).UpsertRecords(records)
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Printf("Import: stored donors (%d created, %d updated)", created, updated)
	return created + updated, nil
}
