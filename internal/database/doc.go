// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, campaign seeding
//	├── store.go         # importers.Store implementation (transactional writes)
//	├── donors/          # Donor CRUD and import upserts
//	├── gifts/           # Gift listing, import inserts
//	├── campaigns/       # Campaigns with raised totals
//	├── library/         # Uploaded files and highlight preferences
//	├── snapshots/       # Dashboard history
//	├── audit/           # Audit trail
//	├── jobs/            # Background job progress
//	├── settings/        # Key/value settings, JSON helpers
//	└── users/           # Staff accounts
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type built from a *gorm.DB:
//
//	db, err := database.NewDatabase("./givin.db")
//	libraryRepo := library.NewRepository(db.DB)
//	files, err := libraryRepo.List()
//
// The repositories the import path needs (donors, gifts, campaigns) are also
// exposed on the Database struct. Repositories accept a transaction handle
// in place of the connection, which is how StoreDonations keeps campaign
// creation and gift inserts atomic.
package database
