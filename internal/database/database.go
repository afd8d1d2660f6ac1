package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/givin-app/givin/internal/database/campaigns"
	"github.com/givin-app/givin/internal/database/donors"
	"github.com/givin-app/givin/internal/database/gifts"
	"github.com/givin-app/givin/internal/entities"
)

// defaultCampaigns are created on first start so a fresh install has
// somewhere to file gifts that arrive without a campaign.
var defaultCampaigns = []entities.Campaign{
	{Name: "General Fund", Description: "Unrestricted giving", Active: true},
}

type Database struct {
	DB *gorm.DB

	Donors    *donors.Repository
	Gifts     *gifts.Repository
	Campaigns *campaigns.Repository
}

func NewDatabase(dbPath string) (*Database, error) {
	return NewDatabaseWithLogLevel(dbPath, logger.Warn)
}

func NewDatabaseWithLogLevel(dbPath string, level logger.LogLevel) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Donor{},
		&entities.Gift{},
		&entities.Campaign{},
		&entities.LibraryFile{},
		&entities.LibraryPreference{},
		&entities.Setting{},
		&entities.MetricsSnapshot{},
		&entities.AuditEvent{},
		&entities.JobProgress{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{
		DB:        db,
		Donors:    donors.NewRepository(db),
		Gifts:     gifts.NewRepository(db),
		Campaigns: campaigns.NewRepository(db),
	}

	if err := database.seedCampaigns(); err != nil {
		return nil, fmt.Errorf("failed to seed campaigns: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedCampaigns() error {
	for _, campaign := range defaultCampaigns {
		var existing entities.Campaign
		result := d.DB.Unscoped().Where("name = ?", campaign.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&campaign).Error; err != nil {
				return fmt.Errorf("failed to create campaign %s: %w", campaign.Name, err)
			}
			log.Printf("Created campaign: %s", campaign.Name)
		} else if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// Stats holds the headline row counts.
type Stats struct {
	Donors    int64 `json:"donors"`
	Gifts     int64 `json:"gifts"`
	Campaigns int64 `json:"campaigns"`
}

func (d *Database) GetStats() (Stats, error) {
	var s Stats
	if err := d.DB.Model(&entities.Donor{}).Count(&s.Donors).Error; err != nil {
		return s, err
	}
	if err := d.DB.Model(&entities.Gift{}).Count(&s.Gifts).Error; err != nil {
		return s, err
	}
	err := d.DB.Model(&entities.Campaign{}).Count(&s.Campaigns).Error
	return s, err
}
