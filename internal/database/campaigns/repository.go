// Package campaigns provides database operations for fundraising campaigns.
//
// Gifts reference campaigns by name, so the raised totals are computed from
// the gifts table at read time rather than stored.
package campaigns

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/entities"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrNameRequired     = errors.New("campaign name is required")
)

// Repository handles all campaign database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new campaigns repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type totalRow struct {
	Campaign string
	Total    decimal.Decimal
	Count    int
}

// List returns all campaigns with their raised totals, by name.
func (r *Repository) List() ([]entities.Campaign, error) {
	var campaigns []entities.Campaign
	if err := r.db.Order("name ASC").Find(&campaigns).Error; err != nil {
		return nil, err
	}

	totals, err := r.totals()
	if err != nil {
		return nil, err
	}
	for i := range campaigns {
		fill(&campaigns[i], totals)
	}
	return campaigns, nil
}

// GetByID retrieves a campaign with its raised total.
func (r *Repository) GetByID(id uint) (*entities.Campaign, error) {
	var campaign entities.Campaign
	err := r.db.First(&campaign, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}

	totals, err := r.totals()
	if err != nil {
		return nil, err
	}
	fill(&campaign, totals)
	return &campaign, nil
}

func (r *Repository) Create(campaign *entities.Campaign) error {
	campaign.Name = strings.TrimSpace(campaign.Name)
	if campaign.Name == "" {
		return ErrNameRequired
	}
	return r.db.Create(campaign).Error
}

func (r *Repository) Update(campaign *entities.Campaign) error {
	campaign.Name = strings.TrimSpace(campaign.Name)
	if campaign.Name == "" {
		return ErrNameRequired
	}
	result := r.db.Model(&entities.Campaign{}).Where("id = ?", campaign.ID).
		Select("name", "description", "goal", "start_date", "end_date", "active").
		Updates(campaign)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// Delete soft-deletes a campaign. Gifts filed under it keep the name.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Campaign{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// EnsureExist creates a campaign for every distinct non-empty name that has
// no row yet, and returns how many were created.
func (r *Repository) EnsureExist(names []string) (int, error) {
	created := 0
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var count int64
		if err := r.db.Unscoped().Model(&entities.Campaign{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}
		if err := r.db.Create(&entities.Campaign{Name: name, Active: true}).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (r *Repository) totals() (map[string]totalRow, error) {
	var rows []totalRow
	err := r.db.Model(&entities.Gift{}).
		Select("campaign, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("campaign").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]totalRow, len(rows))
	for _, row := range rows {
		totals[row.Campaign] = row
	}
	return totals, nil
}

func fill(c *entities.Campaign, totals map[string]totalRow) {
	c.Raised = decimal.Zero
	if t, ok := totals[c.Name]; ok {
		c.Raised = t.Total
		c.GiftCount = t.Count
	}
}
