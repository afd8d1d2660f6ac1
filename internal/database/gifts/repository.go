// Package gifts provides database operations for gifts (donations).
//
// # Usage
//
//	repo := gifts.NewRepository(db)
//	page, total, err := repo.List(gifts.Filter{Campaign: "Spring Gala"})
package gifts

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/mapping"
)

var ErrGiftNotFound = errors.New("gift not found")

const (
	defaultLimit = 50
	batchSize    = 200

	SourceImport = "import"
	SourceManual = "manual"
)

// Repository handles all gift database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new gifts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows List. Zero values match everything; From and To are inclusive.
type Filter struct {
	DonorID  string
	Campaign string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// Create stores a manually entered gift.
func (r *Repository) Create(gift *entities.Gift) error {
	if gift.ID == "" {
		gift.ID = uuid.NewString()
	}
	if gift.Source == "" {
		gift.Source = SourceManual
	}
	return r.db.Create(gift).Error
}

// GetByID retrieves a gift by ID.
func (r *Repository) GetByID(id string) (*entities.Gift, error) {
	var gift entities.Gift
	err := r.db.Where("id = ?", id).First(&gift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGiftNotFound
	}
	if err != nil {
		return nil, err
	}
	return &gift, nil
}

// List returns a page of gifts, newest first, each with its donor's display name.
func (r *Repository) List(f Filter) ([]entities.GiftSummary, int64, error) {
	var total int64

	query := r.db.Model(&entities.Gift{})
	if f.DonorID != "" {
		query = query.Where("donor_id = ?", f.DonorID)
	}
	if f.Campaign != "" {
		query = query.Where("campaign = ?", f.Campaign)
	}
	if f.From != nil {
		query = query.Where("gift_date >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("gift_date <= ?", *f.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var rows []entities.Gift
	err := query.Order("gift_date DESC, created_at DESC, id ASC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	names, err := r.donorNames(rows)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]entities.GiftSummary, 0, len(rows))
	for _, g := range rows {
		summaries = append(summaries, entities.GiftSummary{Gift: g, DonorName: names[g.DonorID]})
	}
	return summaries, total, nil
}

func (r *Repository) donorNames(rows []entities.Gift) (map[string]string, error) {
	ids := make([]string, 0, len(rows))
	seen := make(map[string]bool)
	for _, g := range rows {
		if g.DonorID != "" && !seen[g.DonorID] {
			seen[g.DonorID] = true
			ids = append(ids, g.DonorID)
		}
	}

	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var donors []entities.Donor
	if err := r.db.Where("id IN ?", ids).Find(&donors).Error; err != nil {
		return nil, err
	}
	for _, d := range donors {
		names[d.ID] = d.DisplayName()
	}
	return names, nil
}

// All returns every gift, for metric computation.
func (r *Repository) All() ([]entities.Gift, error) {
	var gifts []entities.Gift
	err := r.db.Order("id ASC").Find(&gifts).Error
	return gifts, err
}

// Delete removes a gift.
func (r *Repository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&entities.Gift{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGiftNotFound
	}
	return nil
}

// InsertRecords converts imported donation records into gifts and stores them.
// Payment method and recurring flag are lifted out of the record metadata.
func (r *Repository) InsertRecords(records []entities.DonationRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([]entities.Gift, 0, len(records))
	for _, rec := range records {
		rows = append(rows, FromRecord(rec))
	}

	if err := r.db.CreateInBatches(rows, batchSize).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

// FromRecord builds an unsaved gift from an import record.
func FromRecord(rec entities.DonationRecord) entities.Gift {
	date := rec.Date
	gift := entities.Gift{
		ID:       uuid.NewString(),
		DonorID:  rec.DonorID,
		Amount:   rec.Amount,
		GiftDate: &date,
		Campaign: rec.Campaign,
		Source:   SourceImport,
		Metadata: rec.Metadata,
	}
	if date.IsZero() {
		gift.GiftDate = nil
	}
	if v, ok := rec.Metadata.Get(mapping.FieldPaymentMethod); ok {
		gift.PaymentMethod = strings.TrimSpace(v)
	}
	if v, ok := rec.Metadata.Get(mapping.FieldIsRecurring); ok {
		gift.IsRecurring = parseBool(v)
	}
	return gift
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "yes", "y", "recurring", "monthly":
		return true
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
