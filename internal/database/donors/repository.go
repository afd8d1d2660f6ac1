// Package donors provides database operations for donor records.
//
// # Usage
//
//	repo := donors.NewRepository(db)
//	list, total, err := repo.List(donors.Filter{Query: "smith", Limit: 20})
package donors

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/entities"
)

var ErrDonorNotFound = errors.New("donor not found")

const defaultLimit = 50

// Repository handles all donor database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new donors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows List. Query matches names and email, case-insensitive.
type Filter struct {
	Query  string
	Limit  int
	Offset int
}

// Create stores a new donor, assigning an ID when none is set.
func (r *Repository) Create(donor *entities.Donor) error {
	if donor.ID == "" {
		donor.ID = uuid.NewString()
	}
	donor.Email = normalizeEmail(donor.Email)
	return r.db.Create(donor).Error
}

// GetByID retrieves a donor by ID.
func (r *Repository) GetByID(id string) (*entities.Donor, error) {
	var donor entities.Donor
	err := r.db.Where("id = ?", id).First(&donor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDonorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

// GetByEmail retrieves a donor by email address.
func (r *Repository) GetByEmail(email string) (*entities.Donor, error) {
	var donor entities.Donor
	err := r.db.Where("email = ?", normalizeEmail(email)).First(&donor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDonorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

// List returns a page of donors ordered by last then first name, with the total match count.
func (r *Repository) List(f Filter) ([]entities.Donor, int64, error) {
	var donors []entities.Donor
	var total int64

	query := r.db.Model(&entities.Donor{})
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
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

	err := query.Order("last_name ASC, first_name ASC, id ASC").Limit(f.Limit).Offset(f.Offset).Find(&donors).Error
	return donors, total, err
}

// All returns every donor, for metric computation.
func (r *Repository) All() ([]entities.Donor, error) {
	var donors []entities.Donor
	err := r.db.Order("id ASC").Find(&donors).Error
	return donors, err
}

// Update saves changes to an existing donor.
func (r *Repository) Update(donor *entities.Donor) error {
	donor.Email = normalizeEmail(donor.Email)
	result := r.db.Model(&entities.Donor{}).Where("id = ?", donor.ID).Select("*").Omit("id", "created_at", "deleted_at").Updates(donor)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDonorNotFound
	}
	return nil
}

// Delete soft-deletes a donor. Their gifts are kept.
func (r *Repository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&entities.Donor{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDonorNotFound
	}
	return nil
}

// UpsertRecords stores imported donors. A record whose email matches an
// existing donor updates that donor's non-empty fields; others are created.
func (r *Repository) UpsertRecords(records []entities.DonorRecord) (created, updated int, err error) {
	for _, rec := range records {
		donor := fromRecord(rec)

		var existing *entities.Donor
		if donor.Email != "" {
			existing, err = r.GetByEmail(donor.Email)
			if err != nil && !errors.Is(err, ErrDonorNotFound) {
				return created, updated, err
			}
		}

		if existing == nil {
			if err := r.Create(&donor); err != nil {
				return created, updated, err
			}
			created++
			continue
		}

		merge(existing, donor)
		if err := r.db.Save(existing).Error; err != nil {
			return created, updated, err
		}
		updated++
	}
	return created, updated, nil
}

func fromRecord(rec entities.DonorRecord) entities.Donor {
	return entities.Donor{
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Email:     normalizeEmail(rec.Email),
		Phone:     rec.Phone,
		Address:   rec.Address,
		City:      rec.City,
		State:     rec.State,
		ZipCode:   rec.ZipCode,
		Country:   rec.Country,
		Notes:     rec.Notes,
		Metadata:  rec.Metadata,
	}
}

func merge(dst *entities.Donor, src entities.Donor) {
	set := func(field *string, value string) {
		if value != "" {
			*field = value
		}
	}
	set(&dst.FirstName, src.FirstName)
	set(&dst.LastName, src.LastName)
	set(&dst.Phone, src.Phone)
	set(&dst.Address, src.Address)
	set(&dst.City, src.City)
	set(&dst.State, src.State)
	set(&dst.ZipCode, src.ZipCode)
	set(&dst.Country, src.Country)
	set(&dst.Notes, src.Notes)
	for _, e := range src.Metadata {
		dst.Metadata = dst.Metadata.Set(e.Key, e.Value)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
