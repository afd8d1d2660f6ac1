// Package library provides database operations for the data library: uploaded
// files and their per-file highlight preferences.
package library

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/entities"
)

var ErrFileNotFound = errors.New("library file not found")

// Repository handles all library database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new library repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save stores a new file.
func (r *Repository) Save(file *entities.LibraryFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now()
	}
	return r.db.Create(file).Error
}

// List returns files newest first. Content is not loaded.
func (r *Repository) List() ([]entities.LibraryFile, error) {
	var files []entities.LibraryFile
	err := r.db.Omit("content").Order("uploaded_at DESC, id ASC").Find(&files).Error
	return files, err
}

// GetByID retrieves a file including its content.
func (r *Repository) GetByID(id string) (*entities.LibraryFile, error) {
	var file entities.LibraryFile
	err := r.db.Where("id = ?", id).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Delete removes a file together with its preferences.
func (r *Repository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&entities.LibraryFile{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrFileNotFound
		}
		return tx.Where("file_id = ?", id).Delete(&entities.LibraryPreference{}).Error
	})
}

// GetPreference returns the stored highlights for a file, or an empty
// preference when none were saved.
func (r *Repository) GetPreference(fileID string) (*entities.LibraryPreference, error) {
	var pref entities.LibraryPreference
	err := r.db.Where("file_id = ?", fileID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entities.LibraryPreference{FileID: fileID, HighlightedRows: []int{}, HighlightedColumns: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// SavePreference creates or replaces the highlights for a file. The
// highlights refer to the file's dataset at index dataset.
func (r *Repository) SavePreference(fileID string, dataset int, rows []int, columns []string) (*entities.LibraryPreference, error) {
	if _, err := r.GetByID(fileID); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []int{}
	}
	if columns == nil {
		columns = []string{}
	}

	var pref entities.LibraryPreference
	result := r.db.Where("file_id = ?", fileID).First(&pref)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	pref.FileID = fileID
	pref.Dataset = dataset
	pref.HighlightedRows = rows
	pref.HighlightedColumns = columns
	if err := r.db.Save(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}
