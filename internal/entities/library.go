package entities

import "time"

type LibraryFileType string

const (
	LibraryFileCSV  LibraryFileType = "csv"
	LibraryFileXLSX LibraryFileType = "xlsx"
	LibraryFileXLS  LibraryFileType = "xls"
	LibraryFilePDF  LibraryFileType = "pdf"
	LibraryFileDOCX LibraryFileType = "docx"
	LibraryFileTXT  LibraryFileType = "txt"
)

// Tabular reports whether files of this type carry parsed table content.
func (t LibraryFileType) Tabular() bool {
	return t == LibraryFileCSV || t == LibraryFileXLSX
}

// LibraryFile is an uploaded file in the data library. Tabular files keep
// their content as delimited text; other types are stored as metadata only.
type LibraryFile struct {
	ID           string          `gorm:"primaryKey;size:64" json:"id"`
	Name         string          `gorm:"size:512" json:"name"`
	FileType     LibraryFileType `gorm:"size:16;index" json:"file_type"`
	Size         int64           `json:"size"`
	Content      string          `gorm:"type:text" json:"-"`
	DatasetCount int             `json:"dataset_count"`
	RowCount     int             `json:"row_count"`
	UserID       uint            `gorm:"index" json:"user_id"`
	UploadedAt   time.Time       `gorm:"index" json:"uploaded_at"`
}

func (LibraryFile) TableName() string {
	return "library_files"
}

// LibraryPreference stores the highlighted rows and columns for one file.
// Highlights belong to a single dataset of the file.
type LibraryPreference struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	FileID             string    `gorm:"uniqueIndex;size:64" json:"file_id"`
	Dataset            int       `gorm:"not null;default:0" json:"dataset"`
	HighlightedRows    []int     `gorm:"serializer:json;type:text" json:"highlighted_rows"`
	HighlightedColumns []string  `gorm:"serializer:json;type:text" json:"highlighted_columns"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (LibraryPreference) TableName() string {
	return "library_preferences"
}
