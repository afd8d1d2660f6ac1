package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/database/library"
	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/tabular"
	"github.com/givin-app/givin/internal/utils"
)

// LibraryStore defines database operations for the data library.
type LibraryStore interface {
	Save(file *entities.LibraryFile) error
	List() ([]entities.LibraryFile, error)
	GetByID(id string) (*entities.LibraryFile, error)
	Delete(id string) error
	GetPreference(fileID string) (*entities.LibraryPreference, error)
	SavePreference(fileID string, dataset int, rows []int, columns []string) (*entities.LibraryPreference, error)
}

// LibraryAuditor records deletions and downloads of library files.
type LibraryAuditor interface {
	DeleteLogger
	LogExport(userID uint, entityType, entityID, description string)
}

type LibraryController struct {
	store          LibraryStore
	audit          LibraryAuditor
	maxUploadBytes int64
}

func NewLibraryController(store LibraryStore, audit LibraryAuditor, maxUploadBytes int64) *LibraryController {
	return &LibraryController{store: store, audit: audit, maxUploadBytes: maxUploadBytes}
}

// Upload handles POST /api/library with a multipart "file" field. CSV and
// XLSX files are parsed and kept as CSV text; other types keep metadata only.
func (lc *LibraryController) Upload(c *gin.Context) {
	upload, ok := readUpload(c, "file", lc.maxUploadBytes)
	if !ok {
		return
	}

	file := entities.LibraryFile{
		Name:     upload.Name,
		FileType: upload.Type,
		Size:     int64(len(upload.Data)),
		UserID:   auth.GetUserID(c),
	}

	if upload.Type.Tabular() {
		text, err := upload.tabularText()
		if err != nil {
			respondValidation(c, "unreadable_file", err.Error(), gin.H{"name": upload.Name})
			return
		}
		set, err := tabular.ParseDatasets(text)
		if err != nil {
			respondValidation(c, "unreadable_file", err.Error(), gin.H{"name": upload.Name})
			return
		}
		file.Content = tabular.SerializeMulti(set)
		file.DatasetCount = set.Len()
		for _, t := range set.Datasets {
			file.RowCount += t.RowCount()
		}
	}

	if err := lc.store.Save(&file); err != nil {
		respondInternalError(c, err, "save library file")
		return
	}
	respondCreated(c, file)
}

// List handles GET /api/library
func (lc *LibraryController) List(c *gin.Context) {
	files, err := lc.store.List()
	if err != nil {
		respondInternalError(c, err, "list library files")
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (lc *LibraryController) file(c *gin.Context) (*entities.LibraryFile, bool) {
	file, err := lc.store.GetByID(c.Param("id"))
	if errors.Is(err, library.ErrFileNotFound) {
		respondNotFound(c, "file")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "get library file")
		return nil, false
	}
	return file, true
}

// datasets parses the stored content of a tabular file.
func datasets(file *entities.LibraryFile) (*tabular.MultiTableSet, error) {
	if !file.FileType.Tabular() || file.Content == "" {
		return &tabular.MultiTableSet{Datasets: []*tabular.Table{}}, nil
	}
	return tabular.ParseDatasets(file.Content)
}

// Get handles GET /api/library/:id and returns the parsed datasets with the
// file's highlights.
func (lc *LibraryController) Get(c *gin.Context) {
	file, ok := lc.file(c)
	if !ok {
		return
	}
	set, err := datasets(file)
	if err != nil {
		respondInternalError(c, err, "parse library file")
		return
	}
	pref, err := lc.store.GetPreference(file.ID)
	if err != nil {
		respondInternalError(c, err, "get library preference")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file":       file,
		"datasets":   set.Datasets,
		"preference": pref,
	})
}

// Delete handles DELETE /api/library/:id
func (lc *LibraryController) Delete(c *gin.Context) {
	file, ok := lc.file(c)
	if !ok {
		return
	}
	if err := lc.store.Delete(file.ID); err != nil {
		respondInternalError(c, err, "delete library file")
		return
	}
	if lc.audit != nil {
		lc.audit.LogDelete(auth.GetUserID(c), "library_file", file.ID, file.Name)
	}
	respondSuccess(c, "file deleted")
}

// GetPreference handles GET /api/library/:id/preferences
func (lc *LibraryController) GetPreference(c *gin.Context) {
	file, ok := lc.file(c)
	if !ok {
		return
	}
	pref, err := lc.store.GetPreference(file.ID)
	if err != nil {
		respondInternalError(c, err, "get library preference")
		return
	}
	c.JSON(http.StatusOK, pref)
}

type preferenceRequest struct {
	Dataset            int      `json:"dataset"`
	HighlightedRows    []int    `json:"highlighted_rows"`
	HighlightedColumns []string `json:"highlighted_columns"`
}

// SavePreference handles PUT /api/library/:id/preferences
func (lc *LibraryController) SavePreference(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Dataset < 0 {
		respondValidation(c, "invalid_preference", "dataset index cannot be negative", gin.H{"dataset": req.Dataset})
		return
	}
	for _, row := range req.HighlightedRows {
		if row < 0 {
			respondValidation(c, "invalid_preference", "row indexes cannot be negative", gin.H{"row": row})
			return
		}
	}

	pref, err := lc.store.SavePreference(c.Param("id"), req.Dataset, req.HighlightedRows, req.HighlightedColumns)
	if errors.Is(err, library.ErrFileNotFound) {
		respondNotFound(c, "file")
		return
	}
	if err != nil {
		respondInternalError(c, err, "save library preference")
		return
	}
	c.JSON(http.StatusOK, pref)
}

// Download handles GET /api/library/:id/download?dataset=N. The dataset the
// highlights were saved for is narrowed to the highlighted columns, then to
// the highlighted rows; an empty highlight list keeps everything. Other
// datasets download in full.
func (lc *LibraryController) Download(c *gin.Context) {
	file, ok := lc.file(c)
	if !ok {
		return
	}
	if !file.FileType.Tabular() {
		respondValidation(c, "not_tabular", "only csv and xlsx files can be downloaded", gin.H{"file_type": file.FileType})
		return
	}

	index, err := strconv.Atoi(c.DefaultQuery("dataset", "0"))
	if err != nil {
		respondBadRequest(c, "invalid dataset")
		return
	}
	set, err := datasets(file)
	if err != nil {
		respondInternalError(c, err, "parse library file")
		return
	}
	table := set.Dataset(index)
	if table == nil {
		respondNotFound(c, "dataset")
		return
	}

	pref, err := lc.store.GetPreference(file.ID)
	if err != nil {
		respondInternalError(c, err, "get library preference")
		return
	}
	if pref.Dataset == index {
		if len(pref.HighlightedColumns) > 0 {
			table = table.Project(pref.HighlightedColumns)
		}
		if len(pref.HighlightedRows) > 0 {
			table = table.SelectRows(pref.HighlightedRows)
		}
	}

	name := utils.HighlightedFilename(file.Name)
	if lc.audit != nil {
		lc.audit.LogExport(auth.GetUserID(c), "library_file", file.ID,
			fmt.Sprintf("Downloaded %s (%d rows)", name, table.RowCount()))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(tabular.Serialize(table)))
}
