package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/tabular"
	"github.com/givin-app/givin/internal/utils"
)

// multipartOverhead is allowed on top of the file limit for form boundaries
// and other fields.
const multipartOverhead = 1 << 20

// uploadedFile is a multipart upload read into memory.
type uploadedFile struct {
	Name string
	Type entities.LibraryFileType
	Data []byte
}

// readUpload reads the named multipart file. It responds with 413 when the
// file exceeds maxBytes and 422 when the extension is not a known type.
func readUpload(c *gin.Context, field string, maxBytes int64) (*uploadedFile, bool) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
	}

	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "file too large")
			return nil, false
		}
		respondBadRequest(c, "a file is required in the '"+field+"' field")
		return nil, false
	}
	if maxBytes > 0 && header.Size > maxBytes {
		respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file too large, the limit is %d bytes", maxBytes))
		return nil, false
	}

	name := utils.SanitizeFilename(header.Filename)
	fileType, ok := utils.LibraryFileType(name)
	if !ok {
		respondValidation(c, "unsupported_file_type", "unsupported file type", gin.H{"name": name})
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		respondInternalError(c, err, "open upload")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondInternalError(c, err, "read upload")
		return nil, false
	}

	return &uploadedFile{Name: name, Type: fileType, Data: data}, true
}

var errNotTabular = errors.New("file does not hold table data")

// tabularText returns the upload as delimited text. Workbooks are flattened
// with one dataset per sheet.
func (u *uploadedFile) tabularText() (string, error) {
	switch u.Type {
	case entities.LibraryFileCSV, entities.LibraryFileTXT:
		return string(u.Data), nil
	case entities.LibraryFileXLSX:
		set, err := tabular.ReadWorkbook(bytes.NewReader(u.Data))
		if err != nil {
			return "", err
		}
		return tabular.SerializeMulti(set), nil
	}
	return "", fmt.Errorf("%w: %s", errNotTabular, u.Type)
}
