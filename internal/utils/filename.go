package utils

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/givin-app/givin/internal/entities"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceChars      = regexp.MustCompile(`[\r\n\t]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

// HighlightedPrefix is prepended to filtered library downloads.
const HighlightedPrefix = "highlighted_"

// SanitizeFilename makes an uploaded file name safe to store and to send back
// in a Content-Disposition header.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// Leave room for the download prefix
	if len(filename) > 200 {
		ext := filepath.Ext(filename)
		if len(ext) > 10 {
			ext = ""
		}
		filename = strings.TrimSpace(filename[:200-len(ext)]) + ext
	}

	if filename == "" || strings.Trim(filename, ".") == "" {
		filename = "Untitled"
	}

	return filename
}

// KnownLibraryExtensions maps accepted upload extensions to file types
var KnownLibraryExtensions = map[string]entities.LibraryFileType{
	".csv":  entities.LibraryFileCSV,
	".xlsx": entities.LibraryFileXLSX,
	".xls":  entities.LibraryFileXLS,
	".pdf":  entities.LibraryFilePDF,
	".docx": entities.LibraryFileDOCX,
	".txt":  entities.LibraryFileTXT,
}

// LibraryFileType returns the type for a file name by its extension,
// case-insensitive.
func LibraryFileType(filename string) (entities.LibraryFileType, bool) {
	t, ok := KnownLibraryExtensions[strings.ToLower(filepath.Ext(filename))]
	return t, ok
}

// HighlightedFilename names the filtered download of a library file. The
// result always has a .csv extension since the filtered content is CSV.
func HighlightedFilename(filename string) string {
	name := SanitizeFilename(filename)
	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, ".csv") {
		name = strings.TrimSuffix(name, ext) + ".csv"
	}
	return HighlightedPrefix + name
}
