package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/givin-app/givin/internal/importers"
)

// Auditor writes raw audit payloads, such as finished import results, as
// UUID-named JSON files.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveJSON saves data to <AuditDir>/<uuid4>.json and returns the file name.
func (a *Auditor) SaveJSON(data any) (string, error) {
	if err := os.MkdirAll(a.AuditDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audit directory: %w", err)
	}

	filename := uuid.NewString() + ".json"
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Printf("Audit: saved %s", path)
	return filename, nil
}

// importRecord is the on-disk shape of an import audit file.
type importRecord struct {
	Source string                  `json:"source"`
	Actor  string                  `json:"actor"`
	Result *importers.ImportResult `json:"result"`
}

// SaveImport writes a finished import result along with who ran it and from
// where ("upload", "cli").
func (a *Auditor) SaveImport(source, actor string, result *importers.ImportResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no import result to audit")
	}
	return a.SaveJSON(importRecord{Source: source, Actor: actor, Result: result})
}
