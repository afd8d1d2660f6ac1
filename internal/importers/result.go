package importers

import (
	"time"

	"github.com/givin-app/givin/internal/entities"
)

// RowIssue is one validation message for a 1-based data row.
type RowIssue struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult reports the outcome of one processing run. A row may produce
// several issues, so SuccessCount+ErrorCount need not equal TotalRows.
type ImportResult struct {
	Kind           Kind                      `json:"kind"`
	TotalRows      int                       `json:"total_rows"`
	SuccessCount   int                       `json:"success_count"`
	ErrorCount     int                       `json:"error_count"`
	WarningCount   int                       `json:"warning_count"`
	Errors         []RowIssue                `json:"errors"`
	Warnings       []RowIssue                `json:"warnings"`
	AdditionalInfo string                    `json:"additional_info"`
	Insights       *entities.DonationMetrics `json:"insights,omitempty"`
	CompletedAt    time.Time                 `json:"completed_at"`

	collaboratorFailed bool
}

func newResult(kind Kind, totalRows int) *ImportResult {
	return &ImportResult{
		Kind:      kind,
		TotalRows: totalRows,
		Errors:    []RowIssue{},
		Warnings:  []RowIssue{},
	}
}

func (r *ImportResult) addError(row int, msg string) {
	r.Errors = append(r.Errors, RowIssue{Row: row, Message: msg})
	r.ErrorCount = len(r.Errors)
}

func (r *ImportResult) addWarning(row int, msg string) {
	r.Warnings = append(r.Warnings, RowIssue{Row: row, Message: msg})
	r.WarningCount = len(r.Warnings)
}

// appendInfo adds a sentence to AdditionalInfo.
func (r *ImportResult) appendInfo(msg string) {
	if r.AdditionalInfo == "" {
		r.AdditionalInfo = msg
		return
	}
	r.AdditionalInfo += "; " + msg
}

// Status summarises the run for audit records.
func (r *ImportResult) Status() entities.AuditStatus {
	switch {
	case r.SuccessCount == 0 && r.TotalRows > 0:
		return entities.AuditStatusFailed
	case r.ErrorCount > 0 || r.collaboratorFailed:
		return entities.AuditStatusPartial
	default:
		return entities.AuditStatusSuccess
	}
}
