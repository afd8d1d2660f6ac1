package services

import (
	"log"

	"github.com/givin-app/givin/internal/importers"
)

// ImportService records finished imports: the raw result goes to the audit
// directory, a summary to the audit trail and donation insights become the
// latest report.
type ImportService struct {
	auditor ImportAuditor
	logger  ImportLogger
	reports ReportStore
}

// NewImportService creates the service. Any collaborator may be nil.
func NewImportService(auditor ImportAuditor, logger ImportLogger, reports ReportStore) *ImportService {
	return &ImportService{
		auditor: auditor,
		logger:  logger,
		reports: reports,
	}
}

// Record handles a result that reached the summary step. It returns the audit
// file name, empty if none was written. Failures here never fail the import.
func (s *ImportService) Record(userID uint, actor, source string, result *importers.ImportResult) string {
	if result == nil {
		return ""
	}

	var auditFile string
	if s.auditor != nil {
		name, err := s.auditor.SaveImport(source, actor, result)
		if err != nil {
			log.Printf("Import: failed to write audit file: %v", err)
		} else {
			auditFile = name
		}
	}

	if s.logger != nil {
		s.logger.LogImport(userID, result, auditFile)
	}

	if s.reports != nil && result.Insights != nil {
		if err := s.reports.SetInsightsReport(result.Insights); err != nil {
			log.Printf("Import: failed to store insights report: %v", err)
		}
	}

	return auditFile
}
