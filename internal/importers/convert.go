package importers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/mapping"
	"github.com/givin-app/givin/internal/tabular"
)

// DatePolicy decides what happens to a donation row whose date cannot be read.
type DatePolicy string

const (
	// DatePolicyReject records an error and skips the row.
	DatePolicyReject DatePolicy = "reject"
	// DatePolicySubstitute records a warning and uses the import time.
	DatePolicySubstitute DatePolicy = "substitute"
)

// ParseDatePolicy converts configuration input into a DatePolicy.
func ParseDatePolicy(s string) (DatePolicy, error) {
	switch DatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case DatePolicyReject, "":
		return DatePolicyReject, nil
	case DatePolicySubstitute:
		return DatePolicySubstitute, nil
	}
	return "", fmt.Errorf("unknown date policy %q", s)
}

const (
	unknownCampaign = "Unknown"
	unknownDonor    = "unknown"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
}

// ParseDate reads a calendar date in one of the common spreadsheet layouts.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

var amountCleaner = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")

// ParseAmount reads a money amount, ignoring currency symbols and thousands
// separators.
func ParseAmount(raw string) (decimal.Decimal, error) {
	value := amountCleaner.Replace(strings.TrimSpace(raw))
	if value == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(value)
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// rowReader reads mapped cells from one row.
type rowReader struct {
	row     tabular.Row
	mapping mapping.Mapping
}

func (r rowReader) cell(field string) string {
	col, ok := r.mapping.Column(field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(r.row[col])
}

// metadata collects mapped fields flagged as metadata, in schema order.
func (r rowReader) metadata(fields []mapping.TargetField) entities.Metadata {
	var md entities.Metadata
	for _, f := range fields {
		if !f.Metadata {
			continue
		}
		col, ok := r.mapping.Column(f.ID)
		if !ok {
			continue
		}
		md = md.Set(f.ID, strings.TrimSpace(r.row[col]))
	}
	return md
}

type donationConverter struct {
	mapping mapping.Mapping
	policy  DatePolicy
	now     time.Time
}

// convert builds a record for data row rowNum and reports its issues.
// ok is false when the row has at least one error.
func (c donationConverter) convert(rowNum int, row tabular.Row, res *ImportResult) (entities.DonationRecord, bool) {
	r := rowReader{row: row, mapping: c.mapping}
	ok := true

	record := entities.DonationRecord{
		Campaign: r.cell(mapping.FieldCampaign),
		DonorID:  r.cell(mapping.FieldDonorID),
		Metadata: r.metadata(mapping.DonationFields),
	}

	rawAmount := r.cell(mapping.FieldAmount)
	amount, err := ParseAmount(rawAmount)
	if err != nil || !amount.IsPositive() {
		res.addError(rowNum, fmt.Sprintf("Invalid donation amount: %s", rawAmount))
		ok = false
	} else {
		record.Amount = amount
	}

	rawDate := r.cell(mapping.FieldDate)
	date, err := ParseDate(rawDate)
	switch {
	case err == nil:
		record.Date = date
	case c.policy == DatePolicySubstitute:
		record.Date = c.now
		res.addWarning(rowNum, fmt.Sprintf("Invalid date format: %s, using import time", rawDate))
	default:
		res.addError(rowNum, fmt.Sprintf("Invalid date format: %s", rawDate))
		ok = false
	}

	if record.Campaign == "" {
		record.Campaign = unknownCampaign
		res.addWarning(rowNum, "Missing campaign information")
	}

	if record.DonorID == "" {
		record.DonorID = unknownDonor
		res.addWarning(rowNum, "Missing donor ID")
	}

	return record, ok
}

type donorConverter struct {
	mapping mapping.Mapping
}

func (c donorConverter) convert(rowNum int, row tabular.Row, res *ImportResult) (entities.DonorRecord, bool) {
	r := rowReader{row: row, mapping: c.mapping}
	ok := true

	record := entities.DonorRecord{
		FirstName: r.cell(mapping.FieldFirstName),
		LastName:  r.cell(mapping.FieldLastName),
		Email:     strings.ToLower(r.cell(mapping.FieldEmail)),
		Phone:     r.cell(mapping.FieldPhone),
		Address:   r.cell(mapping.FieldAddress),
		City:      r.cell(mapping.FieldCity),
		State:     r.cell(mapping.FieldState),
		ZipCode:   r.cell(mapping.FieldZipCode),
		Country:   r.cell(mapping.FieldCountry),
		Notes:     r.cell(mapping.FieldNotes),
		Metadata:  r.metadata(mapping.DonorFields),
	}

	if record.FirstName == "" {
		res.addError(rowNum, "Missing first name")
		ok = false
	}
	if record.LastName == "" {
		res.addError(rowNum, "Missing last name")
		ok = false
	}
	if !ValidEmail(record.Email) {
		res.addError(rowNum, fmt.Sprintf("Invalid email address: %s", record.Email))
		ok = false
	}

	if raw, mapped := record.Metadata.Get(mapping.FieldDonationAmount); mapped && raw != "" {
		if amount, err := ParseAmount(raw); err != nil || !amount.IsPositive() {
			res.addWarning(rowNum, fmt.Sprintf("Ignoring invalid donation amount: %s", raw))
		}
	}

	return record, ok
}
