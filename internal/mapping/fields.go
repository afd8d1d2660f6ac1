// Package mapping matches source column headers to a fixed set of target
// fields and tracks the user's edits to that correspondence.
package mapping

type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeDate    FieldType = "date"
	FieldTypeEmail   FieldType = "email"
	FieldTypeBoolean FieldType = "boolean"
)

// TargetField describes one field of an import schema. Metadata fields are
// not part of the core record and end up in its metadata list.
type TargetField struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
	Type     FieldType `json:"type"`
	Metadata bool      `json:"metadata,omitempty"`
}

// Donor import field ids.
const (
	FieldFirstName      = "firstName"
	FieldLastName       = "lastName"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldAddress        = "address"
	FieldCity           = "city"
	FieldState          = "state"
	FieldZipCode        = "zipCode"
	FieldCountry        = "country"
	FieldDonationAmount = "donationAmount"
	FieldDonationDate   = "donationDate"
	FieldNotes          = "notes"
)

// Donation import field ids.
const (
	FieldAmount        = "amount"
	FieldDate          = "date"
	FieldCampaign      = "campaign"
	FieldDonorID       = "donor_id"
	FieldDonorName     = "donor_name"
	FieldDonorEmail    = "donor_email"
	FieldPaymentMethod = "payment_method"
	FieldIsRecurring   = "is_recurring"
	FieldGiftNotes     = "notes"
)

// DonorFields is the target schema of a donor import.
var DonorFields = []TargetField{
	{ID: FieldFirstName, Label: "First Name", Required: true, Type: FieldTypeText},
	{ID: FieldLastName, Label: "Last Name", Required: true, Type: FieldTypeText},
	{ID: FieldEmail, Label: "Email Address", Required: true, Type: FieldTypeEmail},
	{ID: FieldPhone, Label: "Phone Number", Type: FieldTypeText},
	{ID: FieldAddress, Label: "Address", Type: FieldTypeText},
	{ID: FieldCity, Label: "City", Type: FieldTypeText},
	{ID: FieldState, Label: "State/Province", Type: FieldTypeText},
	{ID: FieldZipCode, Label: "Zip/Postal Code", Type: FieldTypeText},
	{ID: FieldCountry, Label: "Country", Type: FieldTypeText},
	{ID: FieldDonationAmount, Label: "Donation Amount", Type: FieldTypeNumber, Metadata: true},
	{ID: FieldDonationDate, Label: "Donation Date", Type: FieldTypeDate, Metadata: true},
	{ID: FieldNotes, Label: "Notes", Type: FieldTypeText},
}

// DonationFields is the target schema of a donation import.
var DonationFields = []TargetField{
	{ID: FieldAmount, Label: "Amount", Required: true, Type: FieldTypeNumber},
	{ID: FieldDate, Label: "Date", Required: true, Type: FieldTypeDate},
	{ID: FieldCampaign, Label: "Campaign", Required: true, Type: FieldTypeText},
	{ID: FieldDonorID, Label: "Donor ID", Required: true, Type: FieldTypeText},
	{ID: FieldDonorName, Label: "Donor Name", Type: FieldTypeText, Metadata: true},
	{ID: FieldDonorEmail, Label: "Donor Email", Type: FieldTypeEmail, Metadata: true},
	{ID: FieldPaymentMethod, Label: "Payment Method", Type: FieldTypeText, Metadata: true},
	{ID: FieldIsRecurring, Label: "Recurring", Type: FieldTypeBoolean, Metadata: true},
	{ID: FieldGiftNotes, Label: "Notes", Type: FieldTypeText, Metadata: true},
}

// FindField returns the field with the given id.
func FindField(fields []TargetField, id string) (TargetField, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return TargetField{}, false
}
