package importers

import (
	"fmt"

	"github.com/givin-app/givin/internal/mapping"
	"github.com/givin-app/givin/internal/tabular"
)

type Step string

const (
	StepUpload     Step = "upload"
	StepPreview    Step = "preview"
	StepMapColumns Step = "map_columns"
	StepProcessing Step = "processing"
	StepSummary    Step = "summary"
	StepClosed     Step = "closed"
)

// Kind selects the target schema of an import.
type Kind string

const (
	KindDonations Kind = "donations"
	KindDonors    Kind = "donors"
)

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDonations, KindDonors:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Fields returns the target schema for the kind.
func (k Kind) Fields() []mapping.TargetField {
	if k == KindDonors {
		return mapping.DonorFields
	}
	return mapping.DonationFields
}

// State is a snapshot of one import. It is a value: Transition never
// modifies the state it receives.
type State struct {
	Step          Step                   `json:"step"`
	Kind          Kind                   `json:"kind"`
	Datasets      *tabular.MultiTableSet `json:"-"`
	ActiveDataset int                    `json:"active_dataset"`
	Table         *tabular.Table         `json:"-"`
	Mapping       mapping.Mapping        `json:"mapping,omitempty"`
	Result        *ImportResult          `json:"result,omitempty"`
	Err           error                  `json:"-"`
}

// NewState starts an import of the given kind at the upload step.
func NewState(kind Kind) State {
	return State{Step: StepUpload, Kind: kind}
}

// Event is an input to Transition.
type Event interface {
	eventName() string
}

// FileLoaded carries the uploaded text.
type FileLoaded struct{ Text string }

// Back returns from the preview to the upload step.
type Back struct{}

// Continue moves from the preview to the mapping step.
type Continue struct{}

// SelectDataset switches the active table of a multi-dataset upload.
type SelectDataset struct{ Index int }

// SetMapping maps Field to Column; an empty Column clears the field.
type SetMapping struct {
	Field  string
	Column string
}

// ConfirmMapping freezes the mapping and starts processing.
type ConfirmMapping struct{}

// ProcessingDone reports a finished run.
type ProcessingDone struct{ Result *ImportResult }

// ProcessingFailed reports a run that could not produce a result.
type ProcessingFailed struct{ Err error }

// Retry returns from the summary to a freshly seeded mapping step.
type Retry struct{}

// Close disposes of the import.
type Close struct{}

func (FileLoaded) eventName() string       { return "file_loaded" }
func (Back) eventName() string             { return "back" }
func (Continue) eventName() string         { return "continue" }
func (SelectDataset) eventName() string    { return "select_dataset" }
func (SetMapping) eventName() string       { return "set_mapping" }
func (ConfirmMapping) eventName() string   { return "confirm_mapping" }
func (ProcessingDone) eventName() string   { return "processing_done" }
func (ProcessingFailed) eventName() string { return "processing_failed" }
func (Retry) eventName() string            { return "retry" }
func (Close) eventName() string            { return "close" }
