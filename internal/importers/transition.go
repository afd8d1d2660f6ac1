package importers

import (
	"fmt"

	"github.com/givin-app/givin/internal/mapping"
	"github.com/givin-app/givin/internal/tabular"
)

// Transition applies an event and returns the next state. The input state is
// left untouched. An event that is not valid for the current step, or that
// fails, leaves the step unchanged and sets Err; any earlier Err is cleared.
func Transition(s State, ev Event) State {
	next := s
	next.Err = nil

	switch e := ev.(type) {
	case FileLoaded:
		if s.Step != StepUpload {
			return invalid(next, ev)
		}
		set, err := loadDatasets(e.Text)
		if err != nil {
			next.Err = err
			return next
		}
		next.Datasets = set
		next.ActiveDataset = 0
		next.Table = set.Dataset(0)
		next.Mapping = nil
		next.Result = nil
		next.Step = StepPreview

	case SelectDataset:
		if s.Step != StepPreview {
			return invalid(next, ev)
		}
		table := s.Datasets.Dataset(e.Index)
		if table == nil {
			next.Err = fmt.Errorf("%w: %d", ErrDatasetOutOfRange, e.Index)
			return next
		}
		next.ActiveDataset = e.Index
		next.Table = table

	case Back:
		if s.Step != StepPreview {
			return invalid(next, ev)
		}
		next.Step = StepUpload
		next.Datasets = nil
		next.Table = nil
		next.ActiveDataset = 0

	case Continue:
		if s.Step != StepPreview {
			return invalid(next, ev)
		}
		if s.Table == nil {
			next.Err = ErrNoTable
			return next
		}
		next.Mapping = mapping.AutoMap(s.Table.Headers, s.Kind.Fields())
		next.Step = StepMapColumns

	case SetMapping:
		if s.Step != StepMapColumns {
			return invalid(next, ev)
		}
		if _, ok := mapping.FindField(s.Kind.Fields(), e.Field); !ok {
			next.Err = fmt.Errorf("%w: %q", ErrUnknownField, e.Field)
			return next
		}
		if e.Column != "" && !s.Table.HasHeader(e.Column) {
			next.Err = fmt.Errorf("%w: %q", ErrUnknownColumn, e.Column)
			return next
		}
		next.Mapping = s.Mapping.Clone()
		next.Mapping.Set(e.Field, e.Column)

	case ConfirmMapping:
		if s.Step != StepMapColumns {
			return invalid(next, ev)
		}
		if missing := mapping.MissingRequired(s.Mapping, s.Kind.Fields()); len(missing) > 0 {
			ids := make([]string, len(missing))
			for i, f := range missing {
				ids[i] = f.ID
			}
			next.Err = &IncompleteMappingError{Missing: ids}
			return next
		}
		next.Step = StepProcessing

	case ProcessingDone:
		if s.Step != StepProcessing {
			return invalid(next, ev)
		}
		next.Result = e.Result
		next.Step = StepSummary

	case ProcessingFailed:
		if s.Step != StepProcessing {
			return invalid(next, ev)
		}
		next.Err = e.Err
		next.Step = StepMapColumns

	case Retry:
		if s.Step != StepSummary {
			return invalid(next, ev)
		}
		next.Mapping = mapping.AutoMap(s.Table.Headers, s.Kind.Fields())
		next.Result = nil
		next.Step = StepMapColumns

	case Close:
		if s.Step == StepProcessing || s.Step == StepClosed {
			return invalid(next, ev)
		}
		next.Step = StepClosed

	default:
		return invalid(next, ev)
	}

	return next
}

func invalid(s State, ev Event) State {
	name := "unknown"
	if ev != nil {
		name = ev.eventName()
	}
	s.Err = fmt.Errorf("%w: %s during %s", ErrInvalidTransition, name, s.Step)
	return s
}

// loadDatasets parses the upload, splitting it when it holds several tables.
func loadDatasets(text string) (*tabular.MultiTableSet, error) {
	return tabular.ParseDatasets(text)
}
