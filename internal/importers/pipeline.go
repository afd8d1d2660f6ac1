package importers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/mapping"
	"github.com/givin-app/givin/internal/tabular"
)

// Store persists validated records. Implementations return the number of
// records written.
type Store interface {
	StoreDonations(ctx context.Context, records []entities.DonationRecord) (int, error)
	StoreDonors(ctx context.Context, records []entities.DonorRecord) (int, error)
}

// MetricsGenerator produces an insight report for a donation batch.
type MetricsGenerator interface {
	GenerateMetrics(ctx context.Context, records []entities.DonationRecord) (*entities.DonationMetrics, error)
}

// Options tune a Pipeline.
type Options struct {
	DatePolicy       DatePolicy
	GeneratorTimeout time.Duration
	Now              func() time.Time
}

// Pipeline runs the processing step of an import:
// convert rows → validate → store valid rows → generate metrics.
type Pipeline struct {
	store     Store
	generator MetricsGenerator
	opts      Options
}

// NewPipeline creates a pipeline. generator may be nil.
func NewPipeline(store Store, generator MetricsGenerator, opts Options) *Pipeline {
	if opts.DatePolicy == "" {
		opts.DatePolicy = DatePolicyReject
	}
	if opts.GeneratorTimeout <= 0 {
		opts.GeneratorTimeout = 60 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{store: store, generator: generator, opts: opts}
}

// Process runs a state sitting at the processing step and returns it moved to
// the summary step, or back to the mapping step if no result could be built.
func (p *Pipeline) Process(ctx context.Context, s State) State {
	if s.Step != StepProcessing {
		s.Err = fmt.Errorf("%w: processing during %s", ErrInvalidTransition, s.Step)
		return s
	}

	result, err := p.Run(ctx, s.Kind, s.Table, s.Mapping)
	if err != nil {
		log.Printf("Import: processing %s failed: %v", s.Kind, err)
		return Transition(s, ProcessingFailed{Err: err})
	}
	return Transition(s, ProcessingDone{Result: result})
}

// Run converts and stores every row of table with the given mapping.
// Store and generator failures are folded into the result; an error is only
// returned when the inputs cannot be processed at all. ctx is checked once
// before anything is stored. After that the result is always returned.
func (p *Pipeline) Run(ctx context.Context, kind Kind, table *tabular.Table, m mapping.Mapping) (*ImportResult, error) {
	if table == nil {
		return nil, ErrNoTable
	}
	if unknown := Unknown(m, table); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: mapping refers to missing columns for %v", ErrUnknownColumn, unknown)
	}
	if missing := mapping.MissingRequired(m, kind.Fields()); len(missing) > 0 {
		ids := make([]string, len(missing))
		for i, f := range missing {
			ids[i] = f.ID
		}
		return nil, &IncompleteMappingError{Missing: ids}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result *ImportResult
	switch kind {
	case KindDonations:
		result = p.runDonations(ctx, table, m)
	case KindDonors:
		result = p.runDonors(ctx, table, m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if err := ctx.Err(); err != nil {
		result.appendInfo(fmt.Sprintf("Import finished after cancellation: %v", err))
	}

	result.CompletedAt = p.opts.Now()
	log.Printf("Import: %s processed %d rows (%d valid, %d errors, %d warnings)",
		kind, result.TotalRows, result.SuccessCount, result.ErrorCount, result.WarningCount)
	return result, nil
}

func (p *Pipeline) runDonations(ctx context.Context, table *tabular.Table, m mapping.Mapping) *ImportResult {
	result := newResult(KindDonations, len(table.Rows))
	conv := donationConverter{mapping: m, policy: p.opts.DatePolicy, now: p.opts.Now()}

	valid := make([]entities.DonationRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		if record, ok := conv.convert(i+1, row, result); ok {
			valid = append(valid, record)
		}
	}
	result.SuccessCount = len(valid)

	if len(valid) == 0 {
		result.appendInfo("No valid donations to store")
		return result
	}

	if stored, err := p.store.StoreDonations(ctx, valid); err != nil {
		p.recordStoreFailure(result, err)
	} else {
		result.appendInfo(fmt.Sprintf("Successfully stored %d donations", stored))
	}

	if p.generator != nil {
		genCtx, cancel := context.WithTimeout(ctx, p.opts.GeneratorTimeout)
		defer cancel()

		metrics, err := p.generator.GenerateMetrics(genCtx, valid)
		if err != nil {
			genErr := &MetricsGenerationError{Err: err}
			log.Printf("Import: %v", genErr)
			result.appendInfo(genErr.Error())
			result.collaboratorFailed = true
		} else {
			result.Insights = metrics
		}
	}

	return result
}

func (p *Pipeline) runDonors(ctx context.Context, table *tabular.Table, m mapping.Mapping) *ImportResult {
	result := newResult(KindDonors, len(table.Rows))
	conv := donorConverter{mapping: m}

	valid := make([]entities.DonorRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		if record, ok := conv.convert(i+1, row, result); ok {
			valid = append(valid, record)
		}
	}
	result.SuccessCount = len(valid)

	if len(valid) == 0 {
		result.appendInfo("No valid donors to store")
		return result
	}

	stored, err := p.store.StoreDonors(ctx, valid)
	if err != nil {
		p.recordStoreFailure(result, err)
		return result
	}
	result.appendInfo(fmt.Sprintf("Successfully stored %d donors", stored))
	return result
}

func (p *Pipeline) recordStoreFailure(result *ImportResult, err error) {
	storeErr := &PersistenceError{Err: err}
	log.Printf("Import: %v", storeErr)
	result.appendInfo(storeErr.Error())
	result.collaboratorFailed = true
}

// Unknown lists mapped fields whose column is missing from table.
func Unknown(m mapping.Mapping, table *tabular.Table) []string {
	return mapping.Unknown(m, table.Headers)
}

// ImportText runs a whole import without interaction: the text is parsed,
// the dataset at datasetIndex is selected, the auto-mapping is adjusted with
// overrides and the rows are processed. The returned state is at the summary
// step unless an earlier step failed, in which case Err is set.
func (p *Pipeline) ImportText(ctx context.Context, kind Kind, text string, datasetIndex int, overrides mapping.Mapping) State {
	s := Transition(NewState(kind), FileLoaded{Text: text})
	if s.Err != nil {
		return s
	}
	if datasetIndex != 0 {
		if s = Transition(s, SelectDataset{Index: datasetIndex}); s.Err != nil {
			return s
		}
	}
	s = Transition(s, Continue{})
	for field, column := range overrides {
		if s = Transition(s, SetMapping{Field: field, Column: column}); s.Err != nil {
			return s
		}
	}
	if s = Transition(s, ConfirmMapping{}); s.Err != nil {
		return s
	}
	return p.Process(ctx, s)
}
