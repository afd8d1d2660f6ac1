// Package importers drives a donation or donor import from raw text to a
// stored batch and a result report.
//
// # Architecture
//
// An import is a small state machine:
//
//	upload → preview → map_columns → processing → summary → closed
//	            ↑  |        ↑  |           |          |
//	            └──┘ (back) |  └───────────┘ (failed) |
//	                        └─────────────────────────┘ (retry)
//
// State is a plain value and Transition is a pure function, so every step can
// be driven from an HTTP session, a CLI command or a test without side
// effects. The only effectful step is Pipeline.Process, which converts rows
// with the frozen mapping, validates them, stores the valid ones through the
// Store and, for donation imports, asks the MetricsGenerator for an insight
// report.
//
// # Example Usage
//
//	state := importers.NewState(importers.KindDonations)
//	state = importers.Transition(state, importers.FileLoaded{Text: csvText})
//	state = importers.Transition(state, importers.Continue{})
//	state = importers.Transition(state, importers.SetMapping{Field: "campaign", Column: "Fund"})
//	state = importers.Transition(state, importers.ConfirmMapping{})
//	state = pipeline.Process(ctx, state)
//	fmt.Println(state.Result.AdditionalInfo)
//
// Store and generator failures never abort an import: they are reported in
// ImportResult.AdditionalInfo and the machine still reaches the summary step.
package importers
