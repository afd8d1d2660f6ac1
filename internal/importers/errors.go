package importers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnknownField      = errors.New("unknown target field")
	ErrUnknownColumn     = errors.New("unknown source column")
	ErrDatasetOutOfRange = errors.New("dataset index out of range")
	ErrUnknownKind       = errors.New("unknown import kind")
	ErrNoTable           = errors.New("no table loaded")
)

// IncompleteMappingError blocks leaving the mapping step while required
// fields are unmapped.
type IncompleteMappingError struct {
	Missing []string
}

func (e *IncompleteMappingError) Error() string {
	return fmt.Sprintf("required fields not mapped: %s", strings.Join(e.Missing, ", "))
}

// PersistenceError wraps a failure reported by the Store.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("Error storing in database: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// MetricsGenerationError wraps a failure reported by the MetricsGenerator.
type MetricsGenerationError struct {
	Err error
}

func (e *MetricsGenerationError) Error() string {
	return fmt.Sprintf("Error generating donation metrics: %v", e.Err)
}

func (e *MetricsGenerationError) Unwrap() error {
	return e.Err
}
