package model

import "fmt"

// SchemaError marks an input row that cannot be parsed into a typed record.
// Row-scoped: the caller skips the row, logs, and continues.
type SchemaError struct {
	Row    int
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error at row %d: %s", e.Row, e.Reason)
}

// DuplicateResolutionError marks a record whose identity key cannot be built
// (empty name and empty company). The record is excluded from merge output.
type DuplicateResolutionError struct {
	RawID  string
	Source Source
}

func (e *DuplicateResolutionError) Error() string {
	return fmt.Sprintf("cannot build identity key for record %q from %s", e.RawID, e.Source)
}

// EmptyInputError is the single batch-level hard failure: nothing to process.
// Distinct from a run where some rows were skipped.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "no input records to process"
}

// Issue is a collected row-level problem surfaced to the orchestrator instead
// of aborting the batch.
type Issue struct {
	Source Source            `json:"source"`
	Row    int               `json:"row,omitempty"`
	RawID  string            `json:"raw_id,omitempty"`
	Err    string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
