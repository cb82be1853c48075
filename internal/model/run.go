package model

import "time"

// RunStatus represents the current state of a consolidation run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunSummary aggregates counts for a single consolidation run, consumed by
// the reporting collaborator.
type RunSummary struct {
	InputBySource      map[Source]int `json:"input_by_source"`
	InputTotal         int            `json:"input_total"`
	DuplicatesMerged   int            `json:"duplicates_merged"`
	PredictionsApplied int            `json:"predictions_applied"`
	LeadsQualified     int            `json:"leads_qualified"`
	LeadsTotal         int            `json:"leads_total"`
	Issues             int            `json:"issues"`
}

// Run records one consolidation run for auditability.
type Run struct {
	ID        string      `json:"id"`
	Status    RunStatus   `json:"status"`
	Inputs    []string    `json:"inputs,omitempty"`
	Summary   *RunSummary `json:"summary,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
