// Package store persists consolidation runs, webhook-ingested contacts, and
// qualified output leads.
package store

import (
	"context"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the consolidation pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, inputs []string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, summary *model.RunSummary, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Webhook-ingested contacts, replayed as a collection on later runs.
	SaveContact(ctx context.Context, contact model.Contact) error
	ListContacts(ctx context.Context, limit int) ([]model.Contact, error)

	// Qualified output leads.
	SaveLeads(ctx context.Context, runID string, leads []model.MergedLead) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
