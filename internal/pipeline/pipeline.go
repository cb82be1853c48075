// Package pipeline sequences merge, enrichment call-out, email prediction,
// and qualification scoring over in-memory record collections.
package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GrayGhostDev/lead-generator/internal/ingest"
	"github.com/GrayGhostDev/lead-generator/internal/merge"
	"github.com/GrayGhostDev/lead-generator/internal/model"
	"github.com/GrayGhostDev/lead-generator/internal/predict"
	"github.com/GrayGhostDev/lead-generator/internal/qualify"
)

// Enricher is the external enrichment-provider boundary. Implementations own
// network I/O, auth, and provider-side rate limiting; the pipeline only
// batches contacts and merges whatever records come back. A batch error means
// "source unavailable" and downgrades to proceeding with existing data.
type Enricher interface {
	EnrichBatch(ctx context.Context, contacts []model.Contact) ([]ingest.Record, error)
}

// Options configures a pipeline run.
type Options struct {
	Policy       merge.Policy
	Criteria     qualify.Criteria
	Priors       []float64
	Threshold    float64 // email prediction acceptance threshold
	BatchSize    int     // enrichment batch size, default 10
	BatchRetries int     // per-batch retries, default 2
	// BatchInterval paces enrichment batches. Zero disables pacing.
	BatchInterval time.Duration
}

// Result is the output of one pipeline run.
type Result struct {
	Leads   []model.MergedLead `json:"leads"`
	Summary model.RunSummary   `json:"summary"`
	Issues  []model.Issue      `json:"issues,omitempty"`
}

// Orchestrator owns the run-scoped dedup state and the collaborator handles.
type Orchestrator struct {
	opts      Options
	engine    *merge.Engine
	predictor *predict.Predictor
	enricher  Enricher // nil disables the enrichment call-out
}

// New creates an orchestrator. enricher may be nil for offline runs.
func New(opts Options, enricher Enricher) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.BatchRetries < 0 {
		opts.BatchRetries = 0
	}
	return &Orchestrator{
		opts:      opts,
		engine:    merge.NewEngine(opts.Policy),
		predictor: predict.New(opts.Priors, opts.Threshold),
		enricher:  enricher,
	}
}

// Run consolidates the collections into a scored lead set. All row-level
// problems are collected into Result.Issues; the only batch-level failure is
// an empty input set.
func (o *Orchestrator) Run(ctx context.Context, collections []merge.Collection) (*Result, error) {
	summary := model.RunSummary{InputBySource: make(map[model.Source]int)}
	for _, col := range collections {
		summary.InputBySource[col.Source] += len(col.Records)
		summary.InputTotal += len(col.Records)
	}
	if summary.InputTotal == 0 {
		return nil, eris.Wrap(&model.EmptyInputError{}, "pipeline: run")
	}

	leads, issues := o.engine.Merge(collections)

	// Duplicates collapsed by the merge itself: grouped records minus emitted
	// leads. Issues recorded after this point (failed enrichment batches) are
	// not input records and must not deflate the count.
	summary.DuplicatesMerged = summary.InputTotal - len(issues) - len(leads)
	if summary.DuplicatesMerged < 0 {
		summary.DuplicatesMerged = 0
	}

	if o.enricher != nil {
		enriched, enrichIssues := o.callEnricher(ctx, leads)
		applyEnrichment(leads, enriched)
		issues = append(issues, enrichIssues...)
	}

	for i := range leads {
		if o.predictor.Apply(&leads[i]) {
			summary.PredictionsApplied++
		}
	}

	// Scores are always recomputed from the final merged record, never
	// carried over from a pre-merge state.
	for i := range leads {
		res := qualify.Score(&leads[i], o.opts.Criteria)
		leads[i].QualificationScore = res.Score
		leads[i].Qualified = res.Qualified
		leads[i].Reasons = res.Reasons
		if res.Qualified {
			summary.LeadsQualified++
		}
	}

	// Reproducible export ordering: descending score, then identity key.
	sort.SliceStable(leads, func(i, j int) bool {
		if leads[i].QualificationScore != leads[j].QualificationScore {
			return leads[i].QualificationScore > leads[j].QualificationScore
		}
		return leads[i].IdentityKey < leads[j].IdentityKey
	})

	summary.LeadsTotal = len(leads)
	summary.Issues = len(issues)

	zap.L().Info("pipeline: run complete",
		zap.Int("input", summary.InputTotal),
		zap.Int("leads", summary.LeadsTotal),
		zap.Int("merged", summary.DuplicatesMerged),
		zap.Int("predicted", summary.PredictionsApplied),
		zap.Int("qualified", summary.LeadsQualified),
		zap.Int("issues", summary.Issues),
	)

	return &Result{Leads: leads, Summary: summary, Issues: issues}, nil
}

// callEnricher batches leads through the enrichment collaborator. Failed
// batches are retried, then downgraded to issues; the run proceeds with the
// data it already has.
func (o *Orchestrator) callEnricher(ctx context.Context, leads []model.MergedLead) ([]ingest.Record, []model.Issue) {
	var limiter *rate.Limiter
	if o.opts.BatchInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(o.opts.BatchInterval), 1)
	}

	contacts := make([]model.Contact, len(leads))
	for i, lead := range leads {
		contacts[i] = lead.Contact
	}

	var enriched []ingest.Record
	var issues []model.Issue
	for start := 0; start < len(contacts); start += o.opts.BatchSize {
		end := start + o.opts.BatchSize
		if end > len(contacts) {
			end = len(contacts)
		}
		batch := contacts[start:end]

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				issues = append(issues, model.Issue{
					Source: model.SourceEnrichment,
					Err:    eris.Wrap(err, "pipeline: enrichment pacing cancelled").Error(),
				})
				return enriched, issues
			}
		}

		records, err := o.enrichWithRetry(ctx, batch)
		if err != nil {
			zap.L().Warn("pipeline: enrichment batch unavailable, proceeding with existing data",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			issues = append(issues, model.Issue{
				Source: model.SourceEnrichment,
				Row:    start + 1,
				Err:    err.Error(),
			})
			continue
		}
		enriched = append(enriched, records...)
	}
	return enriched, issues
}

func (o *Orchestrator) enrichWithRetry(ctx context.Context, batch []model.Contact) ([]ingest.Record, error) {
	var lastErr error
	for attempt := 0; attempt <= o.opts.BatchRetries; attempt++ {
		records, err := o.enricher.EnrichBatch(ctx, batch)
		if err == nil {
			return records, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, eris.Wrap(lastErr, "pipeline: enrich batch")
}

// applyEnrichment folds enrichment records into the leads they describe,
// matched by normalized name and disambiguated by email. The fold happens in
// place rather than through a key regroup: enrichment often supplies the
// company domain, which would change the identity key mid-run.
func applyEnrichment(leads []model.MergedLead, records []ingest.Record) {
	byName := make(map[string][]int)
	byEmail := make(map[string]int)
	for i := range leads {
		key := merge.NameKey(&leads[i].Contact)
		byName[key] = append(byName[key], i)
		if email := strings.ToLower(leads[i].Contact.Email); email != "" {
			byEmail[email] = i
		}
	}

	for _, rec := range records {
		matches := byName[merge.NameKey(&rec.Contact)]
		email := strings.ToLower(rec.Contact.Email)

		if len(matches) == 1 {
			merge.Fold(&leads[matches[0]], rec)
			continue
		}
		if len(matches) > 1 && email != "" {
			folded := false
			for _, i := range matches {
				if strings.ToLower(leads[i].Contact.Email) == email {
					merge.Fold(&leads[i], rec)
					folded = true
					break
				}
			}
			if folded {
				continue
			}
		}
		if i, ok := byEmail[email]; ok && email != "" {
			merge.Fold(&leads[i], rec)
		}
	}
}
