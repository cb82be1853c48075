package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GrayGhostDev/lead-generator/internal/ingest"
	"github.com/GrayGhostDev/lead-generator/internal/merge"
	"github.com/GrayGhostDev/lead-generator/internal/model"
	"github.com/GrayGhostDev/lead-generator/internal/qualify"
)

func parseRec(t *testing.T, source model.Source, fields map[string]string) ingest.Record {
	t.Helper()
	rec, err := ingest.ParseRow(ingest.Row(fields), source, 1)
	require.NoError(t, err)
	return rec
}

func targetCriteria() qualify.Criteria {
	return qualify.Criteria{
		TitleKeywords:    []string{"VP", "Director"},
		TargetIndustries: []string{"Software"},
	}
}

// failingEnricher fails every batch and counts attempts.
type failingEnricher struct {
	calls int
}

func (f *failingEnricher) EnrichBatch(context.Context, []model.Contact) ([]ingest.Record, error) {
	f.calls++
	return nil, eris.New("provider unavailable")
}

func TestRun_EmptyInput(t *testing.T) {
	orch := New(Options{}, nil)

	_, err := orch.Run(context.Background(), nil)
	require.Error(t, err)

	var emptyErr *model.EmptyInputError
	assert.ErrorAs(t, err, &emptyErr)
}

func TestRun_OfflineEndToEnd(t *testing.T) {
	collections := []merge.Collection{
		{Source: model.SourceManual, Label: "manual.csv", Records: []ingest.Record{
			parseRec(t, model.SourceManual, map[string]string{
				"full_name": "Jane Doe", "title": "VP of Engineering",
				"company_name": "Acme Corp", "company_domain": "acme.com", "industry": "Software",
			}),
			parseRec(t, model.SourceManual, map[string]string{
				"full_name": "Sam Rivera", "title": "Accountant", "company_name": "Example LLC",
			}),
		}},
		{Source: model.SourceScraped, Label: "scrape.csv", Records: []ingest.Record{
			parseRec(t, model.SourceScraped, map[string]string{
				"full_name": "Jane Doe", "company_domain": "acme.com", "location": "Austin, TX",
			}),
		}},
	}

	orch := New(Options{Criteria: targetCriteria()}, nil)
	result, err := orch.Run(context.Background(), collections)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Summary.InputTotal)
	assert.Equal(t, 2, result.Summary.InputBySource[model.SourceManual])
	assert.Equal(t, 1, result.Summary.InputBySource[model.SourceScraped])
	assert.Equal(t, 2, result.Summary.LeadsTotal)
	assert.Equal(t, 1, result.Summary.DuplicatesMerged)
	assert.Equal(t, 1, result.Summary.PredictionsApplied)
	assert.Equal(t, 1, result.Summary.LeadsQualified)
	assert.Empty(t, result.Issues)

	// Highest score first.
	top := result.Leads[0]
	assert.Equal(t, "Jane Doe", top.Contact.FullName)
	assert.True(t, top.Qualified)
	assert.Equal(t, "jane.doe@acme.com", top.Contact.Email)
	assert.True(t, top.PredictionUsed)
	assert.Equal(t, model.SourcePredicted, top.Contact.Provenance["email"].Source)
}

func TestRun_StaticEnricherFillsFields(t *testing.T) {
	collections := []merge.Collection{
		{Source: model.SourceManual, Records: []ingest.Record{
			parseRec(t, model.SourceManual, map[string]string{
				"full_name": "Jane Doe", "title": "VP of Engineering", "company_name": "Acme Corp",
			}),
		}},
	}
	enricher := &StaticEnricher{Records: []ingest.Record{
		parseRec(t, model.SourceEnrichment, map[string]string{
			"full_name": "Jane Doe", "company_name": "Acme Corp",
			"company_domain": "acme.com", "industry": "Software", "employees": "250",
		}),
	}}

	orch := New(Options{Criteria: targetCriteria()}, enricher)
	result, err := orch.Run(context.Background(), collections)
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)

	lead := result.Leads[0]
	assert.Equal(t, "acme.com", lead.Contact.CompanyDomain)
	assert.Equal(t, "Software", lead.Company.Industry)
	assert.Equal(t, "VP of Engineering", lead.Contact.Title)
	assert.True(t, lead.Qualified)
}

func TestRun_EnricherFailureDowngradesToIssue(t *testing.T) {
	collections := []merge.Collection{
		{Source: model.SourceManual, Records: []ingest.Record{
			parseRec(t, model.SourceManual, map[string]string{
				"full_name": "Jane Doe", "title": "VP of Engineering",
				"company_name": "Acme Corp", "company_domain": "acme.com", "industry": "Software",
			}),
		}},
	}

	enricher := &failingEnricher{}
	orch := New(Options{Criteria: targetCriteria(), BatchRetries: 2}, enricher)
	result, err := orch.Run(context.Background(), collections)
	require.NoError(t, err)

	assert.Equal(t, 3, enricher.calls) // 1 attempt + 2 retries
	require.Len(t, result.Issues, 1)
	assert.Equal(t, model.SourceEnrichment, result.Issues[0].Source)

	// The run still produced scored leads from the data it had.
	require.Len(t, result.Leads, 1)
	assert.True(t, result.Leads[0].Qualified)
}

func TestRun_EnrichmentBatching(t *testing.T) {
	var records []ingest.Record
	for _, name := range []string{"Jane Doe", "John Smith", "Ada Park"} {
		records = append(records, parseRec(t, model.SourceManual, map[string]string{
			"full_name": name, "company_name": "Acme Corp",
		}))
	}
	collections := []merge.Collection{{Source: model.SourceManual, Records: records}}

	enricher := &failingEnricher{}
	orch := New(Options{BatchSize: 1}, enricher)
	result, err := orch.Run(context.Background(), collections)
	require.NoError(t, err)

	assert.Equal(t, 3, enricher.calls)
	assert.Len(t, result.Issues, 3)
}

func TestRun_DuplicateCountUnaffectedByEnrichmentFailure(t *testing.T) {
	collections := []merge.Collection{{Source: model.SourceManual, Records: []ingest.Record{
		parseRec(t, model.SourceManual, map[string]string{
			"full_name": "Jane Doe", "company_domain": "acme.com", "title": "VP of Engineering",
		}),
		parseRec(t, model.SourceManual, map[string]string{
			"full_name": "Jane Doe", "company_domain": "acme.com", "location": "Austin, TX",
		}),
		parseRec(t, model.SourceManual, map[string]string{
			"full_name": "John Smith", "company_domain": "globex.com",
		}),
	}}}

	orch := New(Options{}, &failingEnricher{})
	result, err := orch.Run(context.Background(), collections)
	require.NoError(t, err)

	require.Len(t, result.Leads, 2)
	require.Len(t, result.Issues, 1)
	// Only merge-collapsed records count as duplicates; the failed enrichment
	// batch is not an input record.
	assert.Equal(t, 1, result.Summary.DuplicatesMerged)
}

func TestRun_ScoresRecomputedAfterMerge(t *testing.T) {
	rec := parseRec(t, model.SourceManual, map[string]string{
		"full_name": "Jane Doe", "title": "VP of Engineering",
		"company_name": "Acme Corp", "company_domain": "acme.com", "industry": "Software",
	})
	rec.Contact.Email = "jane@acme.com"
	collections := []merge.Collection{{Source: model.SourceManual, Records: []ingest.Record{rec}}}

	orch := New(Options{Criteria: targetCriteria()}, nil)
	result, err := orch.Run(context.Background(), collections)
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	assert.Greater(t, result.Leads[0].QualificationScore, 0.0)
	assert.Equal(t, 0, result.Summary.PredictionsApplied)
	assert.False(t, result.Leads[0].PredictionUsed)
}

func TestRun_OrderingDeterministic(t *testing.T) {
	collections := []merge.Collection{{Source: model.SourceManual, Records: []ingest.Record{
		parseRec(t, model.SourceManual, map[string]string{"full_name": "Zed Quine", "company_name": "Zeta"}),
		parseRec(t, model.SourceManual, map[string]string{"full_name": "Amy Ames", "company_name": "Alpha"}),
	}}}

	orch := New(Options{}, nil)
	result, err := orch.Run(context.Background(), collections)
	require.NoError(t, err)
	require.Len(t, result.Leads, 2)
	// Equal scores fall back to identity key order.
	assert.Equal(t, "Amy Ames", result.Leads[0].Contact.FullName)
}

func TestStaticEnricher_AmbiguousNameFallsBackToEmail(t *testing.T) {
	a := parseRec(t, model.SourceEnrichment, map[string]string{
		"full_name": "Jane Doe", "email": "jane@acme.com", "company_domain": "acme.com",
	})
	b := parseRec(t, model.SourceEnrichment, map[string]string{
		"full_name": "Jane Doe", "email": "jane@globex.com", "company_domain": "globex.com",
	})
	enricher := &StaticEnricher{Records: []ingest.Record{a, b}}

	out, err := enricher.EnrichBatch(context.Background(), []model.Contact{{
		FirstName: "Jane", LastName: "Doe", Email: "jane@globex.com",
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "globex.com", out[0].Contact.CompanyDomain)
}

func TestStaticEnricher_NoMatchReturnsNothing(t *testing.T) {
	enricher := &StaticEnricher{Records: []ingest.Record{
		parseRec(t, model.SourceEnrichment, map[string]string{
			"full_name": "Jane Doe", "email": "jane@acme.com",
		}),
	}}

	out, err := enricher.EnrichBatch(context.Background(), []model.Contact{{
		FirstName: "John", LastName: "Smith",
	}})
	require.NoError(t, err)
	assert.Empty(t, out)
}
