package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

func TestFormatReport(t *testing.T) {
	result := &Result{
		Leads: []model.MergedLead{
			{
				Contact:            model.Contact{FullName: "Jane Doe", Title: "VP of Engineering", Email: "jane.doe@acme.com"},
				Company:            model.Company{Name: "Acme Corp"},
				QualificationScore: 0.97,
				Qualified:          true,
				PredictionUsed:     true,
			},
			{
				Contact:            model.Contact{FullName: "Sam Rivera"},
				QualificationScore: 0.21,
			},
		},
		Summary: model.RunSummary{
			InputBySource:      map[model.Source]int{model.SourceManual: 2, model.SourceScraped: 1},
			InputTotal:         3,
			DuplicatesMerged:   1,
			PredictionsApplied: 1,
			LeadsQualified:     1,
			LeadsTotal:         2,
			Issues:             1,
		},
		Issues: []model.Issue{
			{Source: model.SourceManual, Row: 4, Err: "schema error at row 4: missing contact name"},
		},
	}

	report := FormatReport(result)
	assert.Contains(t, report, "Input records: 3")
	assert.Contains(t, report, "manual: 2")
	assert.Contains(t, report, "Jane Doe")
	assert.Contains(t, report, "(predicted)")
	assert.Contains(t, report, "Leads qualified: 1 of 2")
	assert.Contains(t, report, "missing contact name")
	assert.NotContains(t, report, "Sam Rivera")
}

func TestFormatReport_NoQualifiedLeads(t *testing.T) {
	report := FormatReport(&Result{Summary: model.RunSummary{}})
	assert.Contains(t, report, "None.")
}
