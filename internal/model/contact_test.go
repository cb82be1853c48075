package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_Rank(t *testing.T) {
	assert.Less(t, SourceManual.Rank(), SourceEnrichment.Rank())
	assert.Less(t, SourceEnrichment.Rank(), SourceScraped.Rank())
	assert.Less(t, SourceScraped.Rank(), SourcePredicted.Rank())
	assert.Equal(t, len(sourceRank), Source("bogus").Rank())
}

func TestSource_Observed(t *testing.T) {
	assert.True(t, SourceManual.Observed())
	assert.True(t, SourceScraped.Observed())
	assert.False(t, SourcePredicted.Observed())
	assert.False(t, Source("").Observed())
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		label string
		want  Source
	}{
		{"manual", SourceManual},
		{"csv", SourceManual},
		{"", SourceManual},
		{"zoominfo", SourceEnrichment},
		{"enriched", SourceEnrichment},
		{"scraped", SourceScraped},
		{"web", SourceScraped},
		{"something-else", SourceManual},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSource(tt.label), tt.label)
	}
}

func TestSetField_ConfidenceNeverDecreases(t *testing.T) {
	var c Contact
	c.SetField("title", FieldProvenance{Source: SourceManual, Confidence: 0.9})
	c.SetField("title", FieldProvenance{Source: SourceScraped, Confidence: 0.6})

	prov := c.Provenance["title"]
	assert.Equal(t, SourceScraped, prov.Source)
	assert.InDelta(t, 0.9, prov.Confidence, 0.001)

	c.SetField("title", FieldProvenance{Source: SourceEnrichment, Confidence: 0.95})
	assert.InDelta(t, 0.95, c.Provenance["title"].Confidence, 0.001)
}

func TestAggregateConfidence(t *testing.T) {
	var c Contact
	assert.Zero(t, c.AggregateConfidence())

	c.SetField("full_name", FieldProvenance{Source: SourceManual, Confidence: 0.9})
	c.SetField("email", FieldProvenance{Source: SourcePredicted, Confidence: 0.4})
	assert.InDelta(t, 0.65, c.AggregateConfidence(), 0.001)
}

func TestFieldConfidence_MissingKey(t *testing.T) {
	var c Contact
	assert.Zero(t, c.FieldConfidence("email"))
}
