package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

func TestParseRow_CanonicalHeaders(t *testing.T) {
	row := Row{
		"full_name":      "Jane Doe",
		"title":          "VP of Engineering",
		"email":          "Jane.Doe@Acme.com",
		"company_name":   "Acme Corp",
		"company_domain": "acme.com",
		"location":       "Austin, TX",
	}

	rec, err := ParseRow(row, model.SourceManual, 1)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", rec.Contact.FullName)
	assert.Equal(t, "Jane", rec.Contact.FirstName)
	assert.Equal(t, "Doe", rec.Contact.LastName)
	assert.Equal(t, "jane.doe@acme.com", rec.Contact.Email)
	assert.Equal(t, "acme.com", rec.Contact.CompanyDomain)
	assert.Equal(t, model.SourceManual, rec.Contact.Source)
}

func TestParseRow_HeaderAliases(t *testing.T) {
	row := Row{
		"name":      "John Smith",
		"job title": "Director of Sales",
		"company":   "Globex",
		"website":   "https://www.globex.com/about",
		"employees": "1,200",
	}

	rec, err := ParseRow(row, model.SourceScraped, 3)
	require.NoError(t, err)

	assert.Equal(t, "John Smith", rec.Contact.FullName)
	assert.Equal(t, "Director of Sales", rec.Contact.Title)
	assert.Equal(t, "globex.com", rec.Contact.CompanyDomain)
	assert.Equal(t, 1200, rec.Company.EmployeeCount)
}

func TestParseRow_MissingName(t *testing.T) {
	row := Row{"email": "someone@acme.com", "company_name": "Acme"}

	_, err := ParseRow(row, model.SourceManual, 7)
	require.Error(t, err)

	var schemaErr *model.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 7, schemaErr.Row)
	assert.Contains(t, schemaErr.Error(), "name")
}

func TestParseRow_MissingEmailAndCompany(t *testing.T) {
	row := Row{"full_name": "Jane Doe", "title": "VP"}

	_, err := ParseRow(row, model.SourceManual, 2)
	var schemaErr *model.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 2, schemaErr.Row)
}

func TestParseRow_InvalidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{"no at sign", "janedoe.acme.com"},
		{"no dotted domain", "jane@acme"},
		{"display name form", "Jane <jane@acme.com>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Row{"full_name": "Jane Doe", "email": tt.email, "company_name": "Acme"}
			_, err := ParseRow(row, model.SourceManual, 1)
			var schemaErr *model.SchemaError
			require.ErrorAs(t, err, &schemaErr)
		})
	}
}

func TestParseRow_DomainFromCorporateEmail(t *testing.T) {
	row := Row{"full_name": "Jane Doe", "email": "jane@acme.com"}

	rec, err := ParseRow(row, model.SourceEnrichment, 1)
	require.NoError(t, err)
	assert.Equal(t, "acme.com", rec.Contact.CompanyDomain)
}

func TestParseRow_FreemailNeverBecomesDomain(t *testing.T) {
	row := Row{"full_name": "Jane Doe", "email": "jane.doe@gmail.com", "company_name": "Acme"}

	rec, err := ParseRow(row, model.SourceManual, 1)
	require.NoError(t, err)
	assert.Empty(t, rec.Contact.CompanyDomain)
}

func TestParseRow_ProvenanceConfidenceBySource(t *testing.T) {
	row := Row{"full_name": "Jane Doe", "email": "jane@acme.com"}

	rec, err := ParseRow(row, model.SourceScraped, 1)
	require.NoError(t, err)

	prov, ok := rec.Contact.Provenance["email"]
	require.True(t, ok)
	assert.Equal(t, model.SourceScraped, prov.Source)
	assert.InDelta(t, 0.60, prov.Confidence, 0.001)
}

func TestParseRow_UnknownColumnsRetained(t *testing.T) {
	row := Row{
		"full_name":     "Jane Doe",
		"company_name":  "Acme",
		"linkedin_url":  "https://linkedin.com/in/janedoe",
		"lead_campaign": "q3-webinar",
	}

	rec, err := ParseRow(row, model.SourceManual, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://linkedin.com/in/janedoe", rec.Contact.Extra["linkedin_url"])
	assert.Equal(t, "q3-webinar", rec.Contact.Extra["lead_campaign"])
}

func TestParseRows_CollectsIssuesWithoutAborting(t *testing.T) {
	rows := []Row{
		{"full_name": "Jane Doe", "company_name": "Acme"},
		{"email": "no-name@acme.com"},
		{"full_name": "John Smith", "email": "john@globex.com"},
	}

	records, issues := ParseRows(rows, model.SourceManual)
	assert.Len(t, records, 2)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Row)
	assert.Equal(t, model.SourceManual, issues[0].Source)
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		full  string
		first string
		last  string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Jane", "Jane", ""},
		{"Mary Jane van Dyke", "Mary", "Jane van Dyke"},
		{"", "", ""},
	}

	for _, tt := range tests {
		first, last := splitFullName(tt.full)
		assert.Equal(t, tt.first, first, tt.full)
		assert.Equal(t, tt.last, last, tt.full)
	}
}

func TestParseEmployeeCount(t *testing.T) {
	tests := []struct {
		in    string
		count int
		raw   string
	}{
		{"250", 250, "250"},
		{"200-500", 200, "200-500"},
		{"1,000+", 1000, "1,000+"},
		{"unknown", 0, "unknown"},
		{"", 0, ""},
	}

	for _, tt := range tests {
		count, raw := parseEmployeeCount(tt.in)
		assert.Equal(t, tt.count, count, tt.in)
		assert.Equal(t, tt.raw, raw, tt.in)
	}
}

func TestDomainFromURL(t *testing.T) {
	assert.Equal(t, "acme.com", domainFromURL("https://www.acme.com/team"))
	assert.Equal(t, "acme.io", domainFromURL("acme.io"))
	assert.Equal(t, "", domainFromURL(""))
}
