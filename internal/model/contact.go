package model

// Source identifies where a record was observed.
type Source string

const (
	SourceManual     Source = "manual"
	SourceEnrichment Source = "enrichment"
	SourceScraped    Source = "scraped"

	// SourcePredicted marks synthesized values (guessed emails only). It is a
	// provenance marker, never an input source, and always loses to any
	// observed source during merge.
	SourcePredicted Source = "predicted"
)

// sourceRank orders sources for conflict resolution. Lower rank wins.
var sourceRank = map[Source]int{
	SourceManual:     0,
	SourceEnrichment: 1,
	SourceScraped:    2,
	SourcePredicted:  3,
}

// Rank returns the priority rank of the source. Unknown sources rank last.
func (s Source) Rank() int {
	if r, ok := sourceRank[s]; ok {
		return r
	}
	return len(sourceRank)
}

// Observed reports whether values from this source were directly observed
// rather than synthesized.
func (s Source) Observed() bool {
	return s != SourcePredicted && s != ""
}

// ParseSource maps a source label to a Source. Unrecognized labels default
// to manual, matching how untagged CSV input is treated.
func ParseSource(label string) Source {
	switch label {
	case "manual", "csv", "":
		return SourceManual
	case "enrichment", "enriched", "zoominfo", "rocketreach":
		return SourceEnrichment
	case "scraped", "scrape", "web":
		return SourceScraped
	default:
		return SourceManual
	}
}

// FieldProvenance records where a single field value came from and how
// certain it is. Confidence is a scalar in [0,1].
type FieldProvenance struct {
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// Contact is the canonical representation of a person record.
type Contact struct {
	FullName      string `json:"full_name"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Title         string `json:"title,omitempty"`
	Department    string `json:"department,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	CompanyDomain string `json:"company_domain,omitempty"`
	Location      string `json:"location,omitempty"`
	Source        Source `json:"source"`
	RawID         string `json:"raw_id,omitempty"`

	// Provenance tracks per-field source and confidence, keyed by field key
	// (full_name, title, email, ...).
	Provenance map[string]FieldProvenance `json:"provenance,omitempty"`

	// Extra holds unrecognized input columns so no source data is silently
	// dropped.
	Extra map[string]string `json:"extra,omitempty"`
}

// Company is the canonical representation of a company record.
type Company struct {
	Name          string `json:"name"`
	Domain        string `json:"domain,omitempty"`
	Industry      string `json:"industry,omitempty"`
	EmployeeCount int    `json:"employee_count,omitempty"`
	// SizeRaw keeps the original size string ("200-500", "1,000+") when it
	// could not be reduced to a single count.
	SizeRaw  string `json:"size_raw,omitempty"`
	Location string `json:"location,omitempty"`
	Source   Source `json:"source"`
}

// MergedLead is a deduplicated Contact joined with its Company, annotated by
// the predictor and the scorer.
type MergedLead struct {
	Contact Contact `json:"contact"`
	Company Company `json:"company"`

	IdentityKey        string   `json:"identity_key"`
	QualificationScore float64  `json:"qualification_score"`
	Qualified          bool     `json:"qualified"`
	Reasons            []string `json:"reasons,omitempty"`
	PredictionUsed     bool     `json:"prediction_used"`
	MergedFrom         int      `json:"merged_from"`
}

// FieldConfidence returns the recorded confidence for a contact field key,
// or 0 when the field has no provenance entry.
func (c *Contact) FieldConfidence(key string) float64 {
	if c.Provenance == nil {
		return 0
	}
	return c.Provenance[key].Confidence
}

// SetField records provenance for a field key. Existing entries are only
// replaced by entries with confidence >= the current value, so confidence is
// monotonically non-decreasing across merges.
func (c *Contact) SetField(key string, p FieldProvenance) {
	if c.Provenance == nil {
		c.Provenance = make(map[string]FieldProvenance)
	}
	if cur, ok := c.Provenance[key]; ok && cur.Confidence > p.Confidence {
		p.Confidence = cur.Confidence
	}
	c.Provenance[key] = p
}

// AggregateConfidence returns the mean confidence across all fields with
// provenance, or 0 when none is recorded.
func (c *Contact) AggregateConfidence() float64 {
	if len(c.Provenance) == 0 {
		return 0
	}
	var sum float64
	for _, p := range c.Provenance {
		sum += p.Confidence
	}
	return sum / float64(len(c.Provenance))
}
