// Package qualify scores merged leads against configurable targeting
// criteria. Scoring is a pure function: identical inputs always yield
// identical outputs.
package qualify

import (
	"fmt"
	"strings"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// Weights are the score component weights. They are normalized at scoring
// time, so they need not sum to exactly 1.0.
type Weights struct {
	Title        float64 `yaml:"title"`
	Industry     float64 `yaml:"industry"`
	Completeness float64 `yaml:"completeness"`
	Confidence   float64 `yaml:"confidence"`
}

// DefaultWeights weight title match 0.4, industry match 0.3, field
// completeness 0.2, and aggregate confidence 0.1.
var DefaultWeights = Weights{Title: 0.4, Industry: 0.3, Completeness: 0.2, Confidence: 0.1}

// DefaultQualifyThreshold is the minimum score for a lead to qualify.
const DefaultQualifyThreshold = 0.5

// Criteria is the caller-supplied qualification configuration.
type Criteria struct {
	// TitleKeywords match case-insensitively as substrings of the contact
	// title. DepartmentKeywords extend the same component to the department
	// field.
	TitleKeywords      []string `yaml:"title_keywords"`
	DepartmentKeywords []string `yaml:"department_keywords"`

	// TargetIndustries match the company industry case-insensitively, exact.
	TargetIndustries []string `yaml:"target_industries"`

	// TargetLocations gate qualification by substring match on the company
	// location. Empty means no location gate.
	TargetLocations []string `yaml:"target_locations"`

	// MinEmployees/MaxEmployees gate qualification by company size when the
	// lead carries a usable employee count. Zero max means unbounded.
	MinEmployees int `yaml:"min_employees"`
	MaxEmployees int `yaml:"max_employees"`

	MinConfidence float64 `yaml:"min_confidence"`
	RequireEmail  bool    `yaml:"require_email"`

	Weights          Weights `yaml:"weights"`
	QualifyThreshold float64 `yaml:"qualify_threshold"`
}

// Breakdown holds the individual component scores and the weighted final.
type Breakdown struct {
	Title        float64 `json:"title"`
	Industry     float64 `json:"industry"`
	Completeness float64 `json:"completeness"`
	Confidence   float64 `json:"confidence"`
	Final        float64 `json:"final"`
}

// Result is the scoring outcome for one lead.
type Result struct {
	Score     float64   `json:"score"`
	Qualified bool      `json:"qualified"`
	Breakdown Breakdown `json:"breakdown"`
	Reasons   []string  `json:"reasons"`
}

// completenessFields are the fields counted toward the completeness
// component.
var completenessFields = []func(*model.MergedLead) string{
	func(l *model.MergedLead) string { return l.Contact.FullName },
	func(l *model.MergedLead) string { return l.Contact.Title },
	func(l *model.MergedLead) string { return l.Contact.Email },
	func(l *model.MergedLead) string { return l.Contact.CompanyName },
	func(l *model.MergedLead) string { return l.Contact.CompanyDomain },
}

// Score evaluates a lead against the criteria. Weights of zero total fall
// back to the defaults rather than dividing by zero.
func Score(lead *model.MergedLead, criteria Criteria) Result {
	w := criteria.Weights
	if w.Title+w.Industry+w.Completeness+w.Confidence == 0 {
		w = DefaultWeights
	}
	threshold := criteria.QualifyThreshold
	if threshold == 0 {
		threshold = DefaultQualifyThreshold
	}

	var reasons []string
	bd := Breakdown{}

	bd.Title, reasons = scoreTitle(lead, criteria, reasons)
	bd.Industry, reasons = scoreIndustry(lead, criteria, reasons)
	bd.Completeness = scoreCompleteness(lead)
	bd.Confidence = lead.Contact.AggregateConfidence()

	total := w.Title + w.Industry + w.Completeness + w.Confidence
	bd.Final = (w.Title*bd.Title + w.Industry*bd.Industry +
		w.Completeness*bd.Completeness + w.Confidence*bd.Confidence) / total

	qualified := bd.Final >= threshold
	if criteria.RequireEmail && lead.Contact.Email == "" {
		qualified = false
		reasons = append(reasons, "missing required email address")
	}
	if criteria.MinConfidence > 0 && bd.Confidence < criteria.MinConfidence {
		qualified = false
		reasons = append(reasons, fmt.Sprintf("aggregate confidence %.2f below minimum %.2f", bd.Confidence, criteria.MinConfidence))
	}

	var gateReason string
	if qualified, gateReason = locationGate(lead, criteria, qualified); gateReason != "" {
		reasons = append(reasons, gateReason)
	}
	if qualified, gateReason = sizeGate(lead, criteria, qualified); gateReason != "" {
		reasons = append(reasons, gateReason)
	}

	return Result{Score: bd.Final, Qualified: qualified, Breakdown: bd, Reasons: reasons}
}

// scoreTitle returns 1.0 when any title keyword substring-matches the title,
// or any department keyword matches the department, else 0.0.
func scoreTitle(lead *model.MergedLead, criteria Criteria, reasons []string) (float64, []string) {
	title := strings.ToLower(lead.Contact.Title)
	for _, kw := range criteria.TitleKeywords {
		if kw != "" && title != "" && strings.Contains(title, strings.ToLower(kw)) {
			return 1.0, append(reasons, fmt.Sprintf("title %q matches keyword %q", lead.Contact.Title, kw))
		}
	}
	dept := strings.ToLower(lead.Contact.Department)
	for _, kw := range criteria.DepartmentKeywords {
		if kw != "" && dept != "" && strings.Contains(dept, strings.ToLower(kw)) {
			return 1.0, append(reasons, fmt.Sprintf("department %q matches keyword %q", lead.Contact.Department, kw))
		}
	}
	if len(criteria.TitleKeywords) > 0 || len(criteria.DepartmentKeywords) > 0 {
		reasons = append(reasons, "title matches no target keyword")
	}
	return 0.0, reasons
}

// scoreIndustry returns 1.0 on a case-insensitive exact industry match.
func scoreIndustry(lead *model.MergedLead, criteria Criteria, reasons []string) (float64, []string) {
	industry := strings.ToLower(strings.TrimSpace(lead.Company.Industry))
	for _, target := range criteria.TargetIndustries {
		if industry != "" && industry == strings.ToLower(strings.TrimSpace(target)) {
			return 1.0, append(reasons, fmt.Sprintf("industry %q is targeted", lead.Company.Industry))
		}
	}
	if len(criteria.TargetIndustries) > 0 {
		reasons = append(reasons, "industry matches no target")
	}
	return 0.0, reasons
}

// scoreCompleteness is the fraction of required fields that are populated:
// name, title, email, company, domain.
func scoreCompleteness(lead *model.MergedLead) float64 {
	populated := 0
	for _, get := range completenessFields {
		if get(lead) != "" {
			populated++
		}
	}
	return float64(populated) / float64(len(completenessFields))
}

// locationGate fails qualification when target locations are configured and
// none substring-matches the lead's location.
func locationGate(lead *model.MergedLead, criteria Criteria, qualified bool) (bool, string) {
	if len(criteria.TargetLocations) == 0 {
		return qualified, ""
	}
	loc := strings.ToLower(lead.Company.Location)
	if loc == "" {
		loc = strings.ToLower(lead.Contact.Location)
	}
	for _, target := range criteria.TargetLocations {
		if loc != "" && strings.Contains(loc, strings.ToLower(target)) {
			return qualified, fmt.Sprintf("location %q matches target %q", loc, target)
		}
	}
	return false, "location matches no target"
}

// sizeGate fails qualification when a size range is configured and the
// company's employee count falls outside it. Leads with no usable count pass
// through unjudged.
func sizeGate(lead *model.MergedLead, criteria Criteria, qualified bool) (bool, string) {
	if criteria.MinEmployees == 0 && criteria.MaxEmployees == 0 {
		return qualified, ""
	}
	count := lead.Company.EmployeeCount
	if count == 0 {
		return qualified, ""
	}
	if count < criteria.MinEmployees {
		return false, fmt.Sprintf("company size %d below minimum %d", count, criteria.MinEmployees)
	}
	if criteria.MaxEmployees > 0 && count > criteria.MaxEmployees {
		return false, fmt.Sprintf("company size %d above maximum %d", count, criteria.MaxEmployees)
	}
	return qualified, fmt.Sprintf("company size %d within target range", count)
}
