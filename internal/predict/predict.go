// Package predict generates ranked candidate email addresses for leads whose
// address was never observed.
package predict

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// Candidate is one synthesized address with its likelihood prior.
type Candidate struct {
	Email      string  `json:"email"`
	Likelihood float64 `json:"likelihood"`
}

// pattern builds an address from the lowercased first name, last name, and
// domain. Patterns are evaluated in fixed priority order; earlier means a
// higher prior.
type pattern func(first, last, domain string) string

var patterns = []pattern{
	func(f, l, d string) string { return fmt.Sprintf("%s.%s@%s", f, l, d) },
	func(f, l, d string) string { return fmt.Sprintf("%s%s@%s", f[:1], l, d) },
	func(f, _, d string) string { return fmt.Sprintf("%s@%s", f, d) },
	func(f, l, d string) string { return fmt.Sprintf("%s%s@%s", f, l, d) },
	func(f, l, d string) string { return fmt.Sprintf("%s.%s@%s", f[:1], l, d) },
}

// DefaultPriors are the base likelihoods per pattern rank. They are priors,
// not verified probabilities: no network verification happens here.
var DefaultPriors = []float64{0.40, 0.25, 0.15, 0.12, 0.08}

// DefaultThreshold is the minimum likelihood at which the top candidate is
// written into the lead.
const DefaultThreshold = 0.35

// Predictor synthesizes candidate emails from name parts and company domain.
type Predictor struct {
	priors    []float64
	threshold float64
}

// New creates a predictor. Nil priors or a non-positive threshold fall back
// to the defaults.
func New(priors []float64, threshold float64) *Predictor {
	if len(priors) == 0 {
		priors = DefaultPriors
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Predictor{priors: priors, threshold: threshold}
}

// Candidates returns synthesized addresses ordered by descending likelihood.
// The sequence is empty when the first name, last name, or domain is missing:
// an expected no-op, not a failure.
func (p *Predictor) Candidates(lead *model.MergedLead) []Candidate {
	first := sanitizePart(lead.Contact.FirstName)
	last := sanitizePart(lead.Contact.LastName)
	domain := strings.ToLower(strings.TrimSpace(lead.Contact.CompanyDomain))
	if first == "" || last == "" || domain == "" {
		return nil
	}

	out := make([]Candidate, 0, len(patterns))
	for i, pat := range patterns {
		var prior float64
		if i < len(p.priors) {
			prior = p.priors[i]
		}
		out = append(out, Candidate{Email: pat(first, last, domain), Likelihood: prior})
	}
	// Priors normally decrease with rank, but configured priors may not.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Likelihood > out[j].Likelihood })
	return out
}

// Apply writes the top candidate into the lead when its likelihood meets the
// acceptance threshold. It returns true when a prediction was applied. Leads
// with an observed email are left untouched.
func (p *Predictor) Apply(lead *model.MergedLead) bool {
	if lead.Contact.Email != "" {
		return false
	}

	candidates := p.Candidates(lead)
	if len(candidates) == 0 || candidates[0].Likelihood < p.threshold {
		return false
	}

	top := candidates[0]
	lead.Contact.Email = top.Email
	lead.Contact.SetField("email", model.FieldProvenance{
		Source:     model.SourcePredicted,
		Confidence: top.Likelihood,
	})
	lead.PredictionUsed = true

	zap.L().Debug("predict: email synthesized",
		zap.String("identity_key", lead.IdentityKey),
		zap.String("email", top.Email),
		zap.Float64("likelihood", top.Likelihood),
	)
	return true
}

// sanitizePart lowercases a name part and strips characters that cannot
// appear in an address local part.
func sanitizePart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
