package merge

import (
	"sort"

	"go.uber.org/zap"

	"github.com/GrayGhostDev/lead-generator/internal/ingest"
	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// Policy selects how duplicate groups are ordered before pairwise merging.
type Policy string

const (
	// PolicySourcePriority merges in Manual > Enrichment > Scraped order,
	// arrival order breaking ties. This is the default.
	PolicySourcePriority Policy = "source-priority"
	// PolicyMostRecent merges later collections first regardless of source.
	PolicyMostRecent Policy = "most-recent"
)

// Collection is one ordered batch of parsed records from a single source.
type Collection struct {
	Source  model.Source
	Label   string // input file or provider name, for issue reporting
	Records []ingest.Record
}

// Engine combines N record collections into one deduplicated lead set.
type Engine struct {
	policy Policy
}

// NewEngine creates a merge engine. An empty policy defaults to
// source-priority.
func NewEngine(policy Policy) *Engine {
	if policy == "" {
		policy = PolicySourcePriority
	}
	return &Engine{policy: policy}
}

// member is a record annotated with its arrival position for tie-breaking.
type member struct {
	rec        ingest.Record
	collection int
}

// Merge groups records by identity key and resolves each group into a single
// MergedLead. Records with no buildable identity key are excluded and
// reported as issues; they never abort the merge.
func (e *Engine) Merge(collections []Collection) ([]model.MergedLead, []model.Issue) {
	groups := make(map[string][]member)
	var keys []string
	var issues []model.Issue
	total := 0

	for ci, col := range collections {
		for _, rec := range col.Records {
			key := IdentityKey(&rec.Contact)
			if key == "" {
				err := &model.DuplicateResolutionError{RawID: rec.Contact.RawID, Source: rec.Contact.Source}
				zap.L().Warn("merge: unidentifiable record excluded",
					zap.String("collection", col.Label),
					zap.String("raw_id", rec.Contact.RawID),
				)
				issues = append(issues, model.Issue{
					Source: rec.Contact.Source,
					RawID:  rec.Contact.RawID,
					Err:    err.Error(),
				})
				continue
			}
			if _, seen := groups[key]; !seen {
				keys = append(keys, key)
			}
			groups[key] = append(groups[key], member{rec: rec, collection: ci})
			total++
		}
	}

	// Deterministic output order regardless of grouping pass.
	sort.Strings(keys)

	leads := make([]model.MergedLead, 0, len(keys))
	for _, key := range keys {
		members := groups[key]
		e.orderGroup(members)

		lead := model.MergedLead{
			Contact:     members[0].rec.Contact,
			Company:     members[0].rec.Company,
			IdentityKey: key,
			MergedFrom:  len(members),
		}
		for _, m := range members[1:] {
			mergeContact(&lead.Contact, &m.rec.Contact)
			mergeCompany(&lead.Company, &m.rec.Company)
		}
		leads = append(leads, lead)
	}

	if merged := total - len(leads); merged > 0 {
		zap.L().Info("merge: duplicates resolved",
			zap.Int("records", total),
			zap.Int("leads", len(leads)),
			zap.Int("merged", merged),
		)
	}
	return leads, issues
}

// orderGroup sorts group members so the highest-priority record comes first.
// The sort is stable with respect to collection order within the same rank.
func (e *Engine) orderGroup(members []member) {
	switch e.policy {
	case PolicyMostRecent:
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].collection > members[j].collection
		})
	default:
		// Stable by rank only: within the same rank, collection arrival order
		// is preserved, so the first non-empty value wins rather than the
		// last-written one.
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].rec.Contact.Source.Rank() < members[j].rec.Contact.Source.Rank()
		})
	}
}

// Fold merges an additional record into an already-merged lead under the
// same field resolution rules. Used to apply enrichment results, which may
// introduce identifiers (a company domain) that would change the lead's
// identity key and defeat a key-based regroup.
func Fold(lead *model.MergedLead, rec ingest.Record) {
	mergeContact(&lead.Contact, &rec.Contact)
	mergeCompany(&lead.Company, &rec.Company)
	lead.MergedFrom++
}

// NameKey is the normalized full-name half of the identity key, used to match
// enrichment records back to leads.
func NameKey(c *model.Contact) string {
	return normalizeKeyPart(c.FullName)
}

// contactFields enumerates the mergeable contact fields with accessors, so
// the resolution policy is applied uniformly.
var contactFields = []struct {
	key string
	get func(*model.Contact) string
	set func(*model.Contact, string)
}{
	{"full_name", func(c *model.Contact) string { return c.FullName }, func(c *model.Contact, v string) { c.FullName = v }},
	{"title", func(c *model.Contact) string { return c.Title }, func(c *model.Contact, v string) { c.Title = v }},
	{"department", func(c *model.Contact) string { return c.Department }, func(c *model.Contact, v string) { c.Department = v }},
	{"email", func(c *model.Contact) string { return c.Email }, func(c *model.Contact, v string) { c.Email = v }},
	{"phone", func(c *model.Contact) string { return c.Phone }, func(c *model.Contact, v string) { c.Phone = v }},
	{"company_name", func(c *model.Contact) string { return c.CompanyName }, func(c *model.Contact, v string) { c.CompanyName = v }},
	{"company_domain", func(c *model.Contact) string { return c.CompanyDomain }, func(c *model.Contact, v string) { c.CompanyDomain = v }},
	{"location", func(c *model.Contact) string { return c.Location }, func(c *model.Contact, v string) { c.Location = v }},
}

// mergeContact folds other into base field by field. Higher confidence wins;
// on tie the first-seen (base) non-empty value is kept; empty values never
// override populated ones. An observed email is never replaced by a
// predicted one, whatever the confidences.
func mergeContact(base, other *model.Contact) {
	for _, f := range contactFields {
		ov := f.get(other)
		if ov == "" {
			continue
		}

		bv := f.get(base)
		bp := base.Provenance[f.key]
		op := other.Provenance[f.key]

		take := bv == "" || op.Confidence > bp.Confidence
		if f.key == "email" && bv != "" && bp.Source.Observed() != op.Source.Observed() {
			// An observed email beats a predicted one in either direction,
			// whatever the confidences say.
			take = op.Source.Observed()
		}

		if take {
			f.set(base, ov)
			base.SetField(f.key, op)
			// Name parts follow the winning full name, so later email
			// prediction never runs on stale parts.
			if f.key == "full_name" && (other.FirstName != "" || other.LastName != "") {
				base.FirstName, base.LastName = other.FirstName, other.LastName
			}
		} else if bv != "" {
			// Losing value still raises certainty when sources agree.
			if ov == bv && op.Confidence > bp.Confidence {
				base.SetField(f.key, model.FieldProvenance{Source: bp.Source, Confidence: op.Confidence})
			}
		}
	}

	if base.FirstName == "" {
		base.FirstName = other.FirstName
	}
	if base.LastName == "" {
		base.LastName = other.LastName
	}
	if base.RawID == "" {
		base.RawID = other.RawID
	}
	for k, v := range other.Extra {
		if base.Extra == nil {
			base.Extra = make(map[string]string)
		}
		if _, ok := base.Extra[k]; !ok {
			base.Extra[k] = v
		}
	}
}

// mergeCompany fills empty company fields from the lower-priority record.
func mergeCompany(base, other *model.Company) {
	if base.Name == "" {
		base.Name = other.Name
	}
	if base.Domain == "" {
		base.Domain = other.Domain
	}
	if base.Industry == "" {
		base.Industry = other.Industry
	}
	if base.EmployeeCount == 0 {
		base.EmployeeCount = other.EmployeeCount
	}
	if base.SizeRaw == "" {
		base.SizeRaw = other.SizeRaw
	}
	if base.Location == "" {
		base.Location = other.Location
	}
}
