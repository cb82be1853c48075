package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// FormatReport renders a human-readable consolidation report for one run.
func FormatReport(result *Result) string {
	var b strings.Builder

	b.WriteString("# Lead Consolidation Report\n\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Input records: %d\n", result.Summary.InputTotal)

	sources := make([]string, 0, len(result.Summary.InputBySource))
	for src := range result.Summary.InputBySource {
		sources = append(sources, string(src))
	}
	sort.Strings(sources)
	for _, src := range sources {
		fmt.Fprintf(&b, "  - %s: %d\n", src, result.Summary.InputBySource[model.Source(src)])
	}

	fmt.Fprintf(&b, "- Duplicates merged: %d\n", result.Summary.DuplicatesMerged)
	fmt.Fprintf(&b, "- Predictions applied: %d\n", result.Summary.PredictionsApplied)
	fmt.Fprintf(&b, "- Leads qualified: %d of %d\n", result.Summary.LeadsQualified, result.Summary.LeadsTotal)
	fmt.Fprintf(&b, "- Row issues: %d\n\n", result.Summary.Issues)

	b.WriteString("## Qualified Leads\n")
	qualified := 0
	for _, lead := range result.Leads {
		if !lead.Qualified {
			continue
		}
		qualified++
		email := lead.Contact.Email
		if lead.PredictionUsed {
			email += " (predicted)"
		}
		fmt.Fprintf(&b, "- **%s** (%s, %s) [%s] score %.2f\n",
			lead.Contact.FullName, lead.Contact.Title, lead.Company.Name, email, lead.QualificationScore)
	}
	if qualified == 0 {
		b.WriteString("None.\n")
	}
	b.WriteString("\n")

	if len(result.Issues) > 0 {
		b.WriteString("## Issues\n")
		for _, issue := range result.Issues {
			fmt.Fprintf(&b, "- [%s] row %d: %s\n", issue.Source, issue.Row, issue.Err)
		}
	}

	return b.String()
}
