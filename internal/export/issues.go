package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// WriteIssuesCSV writes skipped rows with their original fields plus an error
// column, so rejected input can be inspected and re-submitted.
func WriteIssuesCSV(w io.Writer, issues []model.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	// Union of field keys across all issues, for a stable header.
	keySet := make(map[string]bool)
	for _, issue := range issues {
		for k := range issue.Fields {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cw := csv.NewWriter(w)
	header := append([]string{"source", "row"}, keys...)
	header = append(header, "error")
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write issues header")
	}

	for _, issue := range issues {
		record := []string{string(issue.Source), strconv.Itoa(issue.Row)}
		for _, k := range keys {
			record = append(record, issue.Fields[k])
		}
		record = append(record, issue.Err)
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write issue row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush issues")
}
