package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// Document is the structured JSON export: the full lead set plus the run
// summary, with per-field provenance included.
type Document struct {
	Summary model.RunSummary   `json:"summary"`
	Leads   []model.MergedLead `json:"leads"`
}

// WriteJSON writes the structured export document.
func WriteJSON(w io.Writer, leads []model.MergedLead, summary model.RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Summary: summary, Leads: leads}); err != nil {
		return eris.Wrap(err, "export: write json")
	}
	return nil
}
