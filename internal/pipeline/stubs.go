package pipeline

import (
	"context"
	"strings"

	"github.com/GrayGhostDev/lead-generator/internal/ingest"
	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// StaticEnricher serves enrichment records from a fixed in-memory set,
// matched back to requested contacts by name first, then by email. Used for
// offline runs and tests in place of a live provider client.
type StaticEnricher struct {
	Records []ingest.Record
}

// EnrichBatch returns the stub records matching the requested contacts. It
// never fails.
func (s *StaticEnricher) EnrichBatch(_ context.Context, contacts []model.Contact) ([]ingest.Record, error) {
	byName := make(map[string][]ingest.Record)
	byEmail := make(map[string]ingest.Record)
	for _, rec := range s.Records {
		nameKey := matchKey(rec.Contact.FirstName, rec.Contact.LastName)
		byName[nameKey] = append(byName[nameKey], rec)
		if rec.Contact.Email != "" {
			byEmail[strings.ToLower(rec.Contact.Email)] = rec
		}
	}

	var out []ingest.Record
	for _, c := range contacts {
		nameKey := matchKey(c.FirstName, c.LastName)
		email := strings.ToLower(c.Email)

		// Unambiguous name match wins; ambiguity falls back to email.
		if matches := byName[nameKey]; len(matches) == 1 {
			out = append(out, matches[0])
			continue
		} else if len(matches) > 1 && email != "" {
			matched := false
			for _, rec := range matches {
				if strings.ToLower(rec.Contact.Email) == email {
					out = append(out, rec)
					matched = true
					break
				}
			}
			if matched {
				continue
			}
		}
		if rec, ok := byEmail[email]; ok && email != "" {
			out = append(out, rec)
		}
	}
	return out, nil
}

func matchKey(first, last string) string {
	return strings.ToLower(strings.TrimSpace(first)) + "|" + strings.ToLower(strings.TrimSpace(last))
}
