// Package merge deduplicates contact records across heterogeneous sources and
// resolves field conflicts by confidence and source priority.
package merge

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// IdentityKey builds the stable dedup key for a contact: normalized full name
// joined with the company domain, falling back to the company name. Returns
// "" when neither the name nor any company identifier is present.
func IdentityKey(c *model.Contact) string {
	name := normalizeKeyPart(c.FullName)
	company := normalizeKeyPart(c.CompanyDomain)
	if company == "" {
		company = normalizeKeyPart(c.CompanyName)
	}
	if name == "" && company == "" {
		return ""
	}
	return name + "|" + company
}

var keyFolder = cases.Fold()

// normalizeKeyPart lowercases (full Unicode case folding), applies NFKC, and
// collapses internal whitespace so cosmetic differences between sources do
// not defeat dedup.
func normalizeKeyPart(s string) string {
	s = norm.NFKC.String(s)
	s = keyFolder.String(s)
	return strings.Join(strings.Fields(s), " ")
}
