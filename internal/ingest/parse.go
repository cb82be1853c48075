package ingest

import (
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// Record is one parsed input row: a contact plus the company columns that
// rode along with it.
type Record struct {
	Contact model.Contact
	Company model.Company
}

// columnAliases maps canonical field keys to the header spellings seen across
// manual CSVs, enrichment exports, and scraper output. Headers are matched
// after lowercasing and trimming.
var columnAliases = map[string][]string{
	"full_name":      {"full_name", "name", "full name", "contact name"},
	"first_name":     {"first_name", "first name", "firstname", "given name"},
	"last_name":      {"last_name", "last name", "lastname", "surname"},
	"title":          {"title", "job title", "job_title", "position"},
	"department":     {"department", "dept"},
	"email":          {"email", "email address", "email_address", "work email"},
	"phone":          {"phone", "contact phone", "direct phone", "directphone", "phone number"},
	"company_name":   {"company_name", "company", "company name", "organization", "account name"},
	"company_domain": {"company_domain", "domain", "company domain"},
	"website":        {"company_website", "website", "company website", "url"},
	"industry":       {"company_industry", "industry"},
	"company_size":   {"company_size", "employees", "employee count", "company size", "size"},
	"location":       {"company_location", "location", "city", "region"},
	"raw_id":         {"id", "raw_id", "record id", "contact id"},
}

// DefaultConfidence is the per-source confidence assigned to every populated
// field at parse time, before any merging.
var DefaultConfidence = map[model.Source]float64{
	model.SourceManual:     0.90,
	model.SourceEnrichment: 0.80,
	model.SourceScraped:    0.60,
}

// ParseRow converts a header-keyed row into a typed Record. It fails with a
// model.SchemaError when the required identity fields are absent: a name, and
// at least one of email or company. rowNum is 1-based and used only for error
// reporting.
func ParseRow(row Row, source model.Source, rowNum int) (Record, error) {
	pick, picked := aliasPicker(row)

	first := pick("first_name")
	last := pick("last_name")
	full := pick("full_name")
	if full == "" {
		full = strings.TrimSpace(first + " " + last)
	}
	if first == "" && last == "" && full != "" {
		first, last = splitFullName(full)
	}

	email := strings.ToLower(pick("email"))
	if email != "" && !validEmail(email) {
		return Record{}, &model.SchemaError{Row: rowNum, Reason: fmt.Sprintf("invalid email %q", email)}
	}

	companyName := pick("company_name")
	domain := strings.ToLower(pick("company_domain"))
	if domain == "" {
		domain = domainFromURL(pick("website"))
	}
	if domain == "" && email != "" && !isFreemailDomain(emailDomain(email)) {
		domain = emailDomain(email)
	}

	if full == "" {
		return Record{}, &model.SchemaError{Row: rowNum, Reason: "missing contact name"}
	}
	if email == "" && companyName == "" && domain == "" {
		return Record{}, &model.SchemaError{Row: rowNum, Reason: "missing both email and company"}
	}

	conf := DefaultConfidence[source]
	contact := model.Contact{
		FullName:      full,
		FirstName:     first,
		LastName:      last,
		Title:         pick("title"),
		Department:    pick("department"),
		Email:         email,
		Phone:         pick("phone"),
		CompanyName:   companyName,
		CompanyDomain: domain,
		Location:      pick("location"),
		Source:        source,
		RawID:         pick("raw_id"),
	}
	for key, val := range map[string]string{
		"full_name":      contact.FullName,
		"title":          contact.Title,
		"department":     contact.Department,
		"email":          contact.Email,
		"phone":          contact.Phone,
		"company_name":   contact.CompanyName,
		"company_domain": contact.CompanyDomain,
		"location":       contact.Location,
	} {
		if val != "" {
			contact.SetField(key, model.FieldProvenance{Source: source, Confidence: conf})
		}
	}

	count, sizeRaw := parseEmployeeCount(pick("company_size"))
	company := model.Company{
		Name:          companyName,
		Domain:        domain,
		Industry:      pick("industry"),
		EmployeeCount: count,
		SizeRaw:       sizeRaw,
		Location:      pick("location"),
		Source:        source,
	}

	// Unknown columns are retained, not dropped.
	for key, val := range row {
		if val == "" || picked[key] {
			continue
		}
		if contact.Extra == nil {
			contact.Extra = make(map[string]string)
		}
		contact.Extra[key] = val
	}

	return Record{Contact: contact, Company: company}, nil
}

// ParseRows parses a slice of rows, collecting row-scoped issues instead of
// failing the batch. One bad record never aborts the run.
func ParseRows(rows []Row, source model.Source) ([]Record, []model.Issue) {
	var records []Record
	var issues []model.Issue
	for i, row := range rows {
		rec, err := ParseRow(row, source, i+1)
		if err != nil {
			issues = append(issues, model.Issue{
				Source: source,
				Row:    i + 1,
				Err:    err.Error(),
				Fields: row,
			})
			continue
		}
		records = append(records, rec)
	}
	return records, issues
}

// aliasPicker returns a lookup over canonical keys plus the set of consumed
// raw header keys, used to separate known columns from Extra.
func aliasPicker(row Row) (func(string) string, map[string]bool) {
	picked := make(map[string]bool)
	pick := func(key string) string {
		for _, alias := range columnAliases[key] {
			if v, ok := row[alias]; ok {
				picked[alias] = true
				if v != "" {
					return v
				}
			}
		}
		return ""
	}
	return pick, picked
}

func splitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// mail.ParseAddress accepts "a@b"; require a dotted domain.
	return addr.Address == email && strings.Contains(emailDomain(email), ".")
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return ""
}

// freemailDomains are never treated as a company domain when deriving one
// from an email address.
var freemailDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
	"outlook.com": true,
	"aol.com":     true,
	"icloud.com":  true,
}

func isFreemailDomain(domain string) bool {
	return freemailDomains[domain]
}

// domainFromURL extracts a bare domain from a website URL, stripping any
// leading www prefix.
func domainFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// parseEmployeeCount reduces a size string to an integer. Range values take
// the lower bound ("200-500" -> 200), "1,000+" -> 1000. The raw string is
// returned when no number can be extracted.
func parseEmployeeCount(size string) (int, string) {
	if size == "" {
		return 0, ""
	}
	s := size
	if i := strings.Index(s, "-"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "+")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, size
	}
	return n, size
}
