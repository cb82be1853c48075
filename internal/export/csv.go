// Package export serializes merged leads to flat CSV rows and structured
// JSON documents, with provenance intact for auditability.
package export

import (
	"encoding/json"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

// leadRow is the flat CSV projection of a MergedLead.
type leadRow struct {
	FullName           string  `csv:"full_name"`
	Title              string  `csv:"title"`
	Email              string  `csv:"email"`
	Phone              string  `csv:"phone"`
	CompanyName        string  `csv:"company_name"`
	CompanyDomain      string  `csv:"company_domain"`
	Industry           string  `csv:"industry"`
	EmployeeCount      int     `csv:"employee_count,omitempty"`
	Location           string  `csv:"location"`
	Source             string  `csv:"source"`
	QualificationScore float64 `csv:"qualification_score"`
	Qualified          bool    `csv:"qualified"`
	PredictionUsed     bool    `csv:"prediction_used"`
	MergedFrom         int     `csv:"merged_from"`
	// Provenance is the per-field source/confidence map as a JSON document,
	// so nested data survives the flat format.
	Provenance string `csv:"provenance"`
}

// WriteCSV writes leads as flat CSV rows.
func WriteCSV(w io.Writer, leads []model.MergedLead) error {
	rows := make([]leadRow, 0, len(leads))
	for _, lead := range leads {
		prov, err := json.Marshal(lead.Contact.Provenance)
		if err != nil {
			return eris.Wrap(err, "export: marshal provenance")
		}
		rows = append(rows, leadRow{
			FullName:           lead.Contact.FullName,
			Title:              lead.Contact.Title,
			Email:              lead.Contact.Email,
			Phone:              lead.Contact.Phone,
			CompanyName:        lead.Company.Name,
			CompanyDomain:      lead.Contact.CompanyDomain,
			Industry:           lead.Company.Industry,
			EmployeeCount:      lead.Company.EmployeeCount,
			Location:           lead.Company.Location,
			Source:             string(lead.Contact.Source),
			QualificationScore: lead.QualificationScore,
			Qualified:          lead.Qualified,
			PredictionUsed:     lead.PredictionUsed,
			MergedFrom:         lead.MergedFrom,
			Provenance:         string(prov),
		})
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "export: marshal csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write csv")
	}
	return nil
}
