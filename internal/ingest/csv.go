// Package ingest parses loosely-typed contact and company rows from CSV and
// XLSX sources into typed records.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// Row is a header-keyed input row. Keys are the lowercased, trimmed header
// cells of the source file.
type Row map[string]string

// CSVOptions configures the streaming CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// StreamCSV reads a headered CSV and sends one Row per record to the returned
// channel. Caller must consume the row channel. Errors are sent on the error
// channel. Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan Row, <-chan error) {
	rowCh := make(chan Row, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // schema-tolerant: allow ragged rows

		var header []string
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if header == nil {
				header = normalizeHeader(record)
				continue
			}

			select {
			case rowCh <- zipRow(header, record):
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSV reads all rows of a headered CSV into memory.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([]Row, error) {
	rowCh, errCh := StreamCSV(ctx, r, opts)

	var rows []Row
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return rows, nil
}

func normalizeHeader(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return out
}

// zipRow pairs header keys with record cells. Cells beyond the header are
// dropped; missing trailing cells stay absent from the map.
func zipRow(header []string, record []string) Row {
	row := make(Row, len(header))
	for i, key := range header {
		if key == "" || i >= len(record) {
			continue
		}
		row[key] = strings.TrimSpace(record[i])
	}
	return row
}
