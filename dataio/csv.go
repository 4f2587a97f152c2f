// Package dataio imports and exports the data rows that drive generation.
//
// Importers validate that every data node the template references is present
// as a column, then map rows by column name; columns the template does not
// know are dropped. The column-name-to-node binding is preserved exactly,
// with no renaming or reordering of meaning.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lmoreno/stampgen"
)

// ErrNoRows indicates the input had headers but no data rows.
var ErrNoRows = errors.New("dataio: input has no data rows")

// MissingColumnsError reports required data node columns absent from the
// imported header row.
type MissingColumnsError struct {
	Missing  []string // node names absent from the input
	Expected []string // all node names the template requires
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("dataio: input is missing columns: %s (expected: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Expected, ", "))
}

// ImportCSV reads rows from CSV data. The first record must be a header row
// containing a column for every name in nodes; extra columns are ignored.
func ImportCSV(r io.Reader, nodes []string) ([]stampgen.DataRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("dataio: input is empty or has no headers")
	}
	if err != nil {
		return nil, fmt.Errorf("dataio: reading header: %w", err)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataio: reading rows: %w", err)
	}
	return mapRows(header, records, nodes)
}

// ExportCSV writes the rows as CSV with the node names as the header, in
// node order.
func ExportCSV(w io.Writer, nodes []string, rows []stampgen.DataRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(nodes); err != nil {
		return fmt.Errorf("dataio: writing header: %w", err)
	}
	record := make([]string, len(nodes))
	for _, row := range rows {
		for i, n := range nodes {
			record[i] = row[n]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("dataio: writing row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("dataio: flushing output: %w", err)
	}
	return nil
}

// mapRows validates the header against the required nodes and converts raw
// records into DataRows keyed by node name. Cells beyond the header width
// are ignored; short records yield empty strings for the trailing columns.
func mapRows(header []string, records [][]string, nodes []string) ([]stampgen.DataRow, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	var missing []string
	for _, n := range nodes {
		if _, ok := index[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing, Expected: nodes}
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}

	rows := make([]stampgen.DataRow, 0, len(records))
	for _, record := range records {
		row := make(stampgen.DataRow, len(nodes))
		for _, n := range nodes {
			col := index[n]
			if col < len(record) {
				row[n] = record[col]
			} else {
				row[n] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
