package dataio

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lmoreno/stampgen"
)

// ImportXLSX reads rows from the first sheet of an Excel workbook. The first
// row must be a header containing a column for every name in nodes, exactly
// as with ImportCSV.
func ImportXLSX(r io.Reader, nodes []string) ([]stampgen.DataRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("dataio: opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("dataio: workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("dataio: reading sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataio: input is empty or has no headers")
	}
	return mapRows(records[0], records[1:], nodes)
}
