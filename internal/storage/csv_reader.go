package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
)

// RawRow is one CSV record keyed by trimmed header name.
type RawRow map[string]string

func (r RawRow) get(col string) string {
	return strings.TrimSpace(r[col])
}

// ReadRawRows reads a CSV with a header line. Header names are trimmed;
// the required columns must be present.
func ReadRawRows(r io.Reader, required ...string) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	for _, col := range required {
		if _, ok := have[col]; !ok {
			return nil, fmt.Errorf("csv: missing required column %q", col)
		}
	}

	var rows []RawRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read line %d: %w", line, err)
		}
		row := make(RawRow, len(header))
		for i, h := range header {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			row[h] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadListingsFromCSV reads and cleans a car details CSV file. The file needs
// Price, Year and Owner columns plus either Name or Make and Model.
func LoadListingsFromCSV(path string, c *Cleaner) ([]domain.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadRawRows(f, colPrice, colYear, colOwner)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && !hasNameColumns(rows[0]) {
		return nil, fmt.Errorf("csv: need a %q column or both %q and %q", colName, colMake, colModel)
	}
	return c.Clean(rows), nil
}

func hasNameColumns(r RawRow) bool {
	if _, ok := r[colName]; ok {
		return true
	}
	_, hasMake := r[colMake]
	_, hasModel := r[colModel]
	return hasMake && hasModel
}
