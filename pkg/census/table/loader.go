package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/censusqa/pkg/census/internalerr"
)

// LoadOptions names the structural columns of a dataset file. Zero values
// select the census defaults.
type LoadOptions struct {
	RegionColumn     string // default "State"
	ClassifierColumn string // default "TRU"; may be absent from the file
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.RegionColumn == "" {
		o.RegionColumn = "State"
	}
	if o.ClassifierColumn == "" {
		o.ClassifierColumn = "TRU"
	}
	return o
}

// LoadCSV reads a dataset file and builds the table.
func LoadCSV(path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ParseCSV(f, opts)
}

// ParseCSV builds a table from CSV data. The first record is the header; the
// region column is required, the classifier column optional, and every other
// column becomes a numeric attribute. Cells that do not parse as numbers are
// stored as missing.
func ParseCSV(r io.Reader, opts LoadOptions) (*Table, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	regionIdx, classifierIdx := -1, -1
	var attrs []string
	attrIdx := make([]int, 0, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case strings.EqualFold(name, opts.RegionColumn):
			regionIdx = i
		case strings.EqualFold(name, opts.ClassifierColumn):
			classifierIdx = i
		default:
			attrs = append(attrs, name)
			attrIdx = append(attrIdx, i)
		}
	}
	if regionIdx < 0 {
		return nil, fmt.Errorf("dataset has no %q column: %w", opts.RegionColumn, internalerr.ErrInvalidConfig)
	}

	t := New(attrs, classifierIdx >= 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}

		row := Row{
			Region: strings.TrimSpace(record[regionIdx]),
			Cells:  make(map[string]Cell, len(attrs)),
		}
		if classifierIdx >= 0 {
			row.Classifier = strings.TrimSpace(record[classifierIdx])
		}
		for k, col := range attrIdx {
			if col >= len(record) {
				continue
			}
			if cell, ok := parseCell(record[col]); ok {
				row.Cells[attrs[k]] = cell
			}
		}
		t.AppendRow(row)
	}
	return t, nil
}

// parseCell parses a numeric cell. Empty and non-numeric cells are missing,
// not errors: real census exports mix blanks and annotations into numeric
// columns.
func parseCell(raw string) (Cell, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{}, false
	}
	s = strings.ReplaceAll(s, ",", "")
	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Cell{}, false
	}
	return Cell{Num: num, Valid: true}, true
}
