// Package table implements the in-memory tabular engine: direct cell lookup
// by region and attribute, and whole-dataset aggregation when no region is
// given. The table is immutable once built and safe for concurrent readers.
package table

import (
	"fmt"
	"math"
	"strings"

	"github.com/cognicore/censusqa/pkg/census/internalerr"
)

// AggregateRegion is the label attached to whole-dataset aggregates.
const AggregateRegion = "India"

// TotalClassifier marks the row holding a region's aggregate figure when a
// table carries a row-classifier column.
const TotalClassifier = "Total"

// Cell is a single numeric cell. Valid is false for missing values.
type Cell struct {
	Num   float64
	Valid bool
}

// Row is one dataset row: a region value, an optional classifier and the
// attribute cells keyed by column name.
type Row struct {
	Region     string
	Classifier string
	Cells      map[string]Cell
}

// ValueKind discriminates a lookup result value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueInt
	ValueFloat
	ValueText
)

// Value is the raw result of a lookup. Integral numerics are coerced to
// ValueInt; a missing cell is ValueNull; an unsummable aggregate is the
// ValueText "N/A".
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Text  string
}

func nullValue() Value        { return Value{Kind: ValueNull} }
func textValue(s string) Value { return Value{Kind: ValueText, Text: s} }

// numberValue coerces integral floats to ValueInt.
func numberValue(f float64) Value {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Value{Kind: ValueInt, Int: int64(f)}
	}
	return Value{Kind: ValueFloat, Float: f}
}

// Result is a successful lookup.
type Result struct {
	Region    string
	Attribute string
	Value     Value
}

// Table holds the loaded dataset. Build one with New and AppendRow (or the
// CSV loader) and treat it as read-only afterwards.
type Table struct {
	attrs      []string
	attrSet    map[string]struct{}
	classified bool
	rows       []Row
	regions    []string // distinct region values, first-seen order
	regionSeen map[string]struct{}
}

// New creates an empty table with the given attribute columns. classified
// reports whether rows carry a row-classifier value.
func New(attributes []string, classified bool) *Table {
	t := &Table{
		attrs:      attributes,
		attrSet:    make(map[string]struct{}, len(attributes)),
		classified: classified,
		regionSeen: make(map[string]struct{}),
	}
	for _, a := range attributes {
		t.attrSet[a] = struct{}{}
	}
	return t
}

// AppendRow adds a row in load order. Row order is significant: lookups that
// find no Total-classified row fall back to the first matching row.
func (t *Table) AppendRow(r Row) {
	t.rows = append(t.rows, r)
	if _, ok := t.regionSeen[r.Region]; !ok {
		t.regionSeen[r.Region] = struct{}{}
		t.regions = append(t.regions, r.Region)
	}
}

// Attributes returns the attribute column names in header order.
func (t *Table) Attributes() []string { return t.attrs }

// Regions returns the distinct region values in first-seen order.
func (t *Table) Regions() []string { return t.regions }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Lookup resolves a (region, attribute) request against the table:
//
//	region + attribute: the cell of the region's Total row (or first row)
//	attribute only:     the column summed over all rows, labeled "India"
//	region only:        error, the attribute is required
//	neither:            error
//
// A nil or empty table always fails with ErrNoDataset.
func (t *Table) Lookup(region, attribute string) (Result, error) {
	if t == nil || len(t.rows) == 0 {
		return Result{}, internalerr.ErrNoDataset
	}

	switch {
	case region != "" && attribute != "":
		return t.lookupCell(region, attribute)
	case attribute != "":
		return t.aggregate(attribute), nil
	case region != "":
		return Result{}, fmt.Errorf("attribute not specified: %w", internalerr.ErrUnderspecified)
	default:
		return Result{}, fmt.Errorf("please specify both state and field: %w", internalerr.ErrUnderspecified)
	}
}

func (t *Table) lookupCell(region, attribute string) (Result, error) {
	row, ok := t.selectRow(region)
	if !ok {
		return Result{}, fmt.Errorf("no data found for region %s: %w", region, internalerr.ErrRegionNotFound)
	}
	if _, ok := t.attrSet[attribute]; !ok {
		return Result{}, fmt.Errorf("field %s not found in dataset: %w", attribute, internalerr.ErrUnknownAttribute)
	}

	res := Result{Region: region, Attribute: attribute, Value: nullValue()}
	if cell, ok := row.Cells[attribute]; ok && cell.Valid {
		res.Value = numberValue(cell.Num)
	}
	return res, nil
}

// selectRow filters rows by case-insensitive region equality. When the table
// is classified and any match carries the Total classifier, the first such
// row wins; otherwise the first match in load order does.
func (t *Table) selectRow(region string) (Row, bool) {
	want := strings.ToLower(region)
	first := -1
	for i, row := range t.rows {
		if strings.ToLower(row.Region) != want {
			continue
		}
		if first < 0 {
			first = i
		}
		if t.classified && row.Classifier == TotalClassifier {
			return row, true
		}
	}
	if first < 0 {
		return Row{}, false
	}
	return t.rows[first], true
}

// aggregate sums a column over every row, skipping missing cells. Unknown
// columns and columns with nothing to sum yield the literal "N/A".
func (t *Table) aggregate(attribute string) Result {
	res := Result{Region: AggregateRegion, Attribute: attribute, Value: textValue("N/A")}
	if _, ok := t.attrSet[attribute]; !ok {
		return res
	}

	sum, any := 0.0, false
	for _, row := range t.rows {
		if cell, ok := row.Cells[attribute]; ok && cell.Valid {
			sum += cell.Num
			any = true
		}
	}
	if !any || math.IsNaN(sum) {
		return res
	}
	res.Value = numberValue(sum)
	return res
}
