// Package binding resolves data-bound canvas objects against one dataset
// record.
//
// Resolution never fails: a column that does not exist, a missing record or
// an empty cell falls back to a "[column]" placeholder for text, and to 0 for
// chart values.
package binding

import (
	"math"
	"strconv"
	"strings"

	"github.com/lvillar/reportcanvas/model"
)

// headroom is the fraction added above the largest chart value.
const headroom = 1.2

// epsilon absorbs float error before rounding the domain up.
const epsilon = 1e-9

// Placeholder is the text shown for an unresolved column reference.
func Placeholder(column string) string {
	return "[" + column + "]"
}

// cell returns the value of column in the record at index, or "" when either
// is missing.
func cell(ds model.Dataset, index int, column string) string {
	rec, ok := ds.Record(index)
	if !ok {
		return ""
	}
	ci := ds.ColumnIndex(column)
	if ci < 0 || ci >= len(rec) {
		return ""
	}
	return rec[ci]
}

// Text returns the value displayed by a mapped text bound to column for the
// record at index.
func Text(ds model.Dataset, index int, column string) string {
	if v := cell(ds, index, column); v != "" {
		return v
	}
	return Placeholder(column)
}

// Value returns the raw cell value bound to column and whether it is
// non-empty.
func Value(ds model.Dataset, index int, column string) (string, bool) {
	v := cell(ds, index, column)
	return v, v != ""
}

// Number coerces a cell to a float. Empty, non-numeric and non-finite
// content is 0.
func Number(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
