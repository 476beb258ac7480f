// Package ingest reads tabular datasets from spreadsheet workbooks.
//
// Only the first worksheet is read. Its first row names the columns and
// every following row is one record.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lvillar/reportcanvas/model"
)

// ErrNoHeader is returned when the first worksheet has no usable header row.
var ErrNoHeader = errors.New("ingest: first sheet has no header row")

// ErrFileNotFound indicates the workbook does not exist.
var ErrFileNotFound = errors.New("ingest: file not found")

// Error reports a failure reading one worksheet.
type Error struct {
	SheetName string
	Err       error
}

func (e *Error) Error() string {
	if e.SheetName == "" {
		return fmt.Sprintf("ingest: %v", e.Err)
	}
	return fmt.Sprintf("ingest: sheet %q: %v", e.SheetName, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReadFile reads the dataset in the workbook at path.
func ReadFile(path string) (*model.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, &Error{Err: err}
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer f.Close()
	return fromFile(f)
}

// Read reads the dataset in the workbook streamed from r.
func Read(r io.Reader) (*model.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer f.Close()
	return fromFile(f)
}

func fromFile(f *excelize.File) (*model.Dataset, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &Error{SheetName: sheet, Err: err}
	}
	ds, err := FromRows(rows)
	if err != nil {
		return nil, &Error{SheetName: sheet, Err: err}
	}
	return ds, nil
}

// FromRows builds a dataset from raw rows, the first being the header.
// Header cells are trimmed. Records are padded or truncated to the number
// of columns and rows whose cells are all blank are dropped.
func FromRows(rows [][]string) (*model.Dataset, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	header := trimTrailingBlank(rows[0])
	if len(header) == 0 {
		return nil, ErrNoHeader
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	ds := &model.Dataset{Columns: cols}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make([]string, len(cols))
		copy(rec, row)
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}

func trimTrailingBlank(row []string) []string {
	n := len(row)
	for n > 0 && strings.TrimSpace(row[n-1]) == "" {
		n--
	}
	return row[:n]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
