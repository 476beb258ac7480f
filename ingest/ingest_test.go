package ingest_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/lvillar/reportcanvas/ingest"
)

// writeWorkbook saves rows to the first sheet of a new workbook and returns
// its path.
func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestReadFile(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Name", " Score ", "Avg"},
		{"Alice", 8, 5},
		{"Bob", 3, 6},
	})

	ds, err := ingest.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if want := []string{"Name", "Score", "Avg"}; !reflect.DeepEqual(ds.Columns, want) {
		t.Errorf("columns = %v, want %v", ds.Columns, want)
	}
	want := [][]string{{"Alice", "8", "5"}, {"Bob", "3", "6"}}
	if !reflect.DeepEqual(ds.Rows, want) {
		t.Errorf("rows = %v, want %v", ds.Rows, want)
	}
}

func TestReadFromStream(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Name")
	f.SetCellValue("Sheet1", "A2", "Carol")
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	ds, err := ingest.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ds.Len() != 1 || ds.Rows[0][0] != "Carol" {
		t.Errorf("dataset = %+v", ds)
	}
}

func TestFromRows(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		wantCols []string
		wantRows [][]string
		wantErr  error
	}{
		{
			name:    "empty",
			rows:    nil,
			wantErr: ingest.ErrNoHeader,
		},
		{
			name:    "blank header",
			rows:    [][]string{{"", "  "}, {"x"}},
			wantErr: ingest.ErrNoHeader,
		},
		{
			name:     "header only",
			rows:     [][]string{{"Name"}},
			wantCols: []string{"Name"},
		},
		{
			name:     "short and long rows",
			rows:     [][]string{{"A", "B"}, {"1"}, {"1", "2", "3"}},
			wantCols: []string{"A", "B"},
			wantRows: [][]string{{"1", ""}, {"1", "2"}},
		},
		{
			name:     "blank rows dropped",
			rows:     [][]string{{"A"}, {""}, {"x"}, {" "}, {}},
			wantCols: []string{"A"},
			wantRows: [][]string{{"x"}},
		},
		{
			name:     "trailing empty header cells",
			rows:     [][]string{{"A", "B", "", ""}, {"1", "2"}},
			wantCols: []string{"A", "B"},
			wantRows: [][]string{{"1", "2"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ingest.FromRows(tt.rows)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromRows: %v", err)
			}
			if !reflect.DeepEqual(ds.Columns, tt.wantCols) {
				t.Errorf("columns = %v, want %v", ds.Columns, tt.wantCols)
			}
			if len(ds.Rows) != len(tt.wantRows) || (len(tt.wantRows) > 0 && !reflect.DeepEqual(ds.Rows, tt.wantRows)) {
				t.Errorf("rows = %v, want %v", ds.Rows, tt.wantRows)
			}
		})
	}
}

func TestReadFileErrors(t *testing.T) {
	if _, err := ingest.ReadFile(filepath.Join(t.TempDir(), "nope.xlsx")); !errors.Is(err, ingest.ErrFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}

	path := writeWorkbook(t, nil)
	_, err := ingest.ReadFile(path)
	if !errors.Is(err, ingest.ErrNoHeader) {
		t.Fatalf("empty workbook err = %v, want ErrNoHeader", err)
	}
	var ie *ingest.Error
	if !errors.As(err, &ie) || ie.SheetName != "Sheet1" {
		t.Errorf("error does not name the sheet: %v", err)
	}
}
