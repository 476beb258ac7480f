package model

// Dataset is tabular input: a header of column names and records whose cells
// are index-aligned to it.
type Dataset struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the index of the first column called name, or -1.
func (d Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Record returns the i-th record and whether it exists.
func (d Dataset) Record(i int) ([]string, bool) {
	if i < 0 || i >= len(d.Rows) {
		return nil, false
	}
	return d.Rows[i], true
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Rows) }
