package columnar

import "fmt"

// DataFrame is a named set of equal-length columns.
type DataFrame struct {
	Names []string
	Cols  []*Seq
}

// NewDataFrame validates the names/cols invariant and the equal-length
// invariant before returning a frame.
func NewDataFrame(names []string, cols []*Seq) (*DataFrame, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("columnar: %d names but %d columns", len(names), len(cols))
	}
	if len(cols) > 0 {
		n := cols[0].Len()
		for i, c := range cols {
			if c.Len() != n {
				return nil, fmt.Errorf("columnar: column %q has length %d, want %d", names[i], c.Len(), n)
			}
		}
	}
	return &DataFrame{Names: names, Cols: cols}, nil
}

// Width returns the number of columns.
func (df *DataFrame) Width() int { return len(df.Cols) }

// Size returns the number of rows.
func (df *DataFrame) Size() int {
	if len(df.Cols) == 0 {
		return 0
	}
	return df.Cols[0].Len()
}

// Row returns the idx-th row as a slice of Ele, width == Width().
func (df *DataFrame) Row(idx int) []Ele {
	row := make([]Ele, len(df.Cols))
	for i, c := range df.Cols {
		row[i] = c.Get(idx)
	}
	return row
}

// Rows calls fn for every row in order; fn returning false stops iteration.
func (df *DataFrame) Rows(fn func(row []Ele) bool) {
	for i := 0; i < df.Size(); i++ {
		if !fn(df.Row(i)) {
			return
		}
	}
}

// ColumnIndex returns the index of name, or -1.
func (df *DataFrame) ColumnIndex(name string) int {
	for i, n := range df.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Empty returns a zero-row, zero-column frame — used as the reply for
// operations with no tabular result.
func Empty() *DataFrame {
	return &DataFrame{Names: nil, Cols: nil}
}
