package dataset

import (
	"fmt"
	"math"
	"sort"
)

// ColumnKind distinguishes numeric from categorical columns.
type ColumnKind int

const (
	KindFloat ColumnKind = iota
	KindString
)

// column holds one named column of uniform kind. Exactly one of the
// value slices is in use, and its length always equals the row count.
type column struct {
	name string
	kind ColumnKind
	vals []float64
	strs []string
}

// Frame is the tabular checkpoint model: rows keyed by unique ticker,
// ordered float64/string columns. Missing numeric values are NaN.
// Frame is not safe for concurrent mutation.
type Frame struct {
	tickers []string
	rowPos  map[string]int
	cols    []*column
	colPos  map[string]int
}

// NaN returns the missing-value marker.
func NaN() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing-value marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// New creates an empty frame.
func New() *Frame {
	return &Frame{
		rowPos: make(map[string]int),
		colPos: make(map[string]int),
	}
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	return len(f.tickers)
}

// NumCols returns the number of columns (the ticker index not included).
func (f *Frame) NumCols() int {
	return len(f.cols)
}

// Tickers returns the row keys in order.
func (f *Frame) Tickers() []string {
	out := make([]string, len(f.tickers))
	copy(out, f.tickers)
	return out
}

// HasRow reports whether a ticker row exists.
func (f *Frame) HasRow(ticker string) bool {
	_, ok := f.rowPos[ticker]
	return ok
}

// AddRow appends a row for ticker, filled with missing values.
func (f *Frame) AddRow(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("empty ticker")
	}
	if _, exists := f.rowPos[ticker]; exists {
		return fmt.Errorf("duplicate ticker: %s", ticker)
	}

	f.rowPos[ticker] = len(f.tickers)
	f.tickers = append(f.tickers, ticker)

	for _, col := range f.cols {
		switch col.kind {
		case KindFloat:
			col.vals = append(col.vals, math.NaN())
		case KindString:
			col.strs = append(col.strs, "")
		}
	}
	return nil
}

// Columns returns all column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.cols))
	for i, col := range f.cols {
		out[i] = col.name
	}
	return out
}

// FloatColumns returns the names of all numeric columns in order.
func (f *Frame) FloatColumns() []string {
	out := make([]string, 0, len(f.cols))
	for _, col := range f.cols {
		if col.kind == KindFloat {
			out = append(out, col.name)
		}
	}
	return out
}

// HasColumn reports whether a column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.colPos[name]
	return ok
}

// Kind returns the kind of a column.
func (f *Frame) Kind(name string) (ColumnKind, bool) {
	pos, ok := f.colPos[name]
	if !ok {
		return 0, false
	}
	return f.cols[pos].kind, true
}

// AddFloatColumn appends a numeric column initialized to NaN.
func (f *Frame) AddFloatColumn(name string) error {
	if err := f.checkNewColumn(name); err != nil {
		return err
	}

	vals := make([]float64, len(f.tickers))
	for i := range vals {
		vals[i] = math.NaN()
	}

	f.colPos[name] = len(f.cols)
	f.cols = append(f.cols, &column{name: name, kind: KindFloat, vals: vals})
	return nil
}

// AddStringColumn appends a categorical column initialized to "".
func (f *Frame) AddStringColumn(name string) error {
	if err := f.checkNewColumn(name); err != nil {
		return err
	}

	f.colPos[name] = len(f.cols)
	f.cols = append(f.cols, &column{
		name: name,
		kind: KindString,
		strs: make([]string, len(f.tickers)),
	})
	return nil
}

func (f *Frame) checkNewColumn(name string) error {
	if name == "" {
		return fmt.Errorf("empty column name")
	}
	if _, exists := f.colPos[name]; exists {
		return fmt.Errorf("duplicate column: %s", name)
	}
	return nil
}

// SetFloat assigns a numeric cell.
func (f *Frame) SetFloat(ticker, name string, v float64) error {
	row, ok := f.rowPos[ticker]
	if !ok {
		return fmt.Errorf("no row for ticker %s", ticker)
	}
	pos, ok := f.colPos[name]
	if !ok {
		return fmt.Errorf("no column %s", name)
	}
	col := f.cols[pos]
	if col.kind != KindFloat {
		return fmt.Errorf("column %s is not numeric", name)
	}
	col.vals[row] = v
	return nil
}

// Float reads a numeric cell. Missing rows, missing columns and
// non-numeric columns all read as NaN, matching the propagation rule
// for missing data.
func (f *Frame) Float(ticker, name string) float64 {
	row, ok := f.rowPos[ticker]
	if !ok {
		return math.NaN()
	}
	pos, ok := f.colPos[name]
	if !ok {
		return math.NaN()
	}
	col := f.cols[pos]
	if col.kind != KindFloat {
		return math.NaN()
	}
	return col.vals[row]
}

// SetString assigns a categorical cell.
func (f *Frame) SetString(ticker, name, v string) error {
	row, ok := f.rowPos[ticker]
	if !ok {
		return fmt.Errorf("no row for ticker %s", ticker)
	}
	pos, ok := f.colPos[name]
	if !ok {
		return fmt.Errorf("no column %s", name)
	}
	col := f.cols[pos]
	if col.kind != KindString {
		return fmt.Errorf("column %s is not categorical", name)
	}
	col.strs[row] = v
	return nil
}

// String reads a categorical cell; missing cells read as "".
func (f *Frame) String(ticker, name string) string {
	row, ok := f.rowPos[ticker]
	if !ok {
		return ""
	}
	pos, ok := f.colPos[name]
	if !ok {
		return ""
	}
	col := f.cols[pos]
	if col.kind != KindString {
		return ""
	}
	return col.strs[row]
}

// FloatCol returns the backing slice of a numeric column, ordered by
// row. The slice is live: writes go straight into the frame.
func (f *Frame) FloatCol(name string) ([]float64, bool) {
	pos, ok := f.colPos[name]
	if !ok || f.cols[pos].kind != KindFloat {
		return nil, false
	}
	return f.cols[pos].vals, true
}

// StringCol returns the backing slice of a categorical column.
func (f *Frame) StringCol(name string) ([]string, bool) {
	pos, ok := f.colPos[name]
	if !ok || f.cols[pos].kind != KindString {
		return nil, false
	}
	return f.cols[pos].strs, true
}

// DropColumns removes the named columns. Unknown names are ignored.
func (f *Frame) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}

	kept := f.cols[:0]
	for _, col := range f.cols {
		if !drop[col.name] {
			kept = append(kept, col)
		}
	}
	f.cols = kept

	f.colPos = make(map[string]int, len(f.cols))
	for i, col := range f.cols {
		f.colPos[col.name] = i
	}
}

// SelectColumns builds a new frame with the same rows and a deep copy
// of the named columns, in the given order.
func (f *Frame) SelectColumns(names []string) (*Frame, error) {
	out := New()
	out.tickers = make([]string, len(f.tickers))
	copy(out.tickers, f.tickers)
	for i, t := range out.tickers {
		out.rowPos[t] = i
	}

	for _, name := range names {
		pos, ok := f.colPos[name]
		if !ok {
			return nil, fmt.Errorf("no column %s", name)
		}
		src := f.cols[pos]

		dst := &column{name: src.name, kind: src.kind}
		switch src.kind {
		case KindFloat:
			dst.vals = make([]float64, len(src.vals))
			copy(dst.vals, src.vals)
		case KindString:
			dst.strs = make([]string, len(src.strs))
			copy(dst.strs, src.strs)
		}

		out.colPos[dst.name] = len(out.cols)
		out.cols = append(out.cols, dst)
	}

	return out, nil
}

// KeepRows drops every row for which keep returns false, preserving
// row order. Returns the number of dropped rows.
func (f *Frame) KeepRows(keep func(ticker string) bool) int {
	keptIdx := make([]int, 0, len(f.tickers))
	for i, t := range f.tickers {
		if keep(t) {
			keptIdx = append(keptIdx, i)
		}
	}

	dropped := len(f.tickers) - len(keptIdx)
	if dropped == 0 {
		return 0
	}

	newTickers := make([]string, len(keptIdx))
	for newRow, oldRow := range keptIdx {
		newTickers[newRow] = f.tickers[oldRow]
	}

	for _, col := range f.cols {
		switch col.kind {
		case KindFloat:
			vals := make([]float64, len(keptIdx))
			for newRow, oldRow := range keptIdx {
				vals[newRow] = col.vals[oldRow]
			}
			col.vals = vals
		case KindString:
			strs := make([]string, len(keptIdx))
			for newRow, oldRow := range keptIdx {
				strs[newRow] = col.strs[oldRow]
			}
			col.strs = strs
		}
	}

	f.tickers = newTickers
	f.rowPos = make(map[string]int, len(newTickers))
	for i, t := range newTickers {
		f.rowPos[t] = i
	}

	return dropped
}

// SortByTicker orders rows lexicographically by ticker, for
// deterministic checkpoint output.
func (f *Frame) SortByTicker() {
	order := make([]int, len(f.tickers))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return f.tickers[order[a]] < f.tickers[order[b]]
	})

	newTickers := make([]string, len(order))
	for newRow, oldRow := range order {
		newTickers[newRow] = f.tickers[oldRow]
	}

	for _, col := range f.cols {
		switch col.kind {
		case KindFloat:
			vals := make([]float64, len(order))
			for newRow, oldRow := range order {
				vals[newRow] = col.vals[oldRow]
			}
			col.vals = vals
		case KindString:
			strs := make([]string, len(order))
			for newRow, oldRow := range order {
				strs[newRow] = col.strs[oldRow]
			}
			col.strs = strs
		}
	}

	f.tickers = newTickers
	f.rowPos = make(map[string]int, len(newTickers))
	for i, t := range newTickers {
		f.rowPos[t] = i
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out, _ := f.SelectColumns(f.Columns())
	return out
}
