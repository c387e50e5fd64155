package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// tickerHeader is the first header cell of every checkpoint file.
const tickerHeader = "Ticker"

// WriteCSV writes the frame as a checkpoint file. Floats are encoded
// with strconv 'g'/-1 so that re-reading yields bit-identical values;
// NaN cells are written empty.
func WriteCSV(path string, f *Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create checkpoint %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	header := append([]string{tickerHeader}, f.Columns()...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for _, ticker := range f.tickers {
		record[0] = ticker
		row := f.rowPos[ticker]
		for i, col := range f.cols {
			switch col.kind {
			case KindFloat:
				record[i+1] = formatFloat(col.vals[row])
			case KindString:
				record[i+1] = col.strs[row]
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", ticker, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	return nil
}

// ReadCSV loads a checkpoint file. Column kinds are inferred: a column
// is numeric when every non-empty cell parses as a float (empty, NaN
// and NA cells count as missing). All-empty columns load as numeric
// all-NaN, which the imputation stage then drops.
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("empty checkpoint %s", path)
	}

	header := records[0]
	if len(header) == 0 {
		return nil, fmt.Errorf("%s: empty header", path)
	}
	if header[0] != tickerHeader {
		return nil, fmt.Errorf("%s: first column must be %s, got %q", path, tickerHeader, header[0])
	}

	rows := records[1:]
	f := New()
	for _, rec := range rows {
		if err := f.AddRow(rec[0]); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	for c := 1; c < len(header); c++ {
		name := header[c]

		if columnIsNumeric(rows, c) {
			if err := f.AddFloatColumn(name); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			vals, _ := f.FloatCol(name)
			for i, rec := range rows {
				vals[i] = parseFloatCell(rec[c])
			}
		} else {
			if err := f.AddStringColumn(name); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			strs, _ := f.StringCol(name)
			for i, rec := range rows {
				strs[i] = rec[c]
			}
		}
	}

	return f, nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isMissingCell(cell string) bool {
	return cell == "" || cell == "NaN" || cell == "nan" || cell == "NA"
}

func columnIsNumeric(rows [][]string, c int) bool {
	for _, rec := range rows {
		cell := rec[c]
		if isMissingCell(cell) {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
	}
	return true
}

func parseFloatCell(cell string) float64 {
	if isMissingCell(cell) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
