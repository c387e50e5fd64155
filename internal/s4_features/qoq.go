package s4_features

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/milestoneml/equityprep/internal/dataset"
)

// QoQSummary reports one delta/slope derivation run.
type QoQSummary struct {
	Families        int
	SkippedFamilies int // families with a single quarter
	DeltaColumns    int
	RateColumns     int
}

// DeriveQoQ discovers the feature families among the frame's period
// columns and adds, per family, one `<Base>_QoQ_<Quarter>` delta column
// per consecutive quarter pair and one `<Base>_Rate` slope column.
// Families appear in first-appearance column order; macro and KPI
// families join in when configured.
func (e *Engineer) DeriveQoQ(frame *dataset.Frame) (*QoQSummary, error) {
	macro := make(map[string]bool, len(e.cfg.Macro))
	for _, name := range e.cfg.MacroNames() {
		macro[name] = true
	}

	var order []string
	families := make(map[string][]dataset.Quarter)
	for _, name := range frame.FloatColumns() {
		if dataset.IsQoQColumn(name) {
			continue
		}
		base, q, ok := dataset.SplitPeriodColumn(name)
		if !ok {
			continue
		}
		if !e.cfg.QoQ.IncludeKPIs && dataset.IsKPIColumn(name) {
			continue
		}
		if !e.cfg.QoQ.IncludeMacro && macro[base] {
			continue
		}
		if _, seen := families[base]; !seen {
			order = append(order, base)
		}
		families[base] = append(families[base], q)
	}

	summary := &QoQSummary{}
	for _, base := range order {
		quarters := families[base]
		sort.Slice(quarters, func(i, j int) bool { return quarters[i].Before(quarters[j]) })
		if len(quarters) < 2 {
			summary.SkippedFamilies++
			continue
		}
		if err := e.deriveFamily(frame, base, quarters, summary); err != nil {
			return nil, err
		}
		summary.Families++
	}

	e.logger.WithFields(map[string]interface{}{
		"families": summary.Families,
		"skipped":  summary.SkippedFamilies,
		"deltas":   summary.DeltaColumns,
		"rates":    summary.RateColumns,
	}).Info("QoQ derivation completed")

	return summary, nil
}

// deriveFamily fills the delta and slope columns for one feature family.
func (e *Engineer) deriveFamily(frame *dataset.Frame, base string, quarters []dataset.Quarter, summary *QoQSummary) error {
	src := make([][]float64, len(quarters))
	for j, q := range quarters {
		col, ok := frame.FloatCol(dataset.PeriodColumn(base, q))
		if !ok {
			return fmt.Errorf("family column %s_%s missing", base, q.Label())
		}
		src[j] = col
	}

	deltaCols := make([][]float64, len(quarters)-1)
	for k := 1; k < len(quarters); k++ {
		name := dataset.QoQColumn(base, quarters[k])
		if err := frame.AddFloatColumn(name); err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		deltaCols[k-1], _ = frame.FloatCol(name)
		summary.DeltaColumns++
	}

	rateName := dataset.RateColumn(base)
	if err := frame.AddFloatColumn(rateName); err != nil {
		return fmt.Errorf("add %s: %w", rateName, err)
	}
	rateCol, _ := frame.FloatCol(rateName)
	summary.RateColumns++

	series := make([]float64, len(quarters))
	for i := 0; i < frame.NumRows(); i++ {
		for j := range src {
			series[j] = src[j][i]
		}
		for k, d := range Deltas(series) {
			deltaCols[k][i] = d
		}
		rateCol[i] = Rate(quarters, series)
	}
	return nil
}

// Deltas returns the consecutive differences of a series. A delta is NaN
// unless both endpoints are finite.
func Deltas(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev, cur := values[i-1], values[i]
		if !isFinite(prev) || !isFinite(cur) {
			out[i-1] = math.NaN()
			continue
		}
		out[i-1] = cur - prev
	}
	return out
}

// Rate returns the least-squares slope of a series against its quarters'
// absolute indices. Missing values and calendar gaps keep their x
// position rather than compacting the axis. A flat series is exactly
// zero; fewer than two finite points is NaN.
func Rate(quarters []dataset.Quarter, values []float64) float64 {
	var xs, ys []float64
	for i, v := range values {
		if isFinite(v) {
			xs = append(xs, float64(quarters[i].Index()))
			ys = append(ys, v)
		}
	}
	if len(ys) < 2 {
		return math.NaN()
	}

	flat := true
	for _, v := range ys[1:] {
		if v != ys[0] {
			flat = false
			break
		}
	}
	if flat {
		return 0
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
