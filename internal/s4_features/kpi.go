package s4_features

import (
	"fmt"
	"math"

	"github.com/milestoneml/equityprep/internal/dataset"
)

// KPISummary reports one ratio derivation run.
type KPISummary struct {
	Quarters int
	Columns  int
	Skipped  int // kpi x quarter pairs missing an input column
}

// DeriveKPIs adds one `KPI_<Name>_<Quarter>` column per configured ratio
// and frame quarter. A cell is NaN when any input is NaN or the
// denominator is zero; ratios never go to ±Inf. Ratio/quarter pairs whose
// input columns are absent are skipped and counted.
func (e *Engineer) DeriveKPIs(frame *dataset.Frame) (*KPISummary, error) {
	quarters := frameQuarters(frame)
	summary := &KPISummary{Quarters: len(quarters)}

	for _, kpi := range e.cfg.KPIs {
		for _, q := range quarters {
			num, okN := frame.FloatCol(dataset.PeriodColumn(kpi.Numerator, q))
			den, okD := frame.FloatCol(dataset.PeriodColumn(kpi.Denominator, q))

			var sub []float64
			okS := true
			if kpi.Subtract != "" {
				sub, okS = frame.FloatCol(dataset.PeriodColumn(kpi.Subtract, q))
			}
			if !okN || !okD || !okS {
				summary.Skipped++
				continue
			}

			name := dataset.KPIColumn(kpi.Name, q)
			if err := frame.AddFloatColumn(name); err != nil {
				return nil, fmt.Errorf("add %s: %w", name, err)
			}
			out, _ := frame.FloatCol(name)
			for i := range out {
				out[i] = ratio(num[i], subtrahend(sub, i), den[i])
			}
			summary.Columns++
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"kpis":     len(e.cfg.KPIs),
		"quarters": summary.Quarters,
		"columns":  summary.Columns,
		"skipped":  summary.Skipped,
	}).Info("KPI derivation completed")

	return summary, nil
}

// ratio computes (num - sub) / den with NaN on any missing input or a
// zero denominator.
func ratio(num, sub, den float64) float64 {
	if math.IsNaN(num) || math.IsNaN(sub) || math.IsNaN(den) || den == 0 {
		return math.NaN()
	}
	return (num - sub) / den
}

// subtrahend reads the optional subtract column, zero when unconfigured.
func subtrahend(sub []float64, i int) float64 {
	if sub == nil {
		return 0
	}
	return sub[i]
}
