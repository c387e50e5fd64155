package s0_acquire

import (
	"context"
	"fmt"
	"time"

	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/external/fred"
	"github.com/milestoneml/equityprep/internal/featureconfig"
	"github.com/milestoneml/equityprep/pkg/logger"
)

// MacroClient is the statistics API surface the macro join needs.
type MacroClient interface {
	Observations(ctx context.Context, series string, start, end time.Time) ([]fred.Observation, error)
}

// MergeMacro fetches each configured macro series, collapses it to
// quarterly means over the window, and broadcasts the per-quarter value
// onto every row as a <Name>_<Quarter> column. Quarters without
// observations stay NaN and surface during imputation.
func MergeMacro(ctx context.Context, frame *dataset.Frame, cfg *featureconfig.Config, client MacroClient, log *logger.Logger) error {
	window, err := cfg.Window.Resolve(time.Now())
	if err != nil {
		return fmt.Errorf("resolve window: %w", err)
	}
	start := window[0].StartDate()
	end := window[len(window)-1].EndDate()

	for _, series := range cfg.Macro {
		obs, err := client.Observations(ctx, series.Series, start, end)
		if err != nil {
			return fmt.Errorf("fetch %s (%s): %w", series.Name, series.Series, err)
		}
		means := fred.QuarterlyMeans(obs, window)

		for _, q := range window {
			col := dataset.PeriodColumn(series.Name, q)
			if err := frame.AddFloatColumn(col); err != nil {
				return err
			}

			value, ok := means[q]
			if !ok {
				log.WithFields(map[string]interface{}{
					"series":  series.Series,
					"quarter": q.Label(),
				}).Warn("No observations for quarter")
				continue
			}

			vals, _ := frame.FloatCol(col)
			for i := range vals {
				vals[i] = value
			}
		}

		log.WithFields(map[string]interface{}{
			"name":   series.Name,
			"series": series.Series,
			"count":  len(obs),
		}).Info("Merged macro series")
	}

	return nil
}
