package s4_features

import (
	"sort"

	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/featureconfig"
	"github.com/milestoneml/equityprep/pkg/logger"
)

// Engineer derives the modeling features from a filled checkpoint:
// per-quarter financial ratios, quarter-over-quarter deltas, and a trend
// slope per feature family. All derivations are pure float arithmetic,
// so re-running a stage reproduces its output bit for bit.
type Engineer struct {
	cfg    *featureconfig.Config
	logger *logger.Logger
}

// NewEngineer creates a new Engineer instance.
func NewEngineer(cfg *featureconfig.Config, log *logger.Logger) *Engineer {
	return &Engineer{
		cfg:    cfg,
		logger: log.WithField("module", "engineer"),
	}
}

// frameQuarters returns the distinct reporting quarters present in the
// frame's period columns, ascending.
func frameQuarters(f *dataset.Frame) []dataset.Quarter {
	seen := make(map[dataset.Quarter]bool)
	var quarters []dataset.Quarter
	for _, name := range f.FloatColumns() {
		if dataset.IsQoQColumn(name) {
			continue
		}
		if _, q, ok := dataset.SplitPeriodColumn(name); ok && !seen[q] {
			seen[q] = true
			quarters = append(quarters, q)
		}
	}
	sort.Slice(quarters, func(i, j int) bool { return quarters[i].Before(quarters[j]) })
	return quarters
}
