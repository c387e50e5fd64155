package s3_impute

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/featureconfig"
	"github.com/milestoneml/equityprep/pkg/logger"
)

// Imputer fills missing float cells from statistics fitted on the
// training partition. Companies of similar size in the same industry
// report similar magnitudes, so fills come from the (Sector, MarketCap)
// group first and the whole column as fallback.
type Imputer struct {
	cfg    *featureconfig.Config
	logger *logger.Logger
}

// NewImputer creates a new Imputer instance.
func NewImputer(cfg *featureconfig.Config, log *logger.Logger) *Imputer {
	return &Imputer{
		cfg:    cfg,
		logger: log.WithField("module", "imputer"),
	}
}

// groupKey identifies one (Sector, MarketCap) group.
type groupKey struct {
	Sector    string
	MarketCap string
}

// cellStat is one fitted fill value and the number of values behind it.
type cellStat struct {
	value float64
	count int
}

// GroupStats holds fill values fitted on the training partition only.
// Applying it never reads the frame being filled beyond group membership.
type GroupStats struct {
	Statistic string
	MinGroup  int

	columns []string
	global  map[string]float64
	groups  map[groupKey]map[string]cellStat
}

// Summary reports one Transform run.
type Summary struct {
	Groups         int
	TrainFilled    int
	TestFilled     int
	ColumnsDropped int // columns with no valid training values
	TrainDropped   int // rows
	TestDropped    int // rows
}

// FitStats computes the per-group and global statistics over the valid
// training values of every float column.
func (im *Imputer) FitStats(train *dataset.Frame) (*GroupStats, error) {
	keys, err := rowGroups(train)
	if err != nil {
		return nil, err
	}

	stats := &GroupStats{
		Statistic: im.cfg.Impute.Statistic,
		MinGroup:  im.cfg.Impute.MinGroup,
		columns:   train.FloatColumns(),
		global:    make(map[string]float64),
		groups:    make(map[groupKey]map[string]cellStat),
	}

	for _, name := range stats.columns {
		col, _ := train.FloatCol(name)

		var global []float64
		grouped := make(map[groupKey][]float64)
		for i, v := range col {
			if math.IsNaN(v) {
				continue
			}
			global = append(global, v)
			grouped[keys[i]] = append(grouped[keys[i]], v)
		}

		stats.global[name] = im.statValue(global)
		for key, vals := range grouped {
			cells := stats.groups[key]
			if cells == nil {
				cells = make(map[string]cellStat)
				stats.groups[key] = cells
			}
			cells[name] = cellStat{value: im.statValue(vals), count: len(vals)}
		}
	}

	return stats, nil
}

// Fill returns the fitted fill value for one cell: the group statistic
// when the group had enough valid training values, the global statistic
// otherwise. ok is false when the column had no valid training values.
func (st *GroupStats) Fill(sector, marketCap, column string) (float64, bool) {
	if cells, ok := st.groups[groupKey{Sector: sector, MarketCap: marketCap}]; ok {
		if cell, ok := cells[column]; ok && cell.count >= st.MinGroup {
			return cell.value, true
		}
	}
	v, ok := st.global[column]
	if !ok || math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

// Apply fills the frame's missing cells in place from the fitted stats
// and returns the number of cells filled. Columns the stats never saw
// are left alone.
func (im *Imputer) Apply(frame *dataset.Frame, stats *GroupStats) (int, error) {
	keys, err := rowGroups(frame)
	if err != nil {
		return 0, err
	}

	filled := 0
	for _, name := range frame.FloatColumns() {
		if _, ok := stats.global[name]; !ok {
			continue
		}
		col, _ := frame.FloatCol(name)
		if !floats.HasNaN(col) {
			continue
		}
		for i, v := range col {
			if !math.IsNaN(v) {
				continue
			}
			if fill, ok := stats.Fill(keys[i].Sector, keys[i].MarketCap, name); ok {
				col[i] = fill
				filled++
			}
		}
	}
	return filled, nil
}

// Transform fits on train and fills both partitions in place, then drops
// what cannot be filled: columns without a single valid training value,
// and any row still carrying a missing cell afterwards. Target frames
// keep the split's tickers; consumers join X and y by ticker.
func (im *Imputer) Transform(train, test *dataset.Frame) (*Summary, error) {
	stats, err := im.FitStats(train)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Groups: len(stats.groups)}
	if summary.TrainFilled, err = im.Apply(train, stats); err != nil {
		return nil, err
	}
	if summary.TestFilled, err = im.Apply(test, stats); err != nil {
		return nil, err
	}

	// An unfillable column would wipe every row in the NaN drop below,
	// so it goes first, from both partitions.
	var empty []string
	for _, name := range stats.columns {
		if math.IsNaN(stats.global[name]) {
			empty = append(empty, name)
		}
	}
	train.DropColumns(empty...)
	test.DropColumns(empty...)
	summary.ColumnsDropped = len(empty)

	summary.TrainDropped = dropMissingRows(train)
	summary.TestDropped = dropMissingRows(test)

	im.logger.WithFields(map[string]interface{}{
		"statistic":       stats.Statistic,
		"groups":          summary.Groups,
		"filled_train":    summary.TrainFilled,
		"filled_test":     summary.TestFilled,
		"columns_dropped": summary.ColumnsDropped,
		"rows_dropped":    summary.TrainDropped + summary.TestDropped,
	}).Info("Imputation completed")

	return summary, nil
}

// statValue computes the configured statistic over valid values.
func (im *Imputer) statValue(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	if im.cfg.Impute.Statistic == "mean" {
		return stat.Mean(xs, nil)
	}
	return median(xs)
}

// median is the midpoint median: the mean of the two middle values for
// even counts, the convention the pandas notebooks downstream expect.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// rowGroups reads each row's (Sector, MarketCap) membership.
func rowGroups(f *dataset.Frame) ([]groupKey, error) {
	sectors, ok := f.StringCol(contracts.ColumnSector)
	if !ok {
		return nil, fmt.Errorf("group column %q missing", contracts.ColumnSector)
	}
	buckets, ok := f.StringCol(contracts.ColumnMarketCap)
	if !ok {
		return nil, fmt.Errorf("group column %q missing", contracts.ColumnMarketCap)
	}

	keys := make([]groupKey, len(sectors))
	for i := range sectors {
		keys[i] = groupKey{Sector: sectors[i], MarketCap: buckets[i]}
	}
	return keys, nil
}

// dropMissingRows removes rows that still carry a missing float cell.
func dropMissingRows(f *dataset.Frame) int {
	names := f.FloatColumns()
	cols := make([][]float64, len(names))
	for i, name := range names {
		cols[i], _ = f.FloatCol(name)
	}

	drop := make(map[string]bool)
	for i, ticker := range f.Tickers() {
		for _, col := range cols {
			if math.IsNaN(col[i]) {
				drop[ticker] = true
				break
			}
		}
	}
	if len(drop) == 0 {
		return 0
	}
	return f.KeepRows(func(ticker string) bool { return !drop[ticker] })
}
