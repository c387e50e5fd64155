package s1_clean

import (
	"fmt"
	"sort"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/featureconfig"
	"github.com/milestoneml/equityprep/pkg/logger"
)

// Exclusion reasons recorded in Summary.Excluded.
const (
	ReasonAssetClass = "asset_class"
	ReasonExchange   = "exchange"
	ReasonZeroItem   = "zero_required_item"
)

// Cleaner filters the merged checkpoint down to the modeling table:
// row filters, column drops, market-cap bucketing, one-hot encoding.
type Cleaner struct {
	cfg    *featureconfig.Config
	logger *logger.Logger
}

// Summary reports what each cleaning rule removed or added.
type Summary struct {
	InputRows      int
	OutputRows     int
	Excluded       map[string]int // exclusion reason -> rows dropped
	ColumnsDropped int
	Unbucketed     int            // rows whose market value lands in no bucket
	EncodedColumns int            // indicator columns added
}

// NewCleaner creates a new Cleaner instance.
func NewCleaner(cfg *featureconfig.Config, log *logger.Logger) *Cleaner {
	return &Cleaner{
		cfg:    cfg,
		logger: log.WithField("module", "cleaner"),
	}
}

// Clean applies the cleaning rules in order. The input frame is not
// modified; filters run before encoding so indicator values reflect only
// surviving rows.
func (c *Cleaner) Clean(frame *dataset.Frame) (*dataset.Frame, *Summary, error) {
	out := frame.Clone()
	summary := &Summary{
		InputRows: out.NumRows(),
		Excluded:  make(map[string]int),
	}

	required := c.requiredColumns(out)

	out.KeepRows(func(ticker string) bool {
		reason := c.checkExclusion(out, ticker, required)
		if reason != "" {
			summary.Excluded[reason]++
			return false
		}
		return true
	})

	summary.ColumnsDropped = c.dropColumns(out)

	if err := c.bucketMarketCap(out, summary); err != nil {
		return nil, nil, err
	}

	added, err := c.encodeOneHot(out)
	if err != nil {
		return nil, nil, err
	}
	summary.EncodedColumns = added

	summary.OutputRows = out.NumRows()
	c.logger.WithFields(map[string]interface{}{
		"rows_in":         summary.InputRows,
		"rows_out":        summary.OutputRows,
		"excluded":        summary.Excluded,
		"columns_dropped": summary.ColumnsDropped,
		"unbucketed":      summary.Unbucketed,
		"encoded":         summary.EncodedColumns,
	}).Info("Cleaning completed")

	return out, summary, nil
}

// requiredColumns maps each required item to its period columns present in
// the frame. Deriving the quarters from the frame keeps re-runs of this
// stage independent of the clock.
func (c *Cleaner) requiredColumns(f *dataset.Frame) map[string][]string {
	required := make(map[string]bool, len(c.cfg.Clean.RequiredNonzero))
	for _, item := range c.cfg.Clean.RequiredNonzero {
		required[item] = true
	}

	cols := make(map[string][]string)
	for _, name := range f.FloatColumns() {
		base, _, ok := dataset.SplitPeriodColumn(name)
		if ok && required[base] {
			cols[base] = append(cols[base], name)
		}
	}
	return cols
}

// checkExclusion checks if a row should be excluded and returns the reason.
func (c *Cleaner) checkExclusion(f *dataset.Frame, ticker string, required map[string][]string) string {
	if len(c.cfg.Universe.AssetClasses) > 0 &&
		!contains(c.cfg.Universe.AssetClasses, f.String(ticker, contracts.ColumnAssetClass)) {
		return ReasonAssetClass
	}

	if len(c.cfg.Universe.Exchanges) > 0 &&
		!contains(c.cfg.Universe.Exchanges, f.String(ticker, contracts.ColumnExchange)) {
		return ReasonExchange
	}

	// A literal zero in a required item in any window quarter marks the
	// whole row as unusable vendor output. Missing values pass; imputation
	// handles those.
	for _, item := range c.cfg.Clean.RequiredNonzero {
		for _, col := range required[item] {
			if f.Float(ticker, col) == 0 {
				c.logger.WithFields(map[string]interface{}{
					"ticker": ticker,
					"column": col,
				}).Debug("Dropping row with zero required item")
				return ReasonZeroItem
			}
		}
	}

	return ""
}

// dropColumns removes the configured metadata columns and every period
// column of a dropped item prefix. Returns the number of columns removed.
func (c *Cleaner) dropColumns(f *dataset.Frame) int {
	drop := make([]string, 0, len(c.cfg.Clean.DropColumns))
	for _, name := range c.cfg.Clean.DropColumns {
		if f.HasColumn(name) {
			drop = append(drop, name)
		}
	}

	if len(c.cfg.Clean.DropItemPrefixes) > 0 {
		prefixes := make(map[string]bool, len(c.cfg.Clean.DropItemPrefixes))
		for _, p := range c.cfg.Clean.DropItemPrefixes {
			prefixes[p] = true
		}
		for _, name := range f.FloatColumns() {
			base, _, ok := dataset.SplitPeriodColumn(name)
			if ok && prefixes[base] {
				drop = append(drop, name)
			}
		}
	}

	f.DropColumns(drop...)
	return len(drop)
}

// bucketMarketCap derives the market-cap label column from the source
// value. Values below the first bin edge (or missing) stay unlabeled and
// are counted; the split stage drops them with the small strata.
func (c *Cleaner) bucketMarketCap(f *dataset.Frame, summary *Summary) error {
	source := c.cfg.MarketCap.Source
	if _, ok := f.FloatCol(source); !ok {
		return fmt.Errorf("market-cap source column %q missing", source)
	}

	if err := f.AddStringColumn(contracts.ColumnMarketCap); err != nil {
		return fmt.Errorf("add market-cap column: %w", err)
	}

	for _, ticker := range f.Tickers() {
		label := c.bucketLabel(f.Float(ticker, source))
		if label == "" {
			summary.Unbucketed++
		}
		if err := f.SetString(ticker, contracts.ColumnMarketCap, label); err != nil {
			return err
		}
	}
	return nil
}

// bucketLabel returns the label of the last bin edge at or below v.
// A missing market value gets no label; a NaN comparison would skip
// every break and land on the top bin.
func (c *Cleaner) bucketLabel(v float64) string {
	if dataset.IsMissing(v) {
		return ""
	}
	label := ""
	for i, edge := range c.cfg.MarketCap.Bins {
		if v < edge {
			break
		}
		label = c.cfg.MarketCap.Labels[i]
	}
	return label
}

// encodeOneHot adds a 0/1 indicator column per distinct value of each
// configured categorical. Source columns stay; the split and impute stages
// group on them. Returns the number of columns added.
func (c *Cleaner) encodeOneHot(f *dataset.Frame) (int, error) {
	added := 0
	for _, source := range c.cfg.Clean.OneHot {
		col, ok := f.StringCol(source)
		if !ok {
			return added, fmt.Errorf("one-hot source %q is not a string column", source)
		}

		for _, value := range distinct(col) {
			name := source + "_" + value
			if err := f.AddFloatColumn(name); err != nil {
				return added, fmt.Errorf("encode %s: %w", source, err)
			}
			indicator, _ := f.FloatCol(name)
			for i, s := range col {
				if s == value {
					indicator[i] = 1
				} else {
					indicator[i] = 0
				}
			}
			added++
		}
	}
	return added, nil
}

// distinct returns the sorted distinct non-empty values of a column.
// Empty strings get no indicator, like unbucketed market caps.
func distinct(col []string) []string {
	seen := make(map[string]bool, len(col))
	for _, v := range col {
		if v != "" {
			seen[v] = true
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
