package s2_split

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/featureconfig"
	"github.com/milestoneml/equityprep/pkg/logger"
)

// Splitter partitions the clean checkpoint into stratified train and test
// sets. Strata are market-cap bucket crossed with sector, so both sides
// see the same composition of company sizes and industries.
type Splitter struct {
	cfg    *featureconfig.Config
	logger *logger.Logger
}

// Result holds the four split frames. X and y are aligned by ticker
// within each partition; train and test tickers are disjoint.
type Result struct {
	XTrain *dataset.Frame
	XTest  *dataset.Frame
	YTrain *dataset.Frame
	YTest  *dataset.Frame
}

// Summary reports one split run.
type Summary struct {
	InputRows     int
	TrainRows     int
	TestRows      int
	DroppedSmall  int // rows in strata below the minimum size
	Strata        int
	TargetQuarter string
	TargetColumns int
}

// NewSplitter creates a new Splitter instance.
func NewSplitter(cfg *featureconfig.Config, log *logger.Logger) *Splitter {
	return &Splitter{
		cfg:    cfg,
		logger: log.WithField("module", "splitter"),
	}
}

// Split separates target columns from features and partitions the rows.
// The same config and input always produce the same split: strata are
// visited in sorted order and each stratum is sorted before the seeded
// shuffle, so no map iteration order leaks into the result.
func (s *Splitter) Split(frame *dataset.Frame) (*Result, *Summary, error) {
	target, err := s.targetQuarter(frame)
	if err != nil {
		return nil, nil, err
	}

	var xCols, yCols []string
	for _, name := range frame.Columns() {
		if kind, _ := frame.Kind(name); kind == dataset.KindFloat {
			if _, q, ok := dataset.SplitPeriodColumn(name); ok && q == target {
				yCols = append(yCols, name)
				continue
			}
		}
		xCols = append(xCols, name)
	}
	if len(yCols) == 0 {
		return nil, nil, fmt.Errorf("no %s columns to use as targets", target.Label())
	}

	for _, col := range []string{contracts.ColumnMarketCap, contracts.ColumnSector} {
		if _, ok := frame.StringCol(col); !ok {
			return nil, nil, fmt.Errorf("stratum column %q missing", col)
		}
	}

	groups := make(map[string][]string)
	for _, ticker := range frame.Tickers() {
		label := frame.String(ticker, contracts.ColumnMarketCap) + "_" + frame.String(ticker, contracts.ColumnSector)
		groups[label] = append(groups[label], ticker)
	}

	labels := make([]string, 0, len(groups))
	droppedSmall := 0
	for label, tickers := range groups {
		if len(tickers) < s.cfg.Split.MinStratum {
			droppedSmall += len(tickers)
			s.logger.WithFields(map[string]interface{}{
				"stratum": label,
				"rows":    len(tickers),
			}).Debug("Dropping small stratum")
			continue
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(s.cfg.Split.Seed))
	train := make(map[string]bool)
	test := make(map[string]bool)
	for _, label := range labels {
		tickers := append([]string(nil), groups[label]...)
		sort.Strings(tickers)
		rng.Shuffle(len(tickers), func(i, j int) {
			tickers[i], tickers[j] = tickers[j], tickers[i]
		})

		// Every stratum keeps at least one training row.
		n := len(tickers)
		nTest := int(math.Round(s.cfg.Split.TestSize * float64(n)))
		if nTest > n-1 {
			nTest = n - 1
		}
		if nTest < 0 {
			nTest = 0
		}
		for i, ticker := range tickers {
			if i < nTest {
				test[ticker] = true
			} else {
				train[ticker] = true
			}
		}
	}

	result := &Result{}
	if result.XTrain, err = subset(frame, xCols, train); err != nil {
		return nil, nil, err
	}
	if result.XTest, err = subset(frame, xCols, test); err != nil {
		return nil, nil, err
	}
	if result.YTrain, err = subset(frame, yCols, train); err != nil {
		return nil, nil, err
	}
	if result.YTest, err = subset(frame, yCols, test); err != nil {
		return nil, nil, err
	}

	summary := &Summary{
		InputRows:     frame.NumRows(),
		TrainRows:     result.XTrain.NumRows(),
		TestRows:      result.XTest.NumRows(),
		DroppedSmall:  droppedSmall,
		Strata:        len(labels),
		TargetQuarter: target.Label(),
		TargetColumns: len(yCols),
	}
	s.logger.WithFields(map[string]interface{}{
		"target":        summary.TargetQuarter,
		"targets":       summary.TargetColumns,
		"strata":        summary.Strata,
		"dropped_small": summary.DroppedSmall,
		"train":         summary.TrainRows,
		"test":          summary.TestRows,
	}).Info("Split completed")

	return result, summary, nil
}

// targetQuarter resolves the configured target. "auto" picks the newest
// quarter present in the frame's period columns, which is the window end
// for a freshly built checkpoint and stays stable for archived ones.
func (s *Splitter) targetQuarter(f *dataset.Frame) (dataset.Quarter, error) {
	label := s.cfg.Split.TargetQuarter
	if label != "" && label != "auto" {
		return dataset.ParseQuarter(label)
	}

	var newest dataset.Quarter
	found := false
	for _, name := range f.FloatColumns() {
		if _, q, ok := dataset.SplitPeriodColumn(name); ok {
			if !found || newest.Before(q) {
				newest = q
				found = true
			}
		}
	}
	if !found {
		return dataset.Quarter{}, fmt.Errorf("no period columns to derive the target quarter from")
	}
	return newest, nil
}

// subset copies the given columns for the kept tickers, preserving the
// input frame's row and column order.
func subset(f *dataset.Frame, cols []string, keep map[string]bool) (*dataset.Frame, error) {
	out, err := f.SelectColumns(cols)
	if err != nil {
		return nil, err
	}
	out.KeepRows(func(ticker string) bool { return keep[ticker] })
	return out, nil
}
