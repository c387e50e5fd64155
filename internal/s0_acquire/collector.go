package s0_acquire

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/external/ishares"
	"github.com/milestoneml/equityprep/internal/external/yahoo"
	"github.com/milestoneml/equityprep/internal/featureconfig"
	"github.com/milestoneml/equityprep/pkg/logger"
)

// FundamentalsClient is the vendor surface the collector needs.
type FundamentalsClient interface {
	FetchQuarterly(ctx context.Context, symbol string) (*yahoo.QuarterlyStatements, error)
}

// Collector orchestrates fundamentals collection over the universe.
type Collector struct {
	fundamentals FundamentalsClient
	cfg          *featureconfig.Config
	logger       *logger.Logger
}

// Config holds collector run options.
type Config struct {
	Workers int // number of concurrent fetch workers
	Limit   int // fetch at most this many tickers, 0 = whole universe
}

// NewCollector creates a new Collector instance.
func NewCollector(fundamentals FundamentalsClient, cfg *featureconfig.Config, log *logger.Logger) *Collector {
	return &Collector{
		fundamentals: fundamentals,
		cfg:          cfg,
		logger:       log.WithField("module", "collector"),
	}
}

// FetchResult represents the result of one ticker's fetch.
type FetchResult struct {
	Ticker string
	Symbol string
	Cells  map[string]float64
	Err    error
}

// Summary reports one collection run.
type Summary struct {
	Total      int // tickers sent to workers
	Fetched    int // rows in the output frame
	Failed     int // request or resolution errors
	Empty      int // fetched fine but zero cells in the window
	Duplicates int // repeat universe entries skipped up front
	Elapsed    time.Duration
}

// Run fetches quarterly fundamentals for every universe ticker and
// assembles the checkpoint frame: static descriptors plus one float
// column per line item and window quarter. Tickers that fail or resolve
// nothing are dropped and counted.
func (c *Collector) Run(ctx context.Context, universe []ishares.Holding, opts Config) (*dataset.Frame, *Summary, error) {
	window, err := c.cfg.Window.Resolve(time.Now())
	if err != nil {
		return nil, nil, fmt.Errorf("resolve window: %w", err)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	// Frame rows are keyed by ticker, so repeat universe entries are
	// skipped here rather than dropped later.
	seen := make(map[string]bool, len(universe))
	holdings := make([]ishares.Holding, 0, len(universe))
	duplicates := 0
	for _, h := range universe {
		if seen[h.Ticker] {
			duplicates++
			continue
		}
		seen[h.Ticker] = true
		holdings = append(holdings, h)
	}
	if opts.Limit > 0 && len(holdings) > opts.Limit {
		holdings = holdings[:opts.Limit]
	}

	c.logger.WithFields(map[string]interface{}{
		"tickers":  len(holdings),
		"workers":  workers,
		"quarters": len(window),
		"window":   fmt.Sprintf("%s..%s", window[0].Label(), window[len(window)-1].Label()),
	}).Info("Starting fundamentals collection")

	start := time.Now()

	resultCh := make(chan FetchResult, len(holdings))
	tickerCh := make(chan ishares.Holding, len(holdings))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.worker(ctx, workerID, tickerCh, resultCh, window)
		}(i)
	}

	for _, h := range holdings {
		tickerCh <- h
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	summary := &Summary{Total: len(holdings), Duplicates: duplicates}
	results := make(map[string]FetchResult, len(holdings))
	for result := range resultCh {
		results[result.Ticker] = result
		switch {
		case result.Err != nil:
			summary.Failed++
		case len(result.Cells) == 0:
			summary.Empty++
		default:
			summary.Fetched++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	frame, err := c.buildFrame(holdings, results, window)
	if err != nil {
		return nil, nil, err
	}

	summary.Elapsed = time.Since(start)
	c.logger.WithFields(map[string]interface{}{
		"fetched": summary.Fetched,
		"failed":  summary.Failed,
		"empty":   summary.Empty,
		"elapsed": summary.Elapsed.Round(time.Second).String(),
	}).Info("Fundamentals collection completed")

	return frame, summary, nil
}

// worker fetches and resolves fundamentals for tickers from the channel.
func (c *Collector) worker(ctx context.Context, workerID int, in <-chan ishares.Holding, out chan<- FetchResult, window []dataset.Quarter) {
	for h := range in {
		select {
		case <-ctx.Done():
			out <- FetchResult{Ticker: h.Ticker, Err: ctx.Err()}
			return
		default:
		}

		symbol := yahoo.NormalizeSymbol(h.Ticker)
		stmts, err := c.fundamentals.FetchQuarterly(ctx, symbol)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": h.Ticker,
			}).Error("Failed to fetch fundamentals")
			out <- FetchResult{Ticker: h.Ticker, Symbol: symbol, Err: err}
			continue
		}

		cells := yahoo.ItemsForQuarters(stmts, c.cfg.LineItems, c.cfg.Derived, window)

		c.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"ticker": h.Ticker,
			"cells":  len(cells),
		}).Debug("Fetched fundamentals")

		out <- FetchResult{Ticker: h.Ticker, Symbol: symbol, Cells: cells}
	}
}

// buildFrame assembles the checkpoint in universe order. Only tickers
// with at least one resolved cell become rows.
func (c *Collector) buildFrame(holdings []ishares.Holding, results map[string]FetchResult, window []dataset.Quarter) (*dataset.Frame, error) {
	frame := dataset.New()

	for _, name := range contracts.StaticColumns {
		if err := frame.AddStringColumn(name); err != nil {
			return nil, err
		}
	}
	if err := frame.AddFloatColumn(contracts.ColumnMarketValue); err != nil {
		return nil, err
	}
	for _, item := range c.cfg.LineItems {
		for _, q := range window {
			if err := frame.AddFloatColumn(dataset.PeriodColumn(item.Name, q)); err != nil {
				return nil, err
			}
		}
	}

	for _, h := range holdings {
		result, ok := results[h.Ticker]
		if !ok || result.Err != nil || len(result.Cells) == 0 {
			continue
		}

		if err := frame.AddRow(h.Ticker); err != nil {
			return nil, err
		}
		statics := map[string]string{
			contracts.ColumnName:        h.Name,
			contracts.ColumnSector:      h.Sector,
			contracts.ColumnAssetClass:  h.AssetClass,
			contracts.ColumnExchange:    h.Exchange,
			contracts.ColumnCurrency:    h.Currency,
			contracts.ColumnYahooSymbol: result.Symbol,
		}
		for col, v := range statics {
			if err := frame.SetString(h.Ticker, col, v); err != nil {
				return nil, err
			}
		}
		if err := frame.SetFloat(h.Ticker, contracts.ColumnMarketValue, h.MarketValue); err != nil {
			return nil, err
		}
		for col, v := range result.Cells {
			if err := frame.SetFloat(h.Ticker, col, v); err != nil {
				return nil, err
			}
		}
	}

	return frame, nil
}
