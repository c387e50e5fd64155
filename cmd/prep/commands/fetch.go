package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/external/ishares"
	"github.com/milestoneml/equityprep/internal/external/yahoo"
	"github.com/milestoneml/equityprep/internal/s0_acquire"
	"github.com/milestoneml/equityprep/pkg/config"
	"github.com/milestoneml/equityprep/pkg/httputil"
	"github.com/milestoneml/equityprep/pkg/logger"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the index universe and quarterly fundamentals",
	Long: `Download the current index holdings, then fetch quarterly financial
statements for every ticker from the quote API.

Writes universe.csv and fundamentals.csv.

Example:
  go run ./cmd/prep fetch
  go run ./cmd/prep fetch --workers 8 --limit 50
  go run ./cmd/prep fetch --universe-file holdings.xlsx`,
	RunE: runFetch,
}

var (
	// Fetch flags
	fetchWorkers      int
	fetchLimit        int
	fetchUniverseFile string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 1, "concurrent statement fetchers (the rate limiter still paces the wire)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "fetch at most N tickers (0 = whole universe)")
	fetchCmd.Flags().StringVar(&fetchUniverseFile, "universe-file", "", "holdings workbook to parse instead of downloading")
}

func runFetch(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stage 1: Fetch ===")

	cfg, featcfg, log, err := initDeps()
	if err != nil {
		return err
	}
	logRunSnapshot(log, featcfg, "fetch")

	holdings, err := loadUniverse(cmd, cfg, log)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}
	fmt.Printf("📋 Universe: %d holdings\n\n", len(holdings))

	universe, err := s0_acquire.UniverseFrame(holdings)
	if err != nil {
		return fmt.Errorf("build universe frame: %w", err)
	}
	if err := saveCheckpoint(cfg, contracts.CheckpointUniverse, universe); err != nil {
		return err
	}

	// One client per vendor keeps the request pacing honest.
	yahooHTTP := httputil.New(cfg, log).WithHeader("User-Agent", cfg.Yahoo.UserAgent)
	client := yahoo.NewClient(yahooHTTP, log, cfg.Yahoo.BaseURL)

	collector := s0_acquire.NewCollector(client, featcfg, log)
	frame, summary, err := collector.Run(cmd.Context(), holdings, s0_acquire.Config{
		Workers: fetchWorkers,
		Limit:   fetchLimit,
	})
	if err != nil {
		return fmt.Errorf("collect fundamentals: %w", err)
	}
	if err := saveCheckpoint(cfg, contracts.CheckpointFundamentals, frame); err != nil {
		return err
	}

	fmt.Println()
	PrintKeyValue("Tickers", fmt.Sprintf("%d", summary.Total), 10)
	PrintKeyValue("Fetched", fmt.Sprintf("%d", summary.Fetched), 10)
	PrintKeyValue("Failed", fmt.Sprintf("%d", summary.Failed), 10)
	PrintKeyValue("Empty", fmt.Sprintf("%d", summary.Empty), 10)
	PrintKeyValue("Duplicates", fmt.Sprintf("%d", summary.Duplicates), 10)
	PrintKeyValue("Elapsed", summary.Elapsed.Round(time.Second).String(), 10)
	fmt.Println()

	if summary.Failed > 0 {
		PrintWarning(fmt.Sprintf("%d tickers failed and are absent from the checkpoint", summary.Failed))
	}
	PrintSuccess("Fetch completed")
	return nil
}

// loadUniverse parses a local holdings workbook when --universe-file is set,
// otherwise downloads the current holdings.
func loadUniverse(cmd *cobra.Command, cfg *config.Config, log *logger.Logger) ([]ishares.Holding, error) {
	if fetchUniverseFile != "" {
		fmt.Printf("📄 Parsing holdings from %s\n", fetchUniverseFile)
		return ishares.ParseHoldings(fetchUniverseFile)
	}

	fmt.Println("🌐 Downloading index holdings")
	httpClient := httputil.New(cfg, log).WithHeader("User-Agent", cfg.Yahoo.UserAgent)
	return ishares.NewClient(httpClient, log, cfg.IShares.ProductURL).Fetch(cmd.Context())
}
