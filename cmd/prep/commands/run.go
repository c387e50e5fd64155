package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all seven stages in order",
	Long: `Run fetch, macro, clean, split, impute, kpi and qoq back to back.

Each stage writes its checkpoint before the next one starts, so an
interrupted run can be resumed with the individual stage commands.

Example:
  go run ./cmd/prep run
  go run ./cmd/prep run --workers 8 --limit 50`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Same flag variables as fetch, so run forwards them.
	runCmd.Flags().IntVar(&fetchWorkers, "workers", 1, "concurrent statement fetchers (the rate limiter still paces the wire)")
	runCmd.Flags().IntVar(&fetchLimit, "limit", 0, "fetch at most N tickers (0 = whole universe)")
	runCmd.Flags().StringVar(&fetchUniverseFile, "universe-file", "", "holdings workbook to parse instead of downloading")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Full Pipeline ===")
	start := time.Now()

	stages := []struct {
		name string
		run  func(*cobra.Command, []string) error
	}{
		{"fetch", runFetch},
		{"macro", runMacro},
		{"clean", runClean},
		{"split", runSplit},
		{"impute", runImpute},
		{"kpi", runKPI},
		{"qoq", runQoQ},
	}

	for _, stage := range stages {
		fmt.Println()
		PrintDoubleSeparator()
		if err := stage.run(cmd, args); err != nil {
			return fmt.Errorf("stage %s: %w", stage.name, err)
		}
	}

	fmt.Println()
	PrintDoubleSeparator()
	PrintSuccess(fmt.Sprintf("Pipeline completed in %s", time.Since(start).Round(time.Second)))
	return nil
}
