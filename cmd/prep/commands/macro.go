package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/external/fred"
	"github.com/milestoneml/equityprep/internal/s0_acquire"
	"github.com/milestoneml/equityprep/pkg/httputil"
)

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Join macroeconomic series onto the fundamentals",
	Long: `Fetch the configured macroeconomic series, average them per quarter
and join the quarterly values onto every ticker row.

Reads fundamentals.csv, writes merged.csv. Requires FRED_API_KEY.

Example:
  go run ./cmd/prep macro
  go run ./cmd/prep macro --env-file prod.env`,
	RunE: runMacro,
}

func init() {
	rootCmd.AddCommand(macroCmd)
}

func runMacro(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stage 2: Macro ===")

	cfg, featcfg, log, err := initDeps()
	if err != nil {
		return err
	}
	logRunSnapshot(log, featcfg, "macro")

	if cfg.Fred.APIKey == "" {
		return fmt.Errorf("FRED_API_KEY is not set: export it or put it in an env file")
	}

	frame, err := loadCheckpoint(cfg, contracts.CheckpointFundamentals)
	if err != nil {
		return err
	}

	client := fred.NewClient(httputil.New(cfg, log), log, cfg.Fred.BaseURL, cfg.Fred.APIKey)
	if err := s0_acquire.MergeMacro(cmd.Context(), frame, featcfg, client, log); err != nil {
		return fmt.Errorf("merge macro series: %w", err)
	}

	if err := saveCheckpoint(cfg, contracts.CheckpointMerged, frame); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Merged %d macro series", len(featcfg.Macro)))
	return nil
}
