package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/s1_clean"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Filter rows, drop configured columns and one-hot encode",
	Long: `Drop non-equity and zero-revenue rows, remove configured columns,
bucket market capitalization and one-hot encode the categoricals.

Reads merged.csv, writes clean.csv.

Example:
  go run ./cmd/prep clean`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stage 3: Clean ===")

	cfg, featcfg, log, err := initDeps()
	if err != nil {
		return err
	}
	logRunSnapshot(log, featcfg, "clean")

	frame, err := loadCheckpoint(cfg, contracts.CheckpointMerged)
	if err != nil {
		return err
	}

	cleaner := s1_clean.NewCleaner(featcfg, log)
	clean, summary, err := cleaner.Clean(frame)
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	if err := saveCheckpoint(cfg, contracts.CheckpointClean, clean); err != nil {
		return err
	}

	fmt.Println()
	PrintKeyValue("Input rows", fmt.Sprintf("%d", summary.InputRows), 15)
	PrintKeyValue("Output rows", fmt.Sprintf("%d", summary.OutputRows), 15)
	PrintKeyValue("Columns dropped", fmt.Sprintf("%d", summary.ColumnsDropped), 15)
	PrintKeyValue("Unbucketed", fmt.Sprintf("%d", summary.Unbucketed), 15)
	PrintKeyValue("Encoded columns", fmt.Sprintf("%d", summary.EncodedColumns), 15)

	if len(summary.Excluded) > 0 {
		fmt.Println("\n   Excluded rows by reason:")
		reasons := make([]string, 0, len(summary.Excluded))
		for reason := range summary.Excluded {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		items := make([]string, 0, len(reasons))
		for _, reason := range reasons {
			items = append(items, fmt.Sprintf("%s: %d", reason, summary.Excluded[reason]))
		}
		PrintList(items)
	}
	fmt.Println()

	PrintSuccess("Clean completed")
	return nil
}
