package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/s2_split"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Stratified train/test split with target extraction",
	Long: `Split the clean table into train and test partitions, stratified by
sector and market-cap bucket, and peel the target quarter's columns off
into separate target frames.

Reads clean.csv, writes X_train.csv, X_test.csv, y_train.csv, y_test.csv.

Example:
  go run ./cmd/prep split`,
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stage 4: Split ===")

	cfg, featcfg, log, err := initDeps()
	if err != nil {
		return err
	}
	logRunSnapshot(log, featcfg, "split")

	frame, err := loadCheckpoint(cfg, contracts.CheckpointClean)
	if err != nil {
		return err
	}

	splitter := s2_split.NewSplitter(featcfg, log)
	result, summary, err := splitter.Split(frame)
	if err != nil {
		return fmt.Errorf("split: %w", err)
	}

	saves := []struct {
		cp    contracts.Checkpoint
		frame *dataset.Frame
	}{
		{contracts.CheckpointXTrain, result.XTrain},
		{contracts.CheckpointXTest, result.XTest},
		{contracts.CheckpointYTrain, result.YTrain},
		{contracts.CheckpointYTest, result.YTest},
	}
	for _, s := range saves {
		if err := saveCheckpoint(cfg, s.cp, s.frame); err != nil {
			return err
		}
	}

	fmt.Println()
	PrintKeyValue("Target quarter", summary.TargetQuarter, 14)
	PrintKeyValue("Target columns", fmt.Sprintf("%d", summary.TargetColumns), 14)
	PrintKeyValue("Strata", fmt.Sprintf("%d", summary.Strata), 14)
	PrintKeyValue("Dropped small", fmt.Sprintf("%d", summary.DroppedSmall), 14)
	PrintKeyValue("Train rows", fmt.Sprintf("%d", summary.TrainRows), 14)
	PrintKeyValue("Test rows", fmt.Sprintf("%d", summary.TestRows), 14)
	fmt.Println()

	PrintSuccess("Split completed")
	return nil
}
