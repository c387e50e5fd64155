package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/s4_features"
)

var qoqCmd = &cobra.Command{
	Use:   "qoq",
	Short: "Derive quarter-over-quarter deltas and trend slopes",
	Long: `Add quarter-over-quarter difference columns and a per-family linear
trend slope for every feature family on both partitions.

Reads X_train_kpi.csv and X_test_kpi.csv, writes X_train_features.csv
and X_test_features.csv.

Example:
  go run ./cmd/prep qoq`,
	RunE: runQoQ,
}

func init() {
	rootCmd.AddCommand(qoqCmd)
}

func runQoQ(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stage 7: QoQ ===")

	cfg, featcfg, log, err := initDeps()
	if err != nil {
		return err
	}
	logRunSnapshot(log, featcfg, "qoq")

	train, err := loadCheckpoint(cfg, contracts.CheckpointXTrainKPI)
	if err != nil {
		return err
	}
	test, err := loadCheckpoint(cfg, contracts.CheckpointXTestKPI)
	if err != nil {
		return err
	}

	engineer := s4_features.NewEngineer(featcfg, log)
	trainSummary, err := engineer.DeriveQoQ(train)
	if err != nil {
		return fmt.Errorf("derive train qoq: %w", err)
	}
	testSummary, err := engineer.DeriveQoQ(test)
	if err != nil {
		return fmt.Errorf("derive test qoq: %w", err)
	}

	if err := saveCheckpoint(cfg, contracts.CheckpointXTrainFeatures, train); err != nil {
		return err
	}
	if err := saveCheckpoint(cfg, contracts.CheckpointXTestFeatures, test); err != nil {
		return err
	}

	fmt.Println()
	PrintKeyValue("Families", fmt.Sprintf("%d (%d skipped)", trainSummary.Families, trainSummary.SkippedFamilies), 13)
	PrintKeyValue("Delta columns", fmt.Sprintf("%d train, %d test", trainSummary.DeltaColumns, testSummary.DeltaColumns), 13)
	PrintKeyValue("Rate columns", fmt.Sprintf("%d train, %d test", trainSummary.RateColumns, testSummary.RateColumns), 13)
	fmt.Println()

	PrintSuccess("Feature table ready")
	return nil
}
