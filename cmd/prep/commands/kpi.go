package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/s4_features"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Derive per-quarter financial ratios",
	Long: `Compute the configured financial ratios (margins, returns, leverage)
per reporting quarter on both partitions.

Reads X_train_filled.csv and X_test_filled.csv, writes X_train_kpi.csv
and X_test_kpi.csv.

Example:
  go run ./cmd/prep kpi`,
	RunE: runKPI,
}

func init() {
	rootCmd.AddCommand(kpiCmd)
}

func runKPI(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stage 6: KPI ===")

	cfg, featcfg, log, err := initDeps()
	if err != nil {
		return err
	}
	logRunSnapshot(log, featcfg, "kpi")

	train, err := loadCheckpoint(cfg, contracts.CheckpointXTrainFilled)
	if err != nil {
		return err
	}
	test, err := loadCheckpoint(cfg, contracts.CheckpointXTestFilled)
	if err != nil {
		return err
	}

	engineer := s4_features.NewEngineer(featcfg, log)
	trainSummary, err := engineer.DeriveKPIs(train)
	if err != nil {
		return fmt.Errorf("derive train kpis: %w", err)
	}
	testSummary, err := engineer.DeriveKPIs(test)
	if err != nil {
		return fmt.Errorf("derive test kpis: %w", err)
	}

	if err := saveCheckpoint(cfg, contracts.CheckpointXTrainKPI, train); err != nil {
		return err
	}
	if err := saveCheckpoint(cfg, contracts.CheckpointXTestKPI, test); err != nil {
		return err
	}

	fmt.Println()
	PrintKeyValue("Quarters", fmt.Sprintf("%d", trainSummary.Quarters), 12)
	PrintKeyValue("KPI columns", fmt.Sprintf("%d train, %d test", trainSummary.Columns, testSummary.Columns), 12)
	PrintKeyValue("Skipped", fmt.Sprintf("%d train, %d test", trainSummary.Skipped, testSummary.Skipped), 12)
	fmt.Println()

	PrintSuccess("KPI derivation completed")
	return nil
}
