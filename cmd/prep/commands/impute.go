package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/s3_impute"
)

var imputeCmd = &cobra.Command{
	Use:   "impute",
	Short: "Fill missing values from training-partition statistics",
	Long: `Fill missing numeric cells with per-(sector, market-cap) statistics
computed on the training partition only, then apply the same fills to the
test partition.

Reads X_train.csv and X_test.csv, writes X_train_filled.csv and
X_test_filled.csv.

Example:
  go run ./cmd/prep impute`,
	RunE: runImpute,
}

func init() {
	rootCmd.AddCommand(imputeCmd)
}

func runImpute(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stage 5: Impute ===")

	cfg, featcfg, log, err := initDeps()
	if err != nil {
		return err
	}
	logRunSnapshot(log, featcfg, "impute")

	train, err := loadCheckpoint(cfg, contracts.CheckpointXTrain)
	if err != nil {
		return err
	}
	test, err := loadCheckpoint(cfg, contracts.CheckpointXTest)
	if err != nil {
		return err
	}

	imputer := s3_impute.NewImputer(featcfg, log)
	summary, err := imputer.Transform(train, test)
	if err != nil {
		return fmt.Errorf("impute: %w", err)
	}

	if err := saveCheckpoint(cfg, contracts.CheckpointXTrainFilled, train); err != nil {
		return err
	}
	if err := saveCheckpoint(cfg, contracts.CheckpointXTestFilled, test); err != nil {
		return err
	}

	fmt.Println()
	PrintKeyValue("Statistic", featcfg.Impute.Statistic, 15)
	PrintKeyValue("Groups", fmt.Sprintf("%d", summary.Groups), 15)
	PrintKeyValue("Filled", fmt.Sprintf("%d train, %d test", summary.TrainFilled, summary.TestFilled), 15)
	PrintKeyValue("Columns dropped", fmt.Sprintf("%d", summary.ColumnsDropped), 15)
	PrintKeyValue("Rows dropped", fmt.Sprintf("%d train, %d test", summary.TrainDropped, summary.TestDropped), 15)
	fmt.Println()

	PrintSuccess("Impute completed")
	return nil
}
