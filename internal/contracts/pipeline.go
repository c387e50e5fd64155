package contracts

import "path/filepath"

// Checkpoint identifies one of the CSV files the pipeline stages exchange.
// Every stage reads the previous checkpoint and writes the next, so a run
// can resume from whichever file exists.
//
// Pipeline flow:
//
//	fetch → macro → clean → split → impute → kpi → qoq
type Checkpoint string

const (
	// CheckpointUniverse holds the downloaded ETF constituent list.
	CheckpointUniverse Checkpoint = "universe"

	// CheckpointFundamentals holds per-ticker statics plus quarterly line items.
	CheckpointFundamentals Checkpoint = "fundamentals"

	// CheckpointMerged is fundamentals joined with quarterly macro indicators.
	CheckpointMerged Checkpoint = "merged"

	// CheckpointClean is the filtered, bucketed, one-hot-encoded table.
	CheckpointClean Checkpoint = "clean"

	// Split outputs. X carries features, y the target-quarter columns.
	CheckpointXTrain Checkpoint = "X_train"
	CheckpointXTest  Checkpoint = "X_test"
	CheckpointYTrain Checkpoint = "y_train"
	CheckpointYTest  Checkpoint = "y_test"

	// Impute outputs: grouped-median filled, NaN-free.
	CheckpointXTrainFilled Checkpoint = "X_train_filled"
	CheckpointXTestFilled  Checkpoint = "X_test_filled"

	// KPI outputs: filled features plus per-quarter ratio columns.
	CheckpointXTrainKPI Checkpoint = "X_train_kpi"
	CheckpointXTestKPI  Checkpoint = "X_test_kpi"

	// Final feature matrices with QoQ deltas and trend slopes.
	CheckpointXTrainFeatures Checkpoint = "X_train_features"
	CheckpointXTestFeatures  Checkpoint = "X_test_features"
)

// Filename returns the checkpoint's file name under the data directory.
func (c Checkpoint) Filename() string {
	return string(c) + ".csv"
}

// Path returns the checkpoint's location under dataDir.
func (c Checkpoint) Path(dataDir string) string {
	return filepath.Join(dataDir, c.Filename())
}

// Producer returns the subcommand that writes this checkpoint.
func (c Checkpoint) Producer() string {
	switch c {
	case CheckpointUniverse, CheckpointFundamentals:
		return "fetch"
	case CheckpointMerged:
		return "macro"
	case CheckpointClean:
		return "clean"
	case CheckpointXTrain, CheckpointXTest, CheckpointYTrain, CheckpointYTest:
		return "split"
	case CheckpointXTrainFilled, CheckpointXTestFilled:
		return "impute"
	case CheckpointXTrainKPI, CheckpointXTestKPI:
		return "kpi"
	case CheckpointXTrainFeatures, CheckpointXTestFeatures:
		return "qoq"
	default:
		return "unknown"
	}
}

// AllCheckpoints returns every checkpoint in pipeline order.
func AllCheckpoints() []Checkpoint {
	return []Checkpoint{
		CheckpointUniverse,
		CheckpointFundamentals,
		CheckpointMerged,
		CheckpointClean,
		CheckpointXTrain,
		CheckpointXTest,
		CheckpointYTrain,
		CheckpointYTest,
		CheckpointXTrainFilled,
		CheckpointXTestFilled,
		CheckpointXTrainKPI,
		CheckpointXTestKPI,
		CheckpointXTrainFeatures,
		CheckpointXTestFeatures,
	}
}
