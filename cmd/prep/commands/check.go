package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/quality"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the checkpoints on disk",
	Long: `Validate every checkpoint that exists: required columns, row counts,
missing-value shares, train/test ticker overlap and feature/target row
alignment. Missing checkpoints are skipped, invalid ones fail the command.

Example:
  go run ./cmd/prep check
  go run ./cmd/prep check --data-dir /tmp/run42`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Checkpoint Validation ===")
	fmt.Println()

	cfg, _, _, err := initDeps()
	if err != nil {
		return err
	}

	validator := quality.NewValidator(quality.DefaultConfig())
	frames := make(map[contracts.Checkpoint]*dataset.Frame)
	missing, failed, warned := 0, 0, 0

	for _, cp := range contracts.AllCheckpoints() {
		frame, err := dataset.ReadCSV(cp.Path(cfg.DataDir))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing++
				continue
			}
			PrintError(fmt.Sprintf("%s: %v", cp.Filename(), err))
			failed++
			continue
		}
		frames[cp] = frame

		result := validator.Check(cp, frame)
		printResult(result)
		if !result.Valid {
			failed++
		}
		warned += result.Warnings()
	}

	// Cross-checkpoint invariants over whatever pairs are present.
	disjoint := [][2]contracts.Checkpoint{
		{contracts.CheckpointXTrain, contracts.CheckpointXTest},
		{contracts.CheckpointXTrainFilled, contracts.CheckpointXTestFilled},
		{contracts.CheckpointXTrainKPI, contracts.CheckpointXTestKPI},
		{contracts.CheckpointXTrainFeatures, contracts.CheckpointXTestFeatures},
	}
	aligned := [][2]contracts.Checkpoint{
		{contracts.CheckpointXTrain, contracts.CheckpointYTrain},
		{contracts.CheckpointXTest, contracts.CheckpointYTest},
	}

	fmt.Println()
	PrintSeparator()
	for _, pair := range disjoint {
		train, test := frames[pair[0]], frames[pair[1]]
		if train == nil || test == nil {
			continue
		}
		if issues := validator.CheckDisjoint(train, test); len(issues) > 0 {
			for _, issue := range issues {
				PrintError(fmt.Sprintf("%s / %s: %s", pair[0].Filename(), pair[1].Filename(), issue.Message))
			}
			failed++
		} else {
			PrintSuccess(fmt.Sprintf("%s and %s are disjoint", pair[0].Filename(), pair[1].Filename()))
		}
	}
	for _, pair := range aligned {
		x, y := frames[pair[0]], frames[pair[1]]
		if x == nil || y == nil {
			continue
		}
		if issues := validator.CheckAligned(x, y); len(issues) > 0 {
			for _, issue := range issues {
				PrintError(fmt.Sprintf("%s / %s: %s", pair[0].Filename(), pair[1].Filename(), issue.Message))
			}
			failed++
		} else {
			PrintSuccess(fmt.Sprintf("%s aligns with %s", pair[0].Filename(), pair[1].Filename()))
		}
	}

	fmt.Println()
	if missing > 0 {
		PrintInfo(fmt.Sprintf("%d checkpoints not present were skipped", missing))
	}
	if failed > 0 {
		return fmt.Errorf("validation failed: %d errors, %d warnings", failed, warned)
	}
	PrintSuccess(fmt.Sprintf("All present checkpoints are valid (%d warnings)", warned))
	return nil
}

// printResult echoes one checkpoint's validation outcome.
func printResult(result *quality.ValidationResult) {
	name := result.Checkpoint.Filename()
	switch {
	case result.Valid && len(result.Issues) == 0:
		fmt.Printf("✅ %-22s %d rows, %d cols\n", name, result.Stats.Rows, result.Stats.Columns)
	case result.Valid:
		fmt.Printf("⚠️  %-22s %d rows, %d cols, %d warnings\n", name, result.Stats.Rows, result.Stats.Columns, result.Warnings())
		for _, issue := range result.Issues {
			printIssue(issue)
		}
	default:
		fmt.Printf("❌ %-22s invalid\n", name)
		for _, issue := range result.Issues {
			printIssue(issue)
		}
	}
}

func printIssue(issue quality.Issue) {
	marker := "⚠️ "
	if issue.Severity == quality.SeverityError {
		marker = "❌"
	}
	if issue.Column != "" {
		fmt.Printf("   %s %s: %s\n", marker, issue.Column, issue.Message)
		return
	}
	fmt.Printf("   %s %s\n", marker, issue.Message)
}
