package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/dataset"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which checkpoints exist and their sizes",
	Long: `List every pipeline checkpoint with row and column counts, file size
and age, in pipeline order.

Example:
  go run ./cmd/prep status
  go run ./cmd/prep status --data-dir /tmp/run42`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Checkpoint Status ===")
	fmt.Println()

	cfg, _, _, err := initDeps()
	if err != nil {
		return err
	}

	widths := []int{22, 6, 6, 6, 8, 9}
	PrintTableHeader([]string{"Checkpoint", "Stage", "Rows", "Cols", "Size", "Age"}, widths)

	present := 0
	checkpoints := contracts.AllCheckpoints()
	for _, cp := range checkpoints {
		path := cp.Path(cfg.DataDir)
		info, err := os.Stat(path)
		if err != nil {
			PrintTableRow([]string{cp.Filename(), cp.Producer(), "-", "-", "-", "-"}, widths)
			continue
		}
		present++

		rows, cols := "?", "?"
		if frame, err := dataset.ReadCSV(path); err == nil {
			rows = fmt.Sprintf("%d", frame.NumRows())
			cols = fmt.Sprintf("%d", frame.NumCols())
		}
		PrintTableRow([]string{
			cp.Filename(),
			cp.Producer(),
			rows,
			cols,
			humanBytes(info.Size()),
			humanAge(time.Since(info.ModTime())),
		}, widths)
	}

	fmt.Println()
	fmt.Printf("%d/%d checkpoints present in %s\n", present, len(checkpoints), cfg.DataDir)
	return nil
}
