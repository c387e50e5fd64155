package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile      string
	featuresFile string
	dataDir      string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prep",
	Short: "Quarterly fundamentals feature preparation pipeline",
	Long: `Equity fundamentals preparation CLI

Builds a model-ready feature table for an index universe in seven
stages, from vendor download to quarter-over-quarter features. Every
stage reads the previous CSV checkpoint and writes the next one, so
any stage can be re-run on its own.

Usage:
  go run ./cmd/prep [command]

Examples:
  go run ./cmd/prep run
  go run ./cmd/prep fetch --workers 8 --limit 50
  go run ./cmd/prep status
  go run ./cmd/prep check`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load first (default: .env discovery)")
	rootCmd.PersistentFlags().StringVar(&featuresFile, "config", "", "feature definition YAML (default: built-in definitions)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "checkpoint directory (overrides DATA_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
