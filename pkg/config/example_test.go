package config_test

import (
	"fmt"

	"github.com/milestoneml/equityprep/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	// Access configuration values
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Data directory: %s\n", cfg.DataDir)
	fmt.Printf("Vendor base URL: %s\n", cfg.Yahoo.BaseURL)
	fmt.Printf("Rate limit: %.1f req/s\n", cfg.Rate.RPS)
}
