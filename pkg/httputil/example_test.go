package httputil_test

import (
	"context"
	"fmt"
	"time"

	"github.com/milestoneml/equityprep/pkg/config"
	"github.com/milestoneml/equityprep/pkg/httputil"
	"github.com/milestoneml/equityprep/pkg/logger"
)

func exampleConfig() *config.Config {
	return &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
		HTTP: config.HTTPConfig{
			Timeout:      30 * time.Second,
			MaxRetries:   2,
			InitialDelay: 300 * time.Millisecond,
			MaxDelay:     10 * time.Second,
		},
		Rate: config.RateConfig{RPS: 2, Burst: 1},
	}
}

// Example_basic demonstrates basic HTTP client usage
func Example_basic() {
	cfg := exampleConfig()
	log := logger.New(cfg)

	// One client per vendor, sharing a rate limiter
	client := httputil.New(cfg, log)

	ctx := context.Background()
	resp, err := client.Get(ctx, "https://api.example.com/data")
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}
	defer resp.Body.Close()

	fmt.Printf("Status: %d\n", resp.StatusCode)
}

// Example_getJSON demonstrates decoding a JSON response
func Example_getJSON() {
	cfg := exampleConfig()
	log := logger.New(cfg)

	client := httputil.New(cfg, log)

	var out struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}

	ctx := context.Background()
	if err := client.GetJSON(ctx, "https://api.example.com/series", &out); err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}

	fmt.Printf("Observations: %d\n", len(out.Observations))
}

// Example_withRetry demonstrates retry configuration
func Example_withRetry() {
	cfg := exampleConfig()
	log := logger.New(cfg)

	// 5 retries, 2s initial delay
	client := httputil.New(cfg, log).
		WithRetry(5, 2*time.Second)

	ctx := context.Background()
	resp, err := client.Get(ctx, "https://api.example.com/data")
	if err != nil {
		fmt.Printf("Request failed after retries: %v\n", err)
		return
	}
	defer resp.Body.Close()

	fmt.Println("Request succeeded")
}

// Example_rateLimit demonstrates request pacing
func Example_rateLimit() {
	cfg := exampleConfig()
	log := logger.New(cfg)

	// Half a request per second: gentle on the vendor
	client := httputil.New(cfg, log).WithRateLimit(0.5, 1)

	ctx := context.Background()
	for _, symbol := range []string{"AAPL", "MSFT", "NVDA"} {
		resp, err := client.Get(ctx, "https://api.example.com/fundamentals/"+symbol)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			return
		}
		resp.Body.Close()
	}

	fmt.Println("All requests paced")
}
