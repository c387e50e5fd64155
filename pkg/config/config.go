package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Application
	Env     string // development, staging, production
	DataDir string // checkpoint directory

	// External APIs
	Yahoo   YahooConfig
	Fred    FredConfig
	IShares ISharesConfig

	// HTTP client
	HTTP HTTPConfig

	// Client-side rate limiting
	Rate RateConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// YahooConfig holds the fundamentals vendor API configuration
type YahooConfig struct {
	BaseURL   string
	UserAgent string
}

// FredConfig holds the macroeconomic statistics API configuration
type FredConfig struct {
	APIKey  string
	BaseURL string
}

// ISharesConfig holds the index-holdings download configuration
type ISharesConfig struct {
	ProductURL string
}

// HTTPConfig holds shared HTTP client settings
type HTTPConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// RateConfig holds the client-side request rate limit
type RateConfig struct {
	RPS   float64 // sustained requests per second
	Burst int
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Application
		Env:     getEnv("ENV", "development"),
		DataDir: getEnv("DATA_DIR", "data"),

		// External APIs
		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			UserAgent: getEnv("YAHOO_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"),
		},

		Fred: FredConfig{
			APIKey:  getEnv("FRED_API_KEY", ""),
			BaseURL: getEnv("FRED_BASE_URL", "https://api.stlouisfed.org"),
		},

		IShares: ISharesConfig{
			ProductURL: getEnv("ISHARES_PRODUCT_URL",
				"https://www.ishares.com/us/products/239714/ishares-russell-3000-etf"),
		},

		// HTTP client
		HTTP: HTTPConfig{
			Timeout:      getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			MaxRetries:   getEnvAsInt("HTTP_MAX_RETRIES", 2),
			InitialDelay: getEnvAsDuration("HTTP_RETRY_DELAY", "300ms"),
			MaxDelay:     getEnvAsDuration("HTTP_RETRY_MAX_DELAY", "10s"),
		},

		// Rate limiting
		Rate: RateConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 2.0),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 1),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
// FRED_API_KEY is intentionally not required here: only the macro
// stage needs it, and that stage fails with a clear error on its own.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("HTTP_MAX_RETRIES must be >= 0")
	}

	if c.Rate.RPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}

	if c.Rate.Burst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
