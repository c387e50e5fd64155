package fred

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/pkg/httputil"
	"github.com/milestoneml/equityprep/pkg/logger"
)

// Client handles communication with the macro statistics API (FRED).
// All macro series calls go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a macro series client. The API key is mandatory for
// every observations call; callers check it before starting a run.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Observation is one dated value of a series.
type Observation struct {
	Date  time.Time
	Value float64
}

// observationsResponse mirrors the vendor envelope. Values arrive as
// strings; "." marks a missing observation.
type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Observations fetches the dated values of one series between start and
// end (inclusive). Missing observations are skipped, not zero-filled.
func (c *Client) Observations(ctx context.Context, series string, start, end time.Time) ([]Observation, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("missing API key for series %s", series)
	}

	params := url.Values{}
	params.Set("series_id", series)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("observation_start", start.Format("2006-01-02"))
	params.Set("observation_end", end.Format("2006-01-02"))

	fullURL := fmt.Sprintf("%s/fred/series/observations?%s", c.baseURL, params.Encode())

	var resp observationsResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("observations request failed for %s: %w", series, err)
	}

	obs := make([]Observation, 0, len(resp.Observations))
	skipped := 0
	for _, o := range resp.Observations {
		if o.Value == "." {
			skipped++
			continue
		}
		date, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			return nil, fmt.Errorf("bad observation date %q for %s: %w", o.Date, series, err)
		}
		value, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("bad observation value %q for %s: %w", o.Value, series, err)
		}
		obs = append(obs, Observation{Date: date, Value: value})
	}

	c.logger.WithFields(map[string]interface{}{
		"series":  series,
		"count":   len(obs),
		"skipped": skipped,
	}).Debug("Fetched series observations")

	return obs, nil
}

// QuarterlyMeans collapses observations into one mean per window quarter.
// Monthly and daily series average out; a series that is already quarterly
// passes through unchanged (one observation per bucket). Quarters without
// any observation are absent from the map.
func QuarterlyMeans(obs []Observation, window []dataset.Quarter) map[dataset.Quarter]float64 {
	allowed := make(map[dataset.Quarter]bool, len(window))
	for _, q := range window {
		allowed[q] = true
	}

	sums := make(map[dataset.Quarter]float64)
	counts := make(map[dataset.Quarter]int)
	for _, o := range obs {
		q := dataset.QuarterOf(o.Date)
		if !allowed[q] {
			continue
		}
		sums[q] += o.Value
		counts[q]++
	}

	means := make(map[dataset.Quarter]float64, len(sums))
	for q, sum := range sums {
		means[q] = sum / float64(counts[q])
	}
	return means
}
