package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/milestoneml/equityprep/pkg/httputil"
	"github.com/milestoneml/equityprep/pkg/logger"
)

// quoteSummaryModules are the three quarterly statement histories the
// pipeline reads. Requested together in one call per symbol.
const quoteSummaryModules = "incomeStatementHistoryQuarterly," +
	"balanceSheetHistoryQuarterly,cashflowStatementHistoryQuarterly"

// Client handles communication with the vendor quote-summary API.
// All fundamentals calls go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a fundamentals client. baseURL has no trailing slash.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// NormalizeSymbol maps an index-holdings ticker to the vendor's symbol
// notation: share classes use a dash, not a dot (BRK.B -> BRK-B).
func NormalizeSymbol(ticker string) string {
	return strings.ReplaceAll(strings.TrimSpace(ticker), ".", "-")
}

// QuarterlyStatements holds one symbol's statement history by report.
type QuarterlyStatements struct {
	Symbol   string
	Income   []Statement
	Balance  []Statement
	Cashflow []Statement
}

// Statement is one reporting period: vendor row keys to wire values.
// Non-numeric entries (endDate, maxAge) live in the same map and are
// filtered by the accessors.
type Statement map[string]json.RawMessage

// wireValue is the vendor's number envelope: {"raw": 1.19575e11, "fmt": "119.58B"}.
type wireValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// Value returns the numeric value stored under key.
func (s Statement) Value(key string) (float64, bool) {
	raw, ok := s[key]
	if !ok {
		return 0, false
	}
	var v wireValue
	if err := json.Unmarshal(raw, &v); err != nil || v.Raw == nil {
		return 0, false
	}
	return *v.Raw, true
}

// EndDate returns the period end of this statement.
func (s Statement) EndDate() (time.Time, bool) {
	raw, ok := s["endDate"]
	if !ok {
		return time.Time{}, false
	}
	var v struct {
		Raw *int64 `json:"raw"`
		Fmt string `json:"fmt"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return time.Time{}, false
	}
	if v.Fmt != "" {
		if t, err := time.Parse("2006-01-02", v.Fmt); err == nil {
			return t, true
		}
	}
	if v.Raw != nil {
		return time.Unix(*v.Raw, 0).UTC(), true
	}
	return time.Time{}, false
}

// Keys returns the numeric row keys in sorted order. Sorting keeps label
// resolution deterministic across runs.
func (s Statement) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		if k == "endDate" || k == "maxAge" {
			continue
		}
		if _, ok := s.Value(k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// quoteSummaryResponse mirrors the vendor envelope.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Income *struct {
				Statements []Statement `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistoryQuarterly"`
			Balance *struct {
				Statements []Statement `json:"balanceSheetStatements"`
			} `json:"balanceSheetHistoryQuarterly"`
			Cashflow *struct {
				Statements []Statement `json:"cashflowStatements"`
			} `json:"cashflowStatementHistoryQuarterly"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchQuarterly pulls the quarterly statement histories for one symbol.
func (c *Client) FetchQuarterly(ctx context.Context, symbol string) (*QuarterlyStatements, error) {
	fullURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(symbol), quoteSummaryModules)

	var resp quoteSummaryResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("quote summary request failed: %w", err)
	}

	if apiErr := resp.QuoteSummary.Error; apiErr != nil {
		return nil, fmt.Errorf("vendor error: %s - %s", apiErr.Code, apiErr.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no result for symbol %s", symbol)
	}

	result := resp.QuoteSummary.Result[0]
	out := &QuarterlyStatements{Symbol: symbol}
	if result.Income != nil {
		out.Income = result.Income.Statements
	}
	if result.Balance != nil {
		out.Balance = result.Balance.Statements
	}
	if result.Cashflow != nil {
		out.Cashflow = result.Cashflow.Statements
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"income":   len(out.Income),
		"balance":  len(out.Balance),
		"cashflow": len(out.Cashflow),
	}).Debug("Fetched quarterly statements")

	return out, nil
}
