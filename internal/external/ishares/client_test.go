package ishares

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/milestoneml/equityprep/pkg/config"
	"github.com/milestoneml/equityprep/pkg/httputil"
	"github.com/milestoneml/equityprep/pkg/logger"
)

func testClient(productURL string) *Client {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error", // Reduce log noise
		LogFormat: "json",
		HTTP: config.HTTPConfig{
			Timeout:      5 * time.Second,
			MaxRetries:   0,
			InitialDelay: 10 * time.Millisecond,
			MaxDelay:     50 * time.Millisecond,
		},
		Rate: config.RateConfig{
			RPS:   1000, // Effectively unlimited for tests
			Burst: 10,
		},
	}
	log := logger.New(cfg)
	return NewClient(httputil.New(cfg, log), log, productURL)
}

func holdingsWorkbookBytes(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "Holdings")

	rows := [][]interface{}{
		{"Fund Holdings as of", "2025-06-30"},
		{"Ticker", "Name", "Sector", "Asset Class", "Market Value", "Exchange", "Currency"},
		{"AAPL", "APPLE INC", "Information Technology", "Equity", "1,000.00", "NASDAQ", "USD"},
		{"MSFT", "MICROSOFT CORP", "Information Technology", "Equity", "900.00", "NASDAQ", "USD"},
	}
	for i, row := range rows {
		for j, val := range row {
			col, err := excelize.ColumnNumberToName(j + 1)
			if err != nil {
				t.Fatalf("column name: %v", err)
			}
			if err := f.SetCellValue("Holdings", col+strconv.Itoa(i+1), val); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestFetch(t *testing.T) {
	workbook := holdingsWorkbookBytes(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/us/products/239714/ishares-russell-3000-etf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a class="icon-xls-export" href="/us/products/239714/fund.ajax?fileType=xls&dataType=fund">Download</a>
		</body></html>`)
	})
	mux.HandleFunc("/us/products/239714/fund.ajax", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fileType") != "xls" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.ms-excel")
		w.Write(workbook)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := testClient(srv.URL + "/us/products/239714/ishares-russell-3000-etf")
	holdings, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(holdings) != 2 {
		t.Fatalf("got %d holdings, want 2", len(holdings))
	}
	if holdings[0].Ticker != "AAPL" || holdings[1].Ticker != "MSFT" {
		t.Errorf("tickers = %s, %s; want AAPL, MSFT", holdings[0].Ticker, holdings[1].Ticker)
	}
	if holdings[0].MarketValue != 1000 {
		t.Errorf("MarketValue = %v, want 1000", holdings[0].MarketValue)
	}
}

func TestFetchNoLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>maintenance</p></body></html>`)
	}))
	defer srv.Close()

	client := testClient(srv.URL + "/product")
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("Expected error when page has no download link, got nil")
	}
}

func TestResolveLink(t *testing.T) {
	client := testClient("https://www.example.com/us/products/239714/fund")

	tests := []struct {
		href string
		want string
	}{
		{"/us/products/239714/fund.ajax?fileType=xls", "https://www.example.com/us/products/239714/fund.ajax?fileType=xls"},
		{"https://cdn.example.com/file.xlsx", "https://cdn.example.com/file.xlsx"},
	}
	for _, tt := range tests {
		got, err := client.resolveLink(tt.href)
		if err != nil {
			t.Fatalf("resolveLink(%q) error = %v", tt.href, err)
		}
		if got != tt.want {
			t.Errorf("resolveLink(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
