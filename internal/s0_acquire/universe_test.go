package s0_acquire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/external/ishares"
)

func TestUniverseFrame(t *testing.T) {
	holdings := []ishares.Holding{
		{Ticker: "AAPL", Name: "Apple Inc", Sector: "Information Technology", AssetClass: "Equity", MarketValue: 3.4e9, Exchange: "NASDAQ", Currency: "USD"},
		{Ticker: "BRK.B", Name: "Berkshire Hathaway Class B", Sector: "Financials", AssetClass: "Equity", MarketValue: 2.1e9, Exchange: "New York Stock Exchange Inc.", Currency: "USD"},
		{Ticker: "AAPL", Name: "Apple Inc", Sector: "Information Technology", AssetClass: "Equity", MarketValue: 1, Exchange: "NASDAQ", Currency: "USD"},
	}

	frame, err := UniverseFrame(holdings)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "BRK.B"}, frame.Tickers())
	assert.Equal(t, 7, frame.NumCols())

	// First occurrence wins for repeats.
	assert.Equal(t, 3.4e9, frame.Float("AAPL", contracts.ColumnMarketValue))

	// Share-class tickers are stored in vendor notation.
	assert.Equal(t, "BRK-B", frame.String("BRK.B", contracts.ColumnYahooSymbol))
	assert.Equal(t, "New York Stock Exchange Inc.", frame.String("BRK.B", contracts.ColumnExchange))
}

func TestUniverseFrameEmpty(t *testing.T) {
	frame, err := UniverseFrame(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, frame.NumRows())
	assert.Equal(t, 7, frame.NumCols())
}
