package s0_acquire

import (
	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/external/ishares"
	"github.com/milestoneml/equityprep/internal/external/yahoo"
)

// UniverseFrame builds the universe checkpoint from parsed holdings:
// static descriptors plus the reported market value, one row per
// ticker. Repeat tickers keep their first occurrence, matching the
// collector's dedupe.
func UniverseFrame(holdings []ishares.Holding) (*dataset.Frame, error) {
	frame := dataset.New()

	for _, name := range contracts.StaticColumns {
		if err := frame.AddStringColumn(name); err != nil {
			return nil, err
		}
	}
	if err := frame.AddFloatColumn(contracts.ColumnMarketValue); err != nil {
		return nil, err
	}

	for _, h := range holdings {
		if frame.HasRow(h.Ticker) {
			continue
		}
		if err := frame.AddRow(h.Ticker); err != nil {
			return nil, err
		}
		statics := map[string]string{
			contracts.ColumnName:        h.Name,
			contracts.ColumnSector:      h.Sector,
			contracts.ColumnAssetClass:  h.AssetClass,
			contracts.ColumnExchange:    h.Exchange,
			contracts.ColumnCurrency:    h.Currency,
			contracts.ColumnYahooSymbol: yahoo.NormalizeSymbol(h.Ticker),
		}
		for col, v := range statics {
			if err := frame.SetString(h.Ticker, col, v); err != nil {
				return nil, err
			}
		}
		if err := frame.SetFloat(h.Ticker, contracts.ColumnMarketValue, h.MarketValue); err != nil {
			return nil, err
		}
	}

	return frame, nil
}
