package contracts

// Column names shared across stages. The acquisition stage writes them,
// cleaning buckets and encodes them, and the split and impute stages group
// by them, so they live here rather than in any one stage.
const (
	ColumnName        = "Name"
	ColumnSector      = "Sector"
	ColumnAssetClass  = "AssetClass"
	ColumnExchange    = "Exchange"
	ColumnCurrency    = "Currency"
	ColumnYahooSymbol = "YahooSymbol"
	ColumnMarketValue = "MarketValue"

	// ColumnMarketCap is derived during cleaning from ColumnMarketValue.
	ColumnMarketCap = "MarketCap"
)

// StaticColumns are the per-ticker metadata columns carried from the
// universe checkpoint into the fundamentals checkpoint.
var StaticColumns = []string{
	ColumnName,
	ColumnSector,
	ColumnAssetClass,
	ColumnExchange,
	ColumnCurrency,
	ColumnYahooSymbol,
}
