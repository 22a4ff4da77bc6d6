package tools

// Definition describes a tool's metadata for registration and documentation.
type Definition struct {
	Name        string
	Description string
	Category    Category
}

// Catalog enumerates the tools shipped with the platform.
var Catalog = []Definition{
	{Name: "get_stock_price", Description: "Fetch the current stock quote with day range and turnover", Category: CategoryMarketData},
	{Name: "get_kline", Description: "Retrieve historical candlestick data for a stock", Category: CategoryMarketData},
	{Name: "get_market_overview", Description: "Summarize major market indexes and overall sentiment", Category: CategoryMarketData},

	{Name: "sma", Description: "Simple Moving Average over closing prices", Category: CategoryTechnical},
	{Name: "ema", Description: "Exponential Moving Average over closing prices", Category: CategoryTechnical},
	{Name: "rsi", Description: "Relative Strength Index with overbought/oversold signal", Category: CategoryTechnical},
	{Name: "macd", Description: "Moving Average Convergence Divergence with crossover signal", Category: CategoryTechnical},
	{Name: "bollinger", Description: "Bollinger Bands with price position", Category: CategoryTechnical},
}

// Definitions returns the catalog entries for the given names. Unknown
// names are skipped.
func Definitions(names []string) []Definition {
	index := make(map[string]Definition, len(Catalog))
	for _, d := range Catalog {
		index[d.Name] = d
	}
	out := make([]Definition, 0, len(names))
	for _, name := range names {
		if d, ok := index[name]; ok {
			out = append(out, d)
		}
	}
	return out
}
