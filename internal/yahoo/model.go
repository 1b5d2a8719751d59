package yahoo

import (
	"fmt"
	"time"
)

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata (name, currency, exchange, market price)
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price data arrays (open, close, high, low, volume)
//   - Chart.Error: Optional error object from Yahoo API
//
// Price and volume arrays hold pointers because Yahoo sends null for
// days without trading data.
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart payload.
type Chart struct {
	Result []Result    `json:"result"`
	Error  *ChartError `json:"error"`
}

// ChartError is the error object Yahoo returns for unknown symbols and bad requests.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *ChartError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Result is the chart data for one symbol.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta holds symbol metadata and the latest market price.
type Meta struct {
	Currency           string   `json:"currency"`
	Symbol             string   `json:"symbol"`
	ExchangeName       string   `json:"exchangeName"`
	FullExchangeName   string   `json:"fullExchangeName"`
	LongName           string   `json:"longName"`
	Shortname          string   `json:"shortName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64    `json:"regularMarketTime"`
}

// IndicatorsContainer wraps the quote series.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds the parallel OHLCV series, aligned with Result.Timestamp.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// PriceChart represents a parsed and structured price chart from Yahoo Finance.
// This is the application's internal representation after parsing the raw Response.
type PriceChart struct {
	Currency           string       `json:"currency"`
	Symbol             string       `json:"symbol"`
	ExchangeName       string       `json:"exchangeName"`
	FullExchangeName   string       `json:"fullExchangeName"`
	LongName           string       `json:"longName"`
	Shortname          string       `json:"shortName"`
	RegularMarketPrice *float64     `json:"regularMarketPrice,omitempty"`
	Indicators         []Indicators `json:"indicators"`
}

// Indicators represents a single day's price data for a financial instrument.
// Days where Yahoo reported no close price are not represented.
type Indicators struct {
	Date       time.Time
	PriceOpen  float64
	PriceClose float64
	Volume     int64
	PriceHigh  float64
	PriceLow   float64
}

// LastClose returns the most recent closing price in the chart.
func (c PriceChart) LastClose() (float64, bool) {
	if len(c.Indicators) == 0 {
		return 0, false
	}
	return c.Indicators[len(c.Indicators)-1].PriceClose, true
}
