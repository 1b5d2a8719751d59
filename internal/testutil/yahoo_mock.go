package testutil

import (
	"context"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/yahoo"
)

// MockYahooClient implements yahoo.Client with canned responses and records
// the arguments of the latest query.
type MockYahooClient struct {
	MockResponse yahoo.Response
	MockError    error
	QueryCount   int

	LastSymbol string
	LastStart  time.Time
	LastEnd    time.Time
}

// NewMockYahooClient returns a mock answering every query with five daily bars.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		MockResponse: CreateMockYahooResponse(5),
	}
}

// QueryYahooFiveDaySymbol implements yahoo.Client.
func (m *MockYahooClient) QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (yahoo.Response, error) {
	m.QueryCount++
	m.LastSymbol = symbol
	if err := ctx.Err(); err != nil {
		return yahoo.Response{}, err
	}
	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	return m.MockResponse, nil
}

// QueryYahooSymbolByDateRange implements yahoo.Client.
func (m *MockYahooClient) QueryYahooSymbolByDateRange(ctx context.Context, symbol string, start, end time.Time) (yahoo.Response, error) {
	m.QueryCount++
	m.LastSymbol = symbol
	m.LastStart = start
	m.LastEnd = end
	if err := ctx.Err(); err != nil {
		return yahoo.Response{}, err
	}
	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	return m.MockResponse, nil
}

// ParseChart uses the real parser.
func (m *MockYahooClient) ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error) {
	return yahoo.NewFinanceClient(yahoo.Options{}).ParseChart(yahooResult)
}

// WithError makes every query fail with err.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

// WithResponse replaces the canned response.
func (m *MockYahooClient) WithResponse(resp yahoo.Response) *MockYahooClient {
	m.MockResponse = resp
	return m
}

// WithEmptyResponse answers like Yahoo does for an unknown symbol.
func (m *MockYahooClient) WithEmptyResponse() *MockYahooClient {
	m.MockResponse = yahoo.Response{Chart: yahoo.Chart{Result: []yahoo.Result{}}}
	return m
}

// WithMarketPrice sets meta.regularMarketPrice on the current response.
func (m *MockYahooClient) WithMarketPrice(price float64) *MockYahooClient {
	if len(m.MockResponse.Chart.Result) > 0 {
		m.MockResponse.Chart.Result[0].Meta.RegularMarketPrice = &price
	}
	return m
}

// CreateMockYahooResponse returns `days` daily bars ending yesterday.
func CreateMockYahooResponse(days int) yahoo.Response {
	now := time.Now().UTC()
	return CreateMockYahooResponseEnding(time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC), days)
}

// CreateMockYahooResponseEnding returns `days` consecutive daily bars whose last
// bar is at `last`. bar i closes at 100.25 + 0.5*i.
func CreateMockYahooResponseEnding(last time.Time, days int) yahoo.Response {
	bars := make([]bar, 0, days)
	for i := range days {
		open := 100 + float64(i)*0.5
		bars = append(bars, bar{
			At:     last.AddDate(0, 0, i+1-days),
			Open:   open,
			High:   open + 1,
			Low:    open - 0.5,
			Close:  open + 0.25,
			Volume: int64(1_000_000 + i*10_000),
		})
	}
	return chartResponse(bars...)
}

// CreateMockYahooResponseForDate returns a single flat bar at price.
func CreateMockYahooResponseForDate(date time.Time, price float64) yahoo.Response {
	return chartResponse(bar{At: date, Open: price, High: price, Low: price, Close: price, Volume: 1_000_000})
}

// bar is one row of a mocked chart.
type bar struct {
	At                     time.Time
	Open, High, Low, Close float64
	Volume                 int64
}

// chartResponse assembles a one-result chart response from bars.
func chartResponse(bars ...bar) yahoo.Response {
	quote := yahoo.Quote{
		Open:   make([]*float64, len(bars)),
		High:   make([]*float64, len(bars)),
		Low:    make([]*float64, len(bars)),
		Close:  make([]*float64, len(bars)),
		Volume: make([]*int64, len(bars)),
	}
	timestamps := make([]int64, len(bars))
	for i, b := range bars {
		timestamps[i] = b.At.Unix()
		quote.Open[i], quote.High[i], quote.Low[i], quote.Close[i] = &b.Open, &b.High, &b.Low, &b.Close
		quote.Volume[i] = &b.Volume
	}

	result := yahoo.Result{Meta: testMeta(), Timestamp: timestamps}
	result.Indicators.Quote = []yahoo.Quote{quote}
	return yahoo.Response{Chart: yahoo.Chart{Result: []yahoo.Result{result}}}
}

func testMeta() yahoo.Meta {
	return yahoo.Meta{
		Symbol:           "TEST",
		Currency:         "USD",
		ExchangeName:     "NMS",
		FullExchangeName: "NASDAQ",
		LongName:         "Test Fund Inc.",
		Shortname:        "TEST",
	}
}
