package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client defines the interface for fetching financial data from Yahoo Finance.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error)
	QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error)
	ParseChart(yahooResult Response) (PriceChart, error)
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// Outbound requests share a token-bucket limiter so bursts of lookups do not get
// the host blocked by the provider.
type FinanceClient struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// Options configures a FinanceClient. Zero values select the defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// NewFinanceClient creates a new Yahoo Finance client.
//
// Returns:
//   - *FinanceClient: A new client instance ready for use
func NewFinanceClient(opts Options) *FinanceClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "application/json")

	return &FinanceClient{
		http:    client,
		limiter: limiter,
	}
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
// This method extracts price data (open, close, high, low, volume) and metadata
// (symbol, currency, exchange) from the Yahoo response format.
//
// The method performs validation to ensure:
//   - A result is present
//   - Timestamp data is present
//   - Close price data is present
//   - Data arrays are at least as long as the timestamp array
//
// Days with a null close are skipped. The returned indicators are sorted by date.
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, apperrors.ErrSymbolNotFound
	}
	result := yahooResult.Chart.Result[0]

	chart := PriceChart{
		Symbol:             result.Meta.Symbol,
		Currency:           result.Meta.Currency,
		ExchangeName:       result.Meta.ExchangeName,
		FullExchangeName:   result.Meta.FullExchangeName,
		LongName:           result.Meta.LongName,
		Shortname:          result.Meta.Shortname,
		RegularMarketPrice: result.Meta.RegularMarketPrice,
	}

	if len(result.Timestamp) == 0 {
		return chart, fmt.Errorf("%w: no price data returned", apperrors.ErrNoPriceData)
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return chart, fmt.Errorf("%w: no close prices returned", apperrors.ErrNoPriceData)
	}

	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Close) < n {
		return chart, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, 0, n)
	for i, ts := range result.Timestamp {
		closePrice := quote.Close[i]
		if closePrice == nil {
			continue
		}
		indicators = append(indicators, Indicators{
			Date:       time.Unix(ts, 0).UTC(),
			PriceClose: *closePrice,
			PriceOpen:  valueAt(quote.Open, i, *closePrice),
			PriceHigh:  valueAt(quote.High, i, *closePrice),
			PriceLow:   valueAt(quote.Low, i, *closePrice),
			Volume:     valueAt(quote.Volume, i, 0),
		})
	}

	sort.SliceStable(indicators, func(i, j int) bool {
		return indicators[i].Date.Before(indicators[j].Date)
	})
	chart.Indicators = indicators

	return chart, nil
}

// valueAt returns the i-th element of a nullable series, or fallback when
// the series is short or the value is null.
func valueAt[T any](series []*T, i int, fallback T) T {
	if i >= len(series) || series[i] == nil {
		return fallback
	}
	return *series[i]
}

// QueryYahooFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// The meta block of the response carries the regular market price, which is what
// a quote lookup needs; the daily closes are the fallback.
func (c *FinanceClient) QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	return c.queryYahoo(ctx, symbol, map[string]string{
		"interval": "1d",
		"range":    "5d",
	})
}

// QueryYahooSymbolByDateRange fetches daily price data for a symbol within a specific date range.
// The method uses Yahoo Finance's period-based query format with Unix timestamps.
func (c *FinanceClient) QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error) {
	return c.queryYahoo(ctx, symbol, map[string]string{
		"interval": "1d",
		"period1":  strconv.FormatInt(startDate.Unix(), 10),
		"period2":  strconv.FormatInt(endDate.Unix(), 10),
	})
}

// queryYahoo executes a chart request, waits on the rate limiter first, and
// translates Yahoo's error object into application errors.
func (c *FinanceClient) queryYahoo(ctx context.Context, symbol string, params map[string]string) (Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, err
		}
	}

	var result Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(params).
		SetResult(&result).
		SetError(&result).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return Response{}, fmt.Errorf("yahoo request failed: %w", err)
	}

	if result.Chart.Error != nil {
		if resp.StatusCode() == http.StatusNotFound || result.Chart.Error.Code == "Not Found" {
			return result, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, result.Chart.Error.Description)
		}
		return result, fmt.Errorf("yahoo error: %w", result.Chart.Error)
	}
	if resp.IsError() {
		return result, fmt.Errorf("yahoo returned status %d", resp.StatusCode())
	}
	if len(result.Chart.Result) == 0 {
		return result, fmt.Errorf("%w: no results returned for symbol %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return result, nil
}
