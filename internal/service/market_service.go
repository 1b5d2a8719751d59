package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/validation"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/yahoo"
)

// DefaultPeriod is used when a history request names no period, or an unknown one.
const DefaultPeriod = "1M"

// DefaultCurrency is reported when the provider omits the quote currency.
const DefaultCurrency = "USD"

// pricePlaces is the number of decimal places prices are rounded to.
const pricePlaces = 4

// PeriodLookback maps a history period tag to its lookback in calendar days.
// The windows are wider than the tag names suggest so short periods still
// carry enough trading days for a chart; YTD is a fixed 365-day window.
var PeriodLookback = map[string]int{
	"1D":  20,
	"1W":  65,
	"1M":  250,
	"3M":  750,
	"6M":  1500,
	"YTD": 365,
}

// MarketService fetches quotes and daily price history from the market data provider.
// Nothing is cached: every call reaches the provider.
type MarketService struct {
	yahooClient yahoo.Client
	now         func() time.Time
}

// NewMarketService creates a new MarketService using the given provider client.
func NewMarketService(yahooClient yahoo.Client) *MarketService {
	return &MarketService{
		yahooClient: yahooClient,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for quote timestamps and history windows.
func (s *MarketService) WithClock(now func() time.Time) *MarketService {
	s.now = now
	return s
}

// ResolvePeriod normalizes a period tag and returns it with its lookback in days.
// Unknown or empty tags resolve to DefaultPeriod.
func ResolvePeriod(period string) (string, int) {
	tag := strings.ToUpper(strings.TrimSpace(period))
	if days, ok := PeriodLookback[tag]; ok {
		return tag, days
	}
	return DefaultPeriod, PeriodLookback[DefaultPeriod]
}

// GetPrice returns the latest price for a symbol.
//
// The price is the provider's regular market price, falling back to the most
// recent daily close when the market price is missing. The company name falls
// back from the long name to the short name to the symbol itself.
//
// Returns:
//   - model.PriceQuote: The quote, with a price greater than zero
//   - error: apperrors.ErrInvalidSymbol, apperrors.ErrSymbolNotFound,
//     apperrors.ErrNoPriceData, or a wrapped provider failure
func (s *MarketService) GetPrice(ctx context.Context, symbol string) (model.PriceQuote, error) {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return model.PriceQuote{}, err
	}

	raw, err := s.yahooClient.QueryYahooFiveDaySymbol(ctx, symbol)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}

	// A chart without daily closes can still carry a usable market price.
	chart, parseErr := s.yahooClient.ParseChart(raw)
	if parseErr != nil && !errors.Is(parseErr, apperrors.ErrNoPriceData) {
		return model.PriceQuote{}, fmt.Errorf("parse quote for %s: %w", symbol, parseErr)
	}

	price, ok := latestPrice(chart)
	if !ok {
		return model.PriceQuote{}, fmt.Errorf("%w for %s", apperrors.ErrNoPriceData, symbol)
	}

	return model.PriceQuote{
		Symbol:      symbol,
		Price:       roundPrice(price),
		CompanyName: firstNonEmpty(chart.LongName, chart.Shortname, symbol),
		Currency:    firstNonEmpty(chart.Currency, DefaultCurrency),
		Timestamp:   s.now().UTC(),
	}, nil
}

// GetHistory returns the daily price series for a symbol over a period tag.
//
// The request window is [now - lookback, now]. Points are ascending by date,
// at most one per date (the later provider row wins), and only points inside
// the window are returned.
//
// Returns:
//   - model.PriceHistory: The series with its resolved period tag
//   - error: apperrors.ErrInvalidSymbol, apperrors.ErrSymbolNotFound,
//     apperrors.ErrNoPriceData, or a wrapped provider failure
func (s *MarketService) GetHistory(ctx context.Context, symbol, period string) (model.PriceHistory, error) {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return model.PriceHistory{}, err
	}

	tag, days := ResolvePeriod(period)
	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)

	raw, err := s.yahooClient.QueryYahooSymbolByDateRange(ctx, symbol, start, end)
	if err != nil {
		return model.PriceHistory{}, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}
	chart, err := s.yahooClient.ParseChart(raw)
	if err != nil {
		return model.PriceHistory{}, fmt.Errorf("parse history for %s: %w", symbol, err)
	}

	points := historyPoints(chart.Indicators, start, end)
	if len(points) == 0 {
		return model.PriceHistory{}, fmt.Errorf("%w for %s in period %s", apperrors.ErrNoPriceData, symbol, tag)
	}

	return model.PriceHistory{
		Symbol: symbol,
		Period: tag,
		Count:  len(points),
		Points: points,
	}, nil
}

// historyPoints converts date-sorted indicators into points within [start, end],
// keeping the last row for each calendar date.
func historyPoints(indicators []yahoo.Indicators, start, end time.Time) []model.PriceHistoryPoint {
	points := make([]model.PriceHistoryPoint, 0, len(indicators))
	index := make(map[string]int, len(indicators))

	for _, v := range indicators {
		if v.Date.Before(start) || v.Date.After(end) {
			continue
		}

		point := model.PriceHistoryPoint{
			Date:   v.Date.UTC().Format("2006-01-02"),
			Open:   roundPrice(v.PriceOpen),
			High:   roundPrice(v.PriceHigh),
			Low:    roundPrice(v.PriceLow),
			Close:  roundPrice(v.PriceClose),
			Volume: v.Volume,
		}

		if i, seen := index[point.Date]; seen {
			points[i] = point
			continue
		}
		index[point.Date] = len(points)
		points = append(points, point)
	}

	return points
}

// latestPrice prefers the regular market price and falls back to the last close.
func latestPrice(chart yahoo.PriceChart) (float64, bool) {
	if p := chart.RegularMarketPrice; p != nil && *p > 0 {
		return *p, true
	}
	if p, ok := chart.LastClose(); ok && p > 0 {
		return p, true
	}
	return 0, false
}

// roundPrice rounds half away from zero to pricePlaces decimals.
func roundPrice(v float64) float64 {
	return decimal.NewFromFloat(v).Round(pricePlaces).InexactFloat64()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
