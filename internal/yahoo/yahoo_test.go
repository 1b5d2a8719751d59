package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
)

const chartJSON = `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "AAPL", "exchangeName": "NMS", "longName": "Apple Inc.", "shortName": "Apple", "regularMarketPrice": 190.5},
      "timestamp": [1717507800, 1717421400, 1717594200],
      "indicators": {"quote": [{
        "open":   [191.0, 189.0, null],
        "close":  [192.0, 190.0, null],
        "high":   [193.0, 191.0, null],
        "low":    [190.0, 188.0, null],
        "volume": [1000, 2000, null]
      }]}
    }],
    "error": null
  }
}`

func newTestServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFinanceClient_QueryYahooFiveDaySymbol(t *testing.T) {
	t.Run("requests the five day range for the symbol", func(t *testing.T) {
		var gotPath, gotRange string
		server := newTestServer(t, http.StatusOK, chartJSON, func(r *http.Request) {
			gotPath = r.URL.Path
			gotRange = r.URL.Query().Get("range")
		})
		client := NewFinanceClient(Options{BaseURL: server.URL})

		resp, err := client.QueryYahooFiveDaySymbol(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("QueryYahooFiveDaySymbol() returned unexpected error: %v", err)
		}

		if gotPath != "/v8/finance/chart/AAPL" {
			t.Errorf("Expected path '/v8/finance/chart/AAPL', got '%s'", gotPath)
		}
		if gotRange != "5d" {
			t.Errorf("Expected range '5d', got '%s'", gotRange)
		}
		if len(resp.Chart.Result) != 1 {
			t.Fatalf("Expected 1 result, got %d", len(resp.Chart.Result))
		}
		if resp.Chart.Result[0].Meta.RegularMarketPrice == nil || *resp.Chart.Result[0].Meta.RegularMarketPrice != 190.5 {
			t.Errorf("Expected regular market price 190.5, got %v", resp.Chart.Result[0].Meta.RegularMarketPrice)
		}
	})

	t.Run("maps yahoo not found to ErrSymbolNotFound", func(t *testing.T) {
		body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
		server := newTestServer(t, http.StatusNotFound, body, nil)
		client := NewFinanceClient(Options{BaseURL: server.URL})

		_, err := client.QueryYahooFiveDaySymbol(context.Background(), "NOPE")
		if !errors.Is(err, apperrors.ErrSymbolNotFound) {
			t.Errorf("Expected ErrSymbolNotFound, got %v", err)
		}
	})

	t.Run("returns error on non-json failure status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("Too Many Requests"))
		}))
		t.Cleanup(server.Close)
		client := NewFinanceClient(Options{BaseURL: server.URL})

		if _, err := client.QueryYahooFiveDaySymbol(context.Background(), "AAPL"); err == nil {
			t.Error("Expected error for 429 response")
		}
	})

	t.Run("honours context cancellation while rate limited", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK, chartJSON, nil)
		client := NewFinanceClient(Options{BaseURL: server.URL, RateLimit: 0.001, RateBurst: 1})

		if _, err := client.QueryYahooFiveDaySymbol(context.Background(), "AAPL"); err != nil {
			t.Fatalf("First call returned unexpected error: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if _, err := client.QueryYahooFiveDaySymbol(ctx, "AAPL"); err == nil {
			t.Error("Expected rate limiter to fail the second call")
		}
	})
}

func TestFinanceClient_QueryYahooSymbolByDateRange(t *testing.T) {
	var period1, period2 string
	server := newTestServer(t, http.StatusOK, chartJSON, func(r *http.Request) {
		period1 = r.URL.Query().Get("period1")
		period2 = r.URL.Query().Get("period2")
	})
	client := NewFinanceClient(Options{BaseURL: server.URL})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	if _, err := client.QueryYahooSymbolByDateRange(context.Background(), "AAPL", start, end); err != nil {
		t.Fatalf("QueryYahooSymbolByDateRange() returned unexpected error: %v", err)
	}

	if period1 != "1704067200" {
		t.Errorf("Expected period1 1704067200, got %s", period1)
	}
	if period2 != "1706745600" {
		t.Errorf("Expected period2 1706745600, got %s", period2)
	}
}

func TestFinanceClient_ParseChart(t *testing.T) {
	server := newTestServer(t, http.StatusOK, chartJSON, nil)
	client := NewFinanceClient(Options{BaseURL: server.URL})

	resp, err := client.QueryYahooFiveDaySymbol(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Query returned unexpected error: %v", err)
	}

	t.Run("sorts by date and skips null closes", func(t *testing.T) {
		chart, err := client.ParseChart(resp)
		if err != nil {
			t.Fatalf("ParseChart() returned unexpected error: %v", err)
		}

		if len(chart.Indicators) != 2 {
			t.Fatalf("Expected 2 indicators, got %d", len(chart.Indicators))
		}
		if !chart.Indicators[0].Date.Before(chart.Indicators[1].Date) {
			t.Error("Expected indicators sorted by ascending date")
		}
		if chart.Indicators[0].PriceClose != 190.0 {
			t.Errorf("Expected first close 190.0, got %f", chart.Indicators[0].PriceClose)
		}
		if last, ok := chart.LastClose(); !ok || last != 192.0 {
			t.Errorf("Expected last close 192.0, got %f (%v)", last, ok)
		}
		if chart.LongName != "Apple Inc." {
			t.Errorf("Expected long name 'Apple Inc.', got '%s'", chart.LongName)
		}
	})

	t.Run("returns ErrSymbolNotFound for empty result", func(t *testing.T) {
		_, err := client.ParseChart(Response{})
		if !errors.Is(err, apperrors.ErrSymbolNotFound) {
			t.Errorf("Expected ErrSymbolNotFound, got %v", err)
		}
	})

	t.Run("returns ErrNoPriceData without timestamps", func(t *testing.T) {
		_, err := client.ParseChart(Response{Chart: Chart{Result: []Result{{Meta: Meta{Symbol: "X"}}}}})
		if !errors.Is(err, apperrors.ErrNoPriceData) {
			t.Errorf("Expected ErrNoPriceData, got %v", err)
		}
	})

	t.Run("rejects mismatched lengths", func(t *testing.T) {
		c := 1.0
		_, err := client.ParseChart(Response{Chart: Chart{Result: []Result{{
			Timestamp:  []int64{1, 2},
			Indicators: IndicatorsContainer{Quote: []Quote{{Close: []*float64{&c}}}},
		}}}})
		if err == nil {
			t.Error("Expected mismatched lengths error")
		}
	})
}
