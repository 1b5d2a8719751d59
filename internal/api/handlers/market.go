package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// MarketHandler handles HTTP requests for quote and price history endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// provider access to the marketService.
type MarketHandler struct {
	marketService *service.MarketService
}

// NewMarketHandler creates a new MarketHandler with the provided service dependency.
func NewMarketHandler(marketService *service.MarketService) *MarketHandler {
	return &MarketHandler{
		marketService: marketService,
	}
}

// Price handles GET requests for the latest price of a symbol.
//
// Endpoint: GET /api/price/{symbol}
// Response: 200 OK with model.PriceQuote
// Error: 400 Bad Request for an invalid symbol
// Error: 404 Not Found if the provider has no price for the symbol
// Error: 500 Internal Server Error if the provider call fails
func (h *MarketHandler) Price(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	quote, err := h.marketService.GetPrice(r.Context(), symbol)
	if err != nil {
		respondServiceError(w, r, err, apperrors.ErrFailedToGetPrice)
		return
	}

	response.RespondData(w, http.StatusOK, quote)
}

// History handles GET requests for the daily price history of a symbol.
//
// Endpoint: GET /api/history/{symbol}?period={1D|1W|1M|3M|6M|YTD}
// Response: 200 OK, data is the []model.PriceHistoryPoint; symbol, period and count sit beside it
// Error: 400 Bad Request for an invalid symbol
// Error: 404 Not Found if the provider has no prices in the period
// Error: 500 Internal Server Error if the provider call fails
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	period := r.URL.Query().Get("period")

	history, err := h.marketService.GetHistory(r.Context(), symbol, period)
	if err != nil {
		respondServiceError(w, r, err, apperrors.ErrFailedToGetHistory)
		return
	}

	response.RespondSeries(w, http.StatusOK, history.Symbol, history.Period, history.Points, history.Count)
}
