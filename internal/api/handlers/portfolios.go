package handlers

import (
	"fmt"
	"net/http"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/identity"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// PortfolioHandler handles HTTP requests for the caller's portfolio snapshot.
// The user id is read from the request context, where the identity
// middleware put it.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Load handles GET requests for the caller's snapshot.
//
// Endpoint: GET /api/portfolio (alias: GET /api/portfolio/load)
// Response: 200 OK with the snapshot, or data null if none was saved
// Error: 503 Service Unavailable if no store is configured
// Error: 500 Internal Server Error if the store fails
func (h *PortfolioHandler) Load(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	snapshot, err := h.portfolioService.LoadPortfolio(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, apperrors.ErrFailedToLoadPortfolio)
		return
	}

	if snapshot == nil {
		response.RespondJSON(w, http.StatusOK, response.DataResponse{
			Success: true,
			Data:    nil,
			Message: "No saved portfolio found",
		})
		return
	}

	response.RespondData(w, http.StatusOK, snapshot)
}

// Save handles POST requests that replace the caller's snapshot.
//
// Endpoint: POST /api/portfolio (alias: POST /api/portfolio/save)
// Request Body: the complete portfolio document as a JSON object
// Response: 200 OK with a confirmation message
// Error: 400 Bad Request for a malformed, empty or non-object body
// Error: 413 Request Entity Too Large for a body over the size cap
// Error: 503 Service Unavailable if no store is configured
// Error: 500 Internal Server Error if the store fails
func (h *PortfolioHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	snapshot, err := parseJSON[model.Snapshot](r)
	if err != nil {
		respondDecodeError(w, err, apperrors.ErrInvalidSnapshot)
		return
	}

	saved, err := h.portfolioService.SavePortfolio(r.Context(), userID, snapshot)
	if err != nil {
		respondServiceError(w, r, err, apperrors.ErrFailedToSavePortfolio)
		return
	}

	response.RespondMessage(w, http.StatusOK,
		fmt.Sprintf("Portfolio saved successfully at %v", saved[model.UpdatedAtField]))
}

// Delete handles DELETE requests that remove the caller's snapshot.
//
// Endpoint: DELETE /api/portfolio (alias: DELETE /api/portfolio/delete)
// Response: 200 OK with a confirmation message, also when nothing was stored
// Error: 503 Service Unavailable if no store is configured
// Error: 500 Internal Server Error if the store fails
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	if err := h.portfolioService.DeletePortfolio(r.Context(), userID); err != nil {
		respondServiceError(w, r, err, apperrors.ErrFailedToDeletePortfolio)
		return
	}

	response.RespondMessage(w, http.StatusOK, "Portfolio deleted successfully")
}
