package handlers

import (
	"net/http"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// Health reports that the API is up and whether the configured store answers.
//
// Endpoint: GET /api/health
// Response: 200 OK with model.HealthStatus
// Error: 503 Service Unavailable if the configured store does not answer
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.systemService.CheckHealth(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusServiceUnavailable, err.Error(), status)
		return
	}

	response.RespondData(w, http.StatusOK, status)
}
