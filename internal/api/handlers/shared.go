package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
)

// errorStatus maps sentinel errors to HTTP status codes. The first match wins.
var errorStatus = []struct {
	err    error
	status int
}{
	{apperrors.ErrInvalidSymbol, http.StatusBadRequest},
	{apperrors.ErrInvalidSnapshot, http.StatusBadRequest},
	{apperrors.ErrEmptyUserID, http.StatusBadRequest},
	{apperrors.ErrSymbolNotFound, http.StatusNotFound},
	{apperrors.ErrNoPriceData, http.StatusNotFound},
	{apperrors.ErrStoreNotConfigured, http.StatusServiceUnavailable},
	{apperrors.ErrStoreUnavailable, http.StatusServiceUnavailable},
}

// respondServiceError writes the failure envelope for err. Known sentinels
// keep their own message with the cause in details. Anything else is logged
// and answered with the fixed failure message only. Unreachable dependencies
// answer 503, the rest 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, failure error) {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			response.RespondError(w, m.status, m.err.Error(), err.Error())
			return
		}
	}

	status := http.StatusInternalServerError
	if isUnreachable(err) {
		status = http.StatusServiceUnavailable
	}

	slog.ErrorContext(r.Context(), failure.Error(), "error", err, "status", status)
	response.RespondError(w, status, failure.Error(), nil)
}

// respondDecodeError answers a request body that could not be decoded: 413
// when it exceeded the size cap, otherwise 400 with the invalid message.
func respondDecodeError(w http.ResponseWriter, err error, invalid error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.RespondError(w, http.StatusRequestEntityTooLarge, apperrors.ErrBodyTooLarge.Error(),
			fmt.Sprintf("limit is %d bytes", tooLarge.Limit))
		return
	}
	response.RespondError(w, http.StatusBadRequest, invalid.Error(), err.Error())
}

// isUnreachable reports network-level failures and timeouts.
func isUnreachable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// parseJSON decodes the request body into a value of type T.
// An empty body is an error.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, errors.New("request body is empty")
	}
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("invalid JSON body: %w", err)
	}
	return v, nil
}
