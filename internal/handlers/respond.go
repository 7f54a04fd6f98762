package handlers

import (
	"context"
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/jwaldner/breakingbad/internal/logger"
	"github.com/jwaldner/breakingbad/internal/models"
	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/quotes"
	"github.com/jwaldner/breakingbad/internal/services"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error.Printf("❌ JSON encoding failed: %v", err)
		http.Error(w, "JSON encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// statusFor maps an error to its HTTP status and machine-readable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, quotes.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, quotes.ErrNotConfigured):
		return http.StatusServiceUnavailable, "not_configured"
	case errors.Is(err, pricing.ErrInvalidInput):
		return http.StatusBadRequest, pricing.KindInvalidInput.String()
	case errors.Is(err, pricing.ErrDegenerate):
		return http.StatusUnprocessableEntity, pricing.KindDegenerate.String()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, pricing.ErrUpstreamUnavailable):
		return http.StatusBadGateway, pricing.KindUpstream.String()
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	resp := models.ErrorResponse{
		Error:     code,
		Message:   err.Error(),
		RequestID: services.RequestID(r.Context()),
	}

	var perr *pricing.Error
	if errors.As(err, &perr) {
		resp.Field = perr.Field
		if perr.Err != nil {
			resp.Message = perr.Err.Error()
		}
	}
	if status >= http.StatusInternalServerError {
		logger.Error.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, resp)
}
