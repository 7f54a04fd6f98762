package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jwaldner/breakingbad/internal/logger"
	"github.com/jwaldner/breakingbad/internal/models"
	"github.com/jwaldner/breakingbad/internal/quotes"
	"github.com/jwaldner/breakingbad/internal/services"
	"github.com/jwaldner/breakingbad/internal/treasury"
)

// RateSource supplies the risk-free rate used to prefill the form.
type RateSource interface {
	RateWithFallback(ctx context.Context) treasury.Rate
}

// OptionsHandler handles calculator requests - DUMB HTTP layer only
type OptionsHandler struct {
	calculator *services.Calculator
	requests   *services.RequestService
	formatter  services.Formatter
	quotes     quotes.Provider
	rates      RateSource
}

// NewOptionsHandler creates a new options handler - just HTTP routing
func NewOptionsHandler(calc *services.Calculator, quoteProvider quotes.Provider, rates RateSource, formatter services.Formatter) *OptionsHandler {
	return &OptionsHandler{
		calculator: calc,
		requests:   services.NewRequestService(),
		formatter:  formatter,
		quotes:     quoteProvider,
		rates:      rates,
	}
}

// CalculateHandler prices one option pair
func (h *OptionsHandler) CalculateHandler(w http.ResponseWriter, r *http.Request) {
	in, err := h.requests.ParseCalculateRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.calculator.Calculate(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.formatter.Calculation(res))
}

// HeatMapHandler sweeps volatility over the requested (or default) grid
func (h *OptionsHandler) HeatMapHandler(w http.ResponseWriter, r *http.Request) {
	in, grid, err := h.requests.ParseHeatMapRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hm, err := h.calculator.HeatMap(r.Context(), in, grid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.formatter.HeatMap(hm))
}

// RecommendationsHandler compares model prices with market prices
func (h *OptionsHandler) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	in, marketCall, marketPut, err := h.requests.ParseRecommendationRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, recs, err := h.calculator.Recommend(r.Context(), in, marketCall, marketPut)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.formatter.Recommendations(res, recs))
}

// QuoteHandler looks up the current price of a symbol
func (h *OptionsHandler) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	q, err := h.quotes.Quote(r.Context(), symbol)
	if err != nil {
		logger.Warn.Printf("⚠️ Quote %s failed: %v", symbol, err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.formatter.Quote(q))
}

// RateHandler returns the current risk-free rate, falling back when the
// Treasury API is unavailable
func (h *OptionsHandler) RateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.formatter.Rate(h.rates.RateWithFallback(r.Context())))
}

// HealthHandler reports liveness
func (h *OptionsHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status: "ok",
		CDF:    h.calculator.CDFName(),
		Quotes: h.quotes.Name(),
	})
}
