package models

import (
	"github.com/jwaldner/breakingbad/internal/recommend"
	"github.com/jwaldner/breakingbad/internal/sweep"
)

// FieldValue represents a field with both raw data and formatted display
type FieldValue struct {
	Raw     interface{} `json:"raw"`     // For sorting: 10.450583
	Display string      `json:"display"` // For UI: "$10.45"
	Type    string      `json:"type"`    // For CSS: "currency"
}

// CalculateRequest is the calculator form. Pointer fields distinguish a
// missing field from an explicit zero.
type CalculateRequest struct {
	StockPrice       *float64 `json:"stockPrice"`
	StrikePrice      *float64 `json:"strikePrice"`
	InterestRate     *float64 `json:"interestRate"`
	DividendYield    *float64 `json:"dividendYield"`
	TimeToExpiration *float64 `json:"timeToExpiration"`
	Volatility       *float64 `json:"volatility"`

	// ExpirationDate (YYYY-MM-DD) may be sent instead of TimeToExpiration
	ExpirationDate string `json:"expirationDate,omitempty"`
}

// CalculationResponse mirrors the calculator's result panel.
type CalculationResponse struct {
	CallOptionPrice   float64               `json:"callOptionPrice"`
	PutOptionPrice    float64               `json:"putOptionPrice"`
	Delta             float64               `json:"delta"`
	ImpliedVolatility string                `json:"impliedVolatility"` // input σ, e.g. "20.0%"
	Timestamp         string                `json:"timestamp"`
	CDF               string                `json:"cdf"`
	Fields            map[string]FieldValue `json:"fields,omitempty"`
}

type HeatMapRequest struct {
	CalculateRequest
	Grid *sweep.Grid `json:"grid,omitempty"`
}

type HeatMapPoint struct {
	Volatility float64 `json:"volatility"` // percent
	CallPrice  float64 `json:"callPrice"`
	PutPrice   float64 `json:"putPrice"`
	Delta      float64 `json:"delta"`
	Hue        float64 `json:"hue"`
	PutHue     float64 `json:"putHue"`
}

type HeatMapResponse struct {
	Points  []HeatMapPoint `json:"points"`
	Omitted []float64      `json:"omitted"`
	CDF     string         `json:"cdf"`
}

type RecommendationRequest struct {
	CalculateRequest
	MarketCallPrice *float64 `json:"marketCallPrice"`
	MarketPutPrice  *float64 `json:"marketPutPrice"`
}

type RecommendationResponse struct {
	Calculation     CalculationResponse        `json:"calculation"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

type QuoteResponse struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	Change           float64 `json:"change"`
	ChangePercent    float64 `json:"changePercent"`
	Volume           int64   `json:"volume"`
	LatestTradingDay string  `json:"latestTradingDay"`
	Source           string  `json:"source"`
	Cached           bool    `json:"cached"`
}

type RateResponse struct {
	Rate   float64 `json:"rate"`
	Source string  `json:"source"`
	AsOf   string  `json:"asOf"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	CDF    string `json:"cdf"`
	Quotes string `json:"quotes"`
}
