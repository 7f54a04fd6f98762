package services

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jwaldner/breakingbad/internal/models"
	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/quotes"
	"github.com/jwaldner/breakingbad/internal/recommend"
	"github.com/jwaldner/breakingbad/internal/sweep"
	"github.com/jwaldner/breakingbad/internal/treasury"
)

// Formatter rounds results for display. Rounding is decimal half-up so 10.445
// shows as 10.45 regardless of its binary representation.
type Formatter struct {
	PricePlaces int32
	DeltaPlaces int32
}

var DefaultFormatter = Formatter{PricePlaces: 2, DeltaPlaces: 3}

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func (f Formatter) price(v float64) float64 { return round(v, f.PricePlaces) }
func (f Formatter) delta(v float64) float64 { return round(v, f.DeltaPlaces) }

func (f Formatter) Calculation(res *pricing.Result) models.CalculationResponse {
	return models.CalculationResponse{
		CallOptionPrice:   f.price(res.Call),
		PutOptionPrice:    f.price(res.Put),
		Delta:             f.delta(res.Delta),
		ImpliedVolatility: decimal.NewFromFloat(res.ImpliedVolatilityPercent()).StringFixed(1) + "%",
		Timestamp:         res.Timestamp.Format(time.RFC3339),
		CDF:               res.CDF,
		Fields: map[string]models.FieldValue{
			"callOptionPrice":   f.currency(res.Call),
			"putOptionPrice":    f.currency(res.Put),
			"delta":             f.number(res.Delta, f.DeltaPlaces),
			"impliedVolatility": f.percentage(res.Volatility),
		},
	}
}

func (f Formatter) HeatMap(hm *sweep.HeatMap) models.HeatMapResponse {
	resp := models.HeatMapResponse{
		Points:  make([]models.HeatMapPoint, 0, len(hm.Points)),
		Omitted: make([]float64, 0, len(hm.Omitted)),
		CDF:     hm.CDF,
	}
	for _, p := range hm.Points {
		resp.Points = append(resp.Points, models.HeatMapPoint{
			Volatility: p.Volatility,
			CallPrice:  f.price(p.Call),
			PutPrice:   f.price(p.Put),
			Delta:      f.delta(p.Delta),
			Hue:        round(p.Hue, 1),
			PutHue:     round(p.PutHue, 1),
		})
	}
	for _, o := range hm.Omitted {
		resp.Omitted = append(resp.Omitted, o.Volatility)
	}
	return resp
}

func (f Formatter) Recommendations(res *pricing.Result, recs []recommend.Recommendation) models.RecommendationResponse {
	out := make([]recommend.Recommendation, len(recs))
	for i, r := range recs {
		r.TheoreticalPrice = f.price(r.TheoreticalPrice)
		r.MarketPrice = f.price(r.MarketPrice)
		r.PriceDifference = f.price(r.PriceDifference)
		r.PercentDifference = round(r.PercentDifference, 1)
		out[i] = r
	}
	return models.RecommendationResponse{Calculation: f.Calculation(res), Recommendations: out}
}

func (f Formatter) Quote(q *quotes.Quote) models.QuoteResponse {
	return models.QuoteResponse{
		Symbol:           q.Symbol,
		Price:            q.Price,
		Change:           q.Change,
		ChangePercent:    q.ChangePercent,
		Volume:           q.Volume,
		LatestTradingDay: q.LatestTradingDay,
		Source:           q.Source,
		Cached:           q.Cached,
	}
}

func (f Formatter) Rate(r treasury.Rate) models.RateResponse {
	return models.RateResponse{
		Rate:   round(r.Rate, 6),
		Source: r.Source,
		AsOf:   r.AsOf.Format("2006-01-02"),
	}
}

func (f Formatter) currency(v float64) models.FieldValue {
	return models.FieldValue{
		Raw:     v,
		Display: "$" + decimal.NewFromFloat(v).StringFixed(f.PricePlaces),
		Type:    "currency",
	}
}

func (f Formatter) percentage(v float64) models.FieldValue {
	return models.FieldValue{
		Raw:     v,
		Display: decimal.NewFromFloat(v*100).StringFixed(1) + "%",
		Type:    "percentage",
	}
}

func (f Formatter) number(v float64, places int32) models.FieldValue {
	return models.FieldValue{
		Raw:     v,
		Display: decimal.NewFromFloat(v).StringFixed(places),
		Type:    "number",
	}
}
