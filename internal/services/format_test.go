package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/recommend"
	"github.com/jwaldner/breakingbad/internal/sweep"
)

func TestFormatCalculation(t *testing.T) {
	res := &pricing.Result{
		Call:       10.450583572185565,
		Put:        5.573526022256971,
		Delta:      0.6368306511756191,
		Volatility: 0.2,
		CDF:        "erf",
		Timestamp:  time.Date(2024, 3, 15, 12, 0, 0, 123456789, time.UTC),
	}

	resp := DefaultFormatter.Calculation(res)
	require.Equal(t, 10.45, resp.CallOptionPrice)
	require.Equal(t, 5.57, resp.PutOptionPrice)
	require.Equal(t, 0.637, resp.Delta)
	require.Equal(t, "20.0%", resp.ImpliedVolatility)
	require.Equal(t, "2024-03-15T12:00:00Z", resp.Timestamp)
	require.Equal(t, "$10.45", resp.Fields["callOptionPrice"].Display)
	require.Equal(t, "20.0%", resp.Fields["impliedVolatility"].Display)
	require.Equal(t, "0.637", resp.Fields["delta"].Display)

	wide := Formatter{PricePlaces: 4, DeltaPlaces: 5}.Calculation(res)
	require.Equal(t, 10.4506, wide.CallOptionPrice)
	require.Equal(t, 0.63683, wide.Delta)
}

func TestFormatRoundsHalfUp(t *testing.T) {
	// 2.675 is stored as 2.67499999... in binary
	require.Equal(t, 2.68, round(2.675, 2))
	require.Equal(t, 1.01, round(1.005, 2))
}

func TestFormatHeatMap(t *testing.T) {
	hm := &sweep.HeatMap{
		Points:  []sweep.Point{{Volatility: 5, Call: 5.2876, Put: 0.4105, Delta: 0.8404, Hue: 240}},
		Omitted: []sweep.Omission{{Volatility: 7.5, Err: errors.New("boom")}},
		CDF:     "erf",
	}
	resp := DefaultFormatter.HeatMap(hm)
	require.Len(t, resp.Points, 1)
	require.Equal(t, 5.29, resp.Points[0].CallPrice)
	require.Equal(t, 0.41, resp.Points[0].PutPrice)
	require.Equal(t, 0.84, resp.Points[0].Delta)
	require.Equal(t, []float64{7.5}, resp.Omitted)
}

func TestFormatRecommendations(t *testing.T) {
	res := &pricing.Result{Call: 10.4506, Put: 5.5735, Volatility: 0.2}
	recs := []recommend.Recommendation{{Type: recommend.Call, TheoreticalPrice: 10.4506, MarketPrice: 12, PriceDifference: 1.5494, PercentDifference: 14.8259}}

	resp := DefaultFormatter.Recommendations(res, recs)
	require.Equal(t, 10.45, resp.Recommendations[0].TheoreticalPrice)
	require.Equal(t, 1.55, resp.Recommendations[0].PriceDifference)
	require.Equal(t, 14.8, resp.Recommendations[0].PercentDifference)
	// the input slice is left untouched
	require.Equal(t, 10.4506, recs[0].TheoreticalPrice)
}
