package services

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/sweep"
)

const fullForm = `{"stockPrice":100,"strikePrice":95,"interestRate":0.05,"dividendYield":0,"timeToExpiration":0.5,"volatility":0.25}`

func TestParseCalculateRequest(t *testing.T) {
	s := NewRequestService()
	r := httptest.NewRequest("POST", "/api/calculate", strings.NewReader(fullForm))

	in, err := s.ParseCalculateRequest(httptest.NewRecorder(), r)
	require.NoError(t, err)
	require.Equal(t, pricing.OptionInputs{
		StockPrice:       100,
		StrikePrice:      95,
		InterestRate:     0.05,
		TimeToExpiration: 0.5,
		Volatility:       0.25,
	}, in)
}

func TestParseCalculateRequestMissingFields(t *testing.T) {
	s := NewRequestService()
	r := httptest.NewRequest("POST", "/api/calculate", strings.NewReader(`{"stockPrice":100,"interestRate":0,"dividendYield":0,"timeToExpiration":1}`))

	_, err := s.ParseCalculateRequest(httptest.NewRecorder(), r)
	require.True(t, errors.Is(err, pricing.ErrInvalidInput))

	var perr *pricing.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "strikePrice", perr.Field)
	require.Equal(t, "All fields are required. missing: strikePrice, volatility", perr.Err.Error())
}

func TestParseCalculateRequestExplicitZeroIsNotMissing(t *testing.T) {
	s := NewRequestService()
	body := strings.Replace(fullForm, `"volatility":0.25`, `"volatility":0`, 1)
	r := httptest.NewRequest("POST", "/api/calculate", strings.NewReader(body))

	in, err := s.ParseCalculateRequest(httptest.NewRecorder(), r)
	require.NoError(t, err)
	require.Zero(t, in.Volatility)
}

func TestParseCalculateRequestExpirationDate(t *testing.T) {
	s := NewRequestService()
	s.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	body := `{"stockPrice":100,"strikePrice":100,"interestRate":0.05,"dividendYield":0,"volatility":0.2,"expirationDate":"2024-06-14"}`
	in, err := s.ParseCalculateRequest(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader(body)))
	require.NoError(t, err)
	require.InDelta(t, 91/365.25, in.TimeToExpiration, 1e-12)

	both := strings.Replace(body, `"volatility"`, `"timeToExpiration":1,"volatility"`, 1)
	_, err = s.ParseCalculateRequest(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader(both)))
	require.True(t, errors.Is(err, pricing.ErrInvalidInput))
}

func TestParseCalculateRequestMalformed(t *testing.T) {
	s := NewRequestService()
	for _, body := range []string{`{`, `{"stockPrice":"abc"}`} {
		_, err := s.ParseCalculateRequest(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader(body)))
		require.True(t, errors.Is(err, pricing.ErrInvalidInput), body)
	}
}

func TestParseHeatMapRequest(t *testing.T) {
	s := NewRequestService()
	body := `{"stockPrice":100,"strikePrice":100,"interestRate":0.05,"dividendYield":0,"timeToExpiration":1}`

	_, grid, err := s.ParseHeatMapRequest(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader(body)))
	require.NoError(t, err)
	require.Equal(t, sweep.Grid{}, grid)

	withGrid := strings.TrimSuffix(body, "}") + `,"grid":{"from":10,"to":30,"step":5}}`
	_, grid, err = s.ParseHeatMapRequest(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader(withGrid)))
	require.NoError(t, err)
	require.Equal(t, sweep.Grid{From: 10, To: 30, Step: 5}, grid)
}

func TestParseRecommendationRequest(t *testing.T) {
	s := NewRequestService()

	body := strings.TrimSuffix(fullForm, "}") + `,"marketCallPrice":12.5,"marketPutPrice":3.1}`
	_, call, put, err := s.ParseRecommendationRequest(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader(body)))
	require.NoError(t, err)
	require.Equal(t, 12.5, call)
	require.Equal(t, 3.1, put)

	_, _, _, err = s.ParseRecommendationRequest(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader(fullForm)))
	var perr *pricing.Error
	require.True(t, errors.As(err, &perr))
	require.Contains(t, perr.Err.Error(), "missing: marketCallPrice, marketPutPrice")
}

func TestParseRejectsOversizedBody(t *testing.T) {
	s := NewRequestService()
	body := `{"stockPrice":` + strings.Repeat(" ", maxBodyBytes) + `100}`
	_, err := s.ParseCalculateRequest(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader(body)))
	require.ErrorIs(t, err, ErrBodyTooLarge)
	require.False(t, errors.Is(err, pricing.ErrInvalidInput))
}
