package treasury

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwaldner/breakingbad/internal/pricing"
)

const billsResponse = `{"data":[{"avg_interest_rate_amt":"3.983","record_date":"2024-02-29"}],"meta":{"count":1}}`

func TestRiskFreeRate(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(billsResponse))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	rate, err := c.RiskFreeRate(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 0.03983, rate.Rate, 1e-12)
	require.Equal(t, "treasury", rate.Source)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), rate.AsOf)
	require.Contains(t, query, "Treasury%20Bills")
}

func TestRiskFreeRateFailures(t *testing.T) {
	for name, handler := range map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
		"empty":  func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"data":[]}`)) },
		"bad":    func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"data":[{"avg_interest_rate_amt":"n/a"}]}`)) },
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := NewClient(WithBaseURL(srv.URL)).RiskFreeRate(context.Background())
			require.True(t, errors.Is(err, pricing.ErrUpstreamUnavailable), "got %v", err)
		})
	}
}

func TestRateWithFallback(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(billsResponse))
	}))
	defer srv.Close()

	t.Run("default before any success", func(t *testing.T) {
		fail.Store(true)
		c := NewClient(WithBaseURL(srv.URL), WithFallback(0.045))
		rate := c.RateWithFallback(context.Background())
		require.Equal(t, 0.045, rate.Rate)
		require.Equal(t, "fallback", rate.Source)
	})

	t.Run("last known after success", func(t *testing.T) {
		fail.Store(false)
		c := NewClient(WithBaseURL(srv.URL))
		require.Equal(t, "treasury", c.RateWithFallback(context.Background()).Source)

		fail.Store(true)
		rate := c.RateWithFallback(context.Background())
		require.InDelta(t, 0.03983, rate.Rate, 1e-12)
		require.Equal(t, "fallback", rate.Source)
	})
}
