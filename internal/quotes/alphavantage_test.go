package quotes_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/quotes"
	"github.com/stretchr/testify/require"
)

const ibmQuote = `{
    "Global Quote": {
        "01. symbol": "IBM",
        "02. open": "168.9000",
        "03. high": "170.5200",
        "04. low": "168.0100",
        "05. price": "169.8300",
        "06. volume": "3520197",
        "07. latest trading day": "2024-03-15",
        "08. previous close": "168.4000",
        "09. change": "1.4300",
        "10. change percent": "0.8492%"
    }
}`

func newServer(t *testing.T, status int, body string) (*httptest.Server, *url.URL) {
	t.Helper()
	var seen url.URL
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = *r.URL
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func client(srv *httptest.Server, key string) *quotes.AlphaVantage {
	return quotes.NewAlphaVantage(key,
		quotes.WithBaseURL(srv.URL),
		quotes.WithHTTPClient(srv.Client()),
		quotes.WithRatePerMinute(0),
	)
}

func TestAlphaVantageQuote(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, ibmQuote)

	q, err := client(srv, "demo").Quote(context.Background(), " ibm ")
	require.NoError(t, err)

	require.Equal(t, "/query", seen.Path)
	require.Equal(t, "GLOBAL_QUOTE", seen.Query().Get("function"))
	require.Equal(t, "IBM", seen.Query().Get("symbol"))
	require.Equal(t, "demo", seen.Query().Get("apikey"))

	require.Equal(t, "IBM", q.Symbol)
	require.Equal(t, 169.83, q.Price)
	require.Equal(t, 168.4, q.PreviousClose)
	require.Equal(t, 1.43, q.Change)
	require.InDelta(t, 0.8492, q.ChangePercent, 1e-12)
	require.Equal(t, int64(3520197), q.Volume)
	require.Equal(t, "2024-03-15", q.LatestTradingDay)
	require.Equal(t, "alphavantage", q.Source)
	require.False(t, q.Cached)
}

func TestAlphaVantageFailures(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing global quote",
			status: http.StatusOK,
			body:   `{}`,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, quotes.ErrNotFound)
			},
		},
		{
			name:   "empty global quote",
			status: http.StatusOK,
			body:   `{"Global Quote": {}}`,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, quotes.ErrNotFound)
			},
		},
		{
			name:   "error message",
			status: http.StatusOK,
			body:   `{"Error Message": "Invalid API call."}`,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, quotes.ErrNotFound)
			},
		},
		{
			name:   "throttled",
			status: http.StatusOK,
			body:   `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
			check: func(t *testing.T, err error) {
				require.True(t, errors.Is(err, pricing.ErrUpstreamUnavailable))
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `upstream exploded`,
			check: func(t *testing.T, err error) {
				require.True(t, errors.Is(err, pricing.ErrUpstreamUnavailable))
				require.Contains(t, err.Error(), "502")
			},
		},
		{
			name:   "garbage body",
			status: http.StatusOK,
			body:   `<html>`,
			check: func(t *testing.T, err error) {
				require.True(t, errors.Is(err, pricing.ErrUpstreamUnavailable))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newServer(t, tc.status, tc.body)
			q, err := client(srv, "demo").Quote(context.Background(), "IBM")
			require.Nil(t, q)
			tc.check(t, err)
		})
	}
}

func TestAlphaVantageNotConfigured(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, ibmQuote)
	_, err := client(srv, "").Quote(context.Background(), "IBM")
	require.ErrorIs(t, err, quotes.ErrNotConfigured)
}

func TestAlphaVantageRejectsBadSymbol(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, ibmQuote)
	for _, s := range []string{"", "   ", "IBM;DROP", "WAYTOOLONGSYMBOL"} {
		_, err := client(srv, "demo").Quote(context.Background(), s)
		require.True(t, errors.Is(err, pricing.ErrInvalidInput), "symbol %q", s)
	}
}

func TestAlphaVantageUnreachable(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, ibmQuote)
	c := client(srv, "demo")
	srv.Close()

	_, err := c.Quote(context.Background(), "IBM")
	require.True(t, errors.Is(err, pricing.ErrUpstreamUnavailable))
}

func TestNormalizeSymbol(t *testing.T) {
	for in, want := range map[string]string{"aapl": "AAPL", " brk.b ": "BRK.B", "rds-a": "RDS-A"} {
		got, err := quotes.NormalizeSymbol(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
