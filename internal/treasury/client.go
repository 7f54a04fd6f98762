// Package treasury fetches the current Treasury Bill rate to prefill the
// calculator's risk-free rate.
package treasury

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/jwaldner/breakingbad/internal/logger"
	"github.com/jwaldner/breakingbad/internal/pricing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL      = "https://api.fiscaldata.treasury.gov/services/api/fiscal_service"
	DefaultFallbackRate = 0.04
	DefaultTimeout      = 10 * time.Second

	ratesPath = "/v2/accounting/od/avg_interest_rates?fields=avg_interest_rate_amt,record_date&filter=security_desc:eq:Treasury%20Bills&sort=-record_date&page[size]=1"
)

// Rate is a risk-free rate as a decimal (0.0398 for 3.98%).
type Rate struct {
	Rate   float64   `json:"rate"`
	Source string    `json:"source"`
	AsOf   time.Time `json:"asOf"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	fallback   float64
	now        func() time.Time

	mu        sync.Mutex
	lastKnown *Rate
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithFallback sets the rate served before any fetch has succeeded.
func WithFallback(rate float64) Option {
	return func(c *Client) { c.fallback = rate }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		fallback:   DefaultFallbackRate,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ratesResponse struct {
	Data []struct {
		RecordDate            string `json:"record_date"`
		AvgInterestRateAmount string `json:"avg_interest_rate_amt"`
	} `json:"data"`
}

// RiskFreeRate fetches the most recent Treasury Bill rate and remembers it.
func (c *Client) RiskFreeRate(ctx context.Context) (*Rate, error) {
	rate, err := c.fetch(ctx)
	if err != nil {
		return nil, pricing.Upstream("treasury", err)
	}

	c.mu.Lock()
	c.lastKnown = rate
	c.mu.Unlock()

	logger.Verbose.Printf("📈 Fetched Treasury Bill rate: %.3f%% (%.6f decimal)", rate.Rate*100, rate.Rate)
	return rate, nil
}

// RateWithFallback never fails: it serves the last known rate, or the
// configured fallback, when the fetch does.
func (c *Client) RateWithFallback(ctx context.Context) Rate {
	rate, err := c.RiskFreeRate(ctx)
	if err == nil {
		return *rate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastKnown != nil {
		age := c.now().Sub(c.lastKnown.AsOf)
		logger.Warn.Printf("⚠️ Treasury API failed, using last known rate %.6f from %v ago: %v",
			c.lastKnown.Rate, age.Round(time.Minute), err)
		return Rate{Rate: c.lastKnown.Rate, Source: "fallback", AsOf: c.lastKnown.AsOf}
	}
	logger.Warn.Printf("⚠️ Treasury API failed, using default rate %.4f: %v", c.fallback, err)
	return Rate{Rate: c.fallback, Source: "fallback", AsOf: c.now().UTC()}
}

func (c *Client) fetch(ctx context.Context) (*Rate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ratesPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Treasury rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Treasury API returned status %d", resp.StatusCode)
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode Treasury response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("no Treasury rate data returned")
	}

	// "3.983" -> 0.03983
	raw := payload.Data[0].AvgInterestRateAmount
	pct, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate %q: %w", raw, err)
	}

	asOf := c.now().UTC()
	if d, err := time.Parse("2006-01-02", payload.Data[0].RecordDate); err == nil {
		asOf = d
	}
	return &Rate{Rate: pct / 100.0, Source: "treasury", AsOf: asOf}, nil
}
