package quotes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/jwaldner/breakingbad/internal/logger"
	"github.com/jwaldner/breakingbad/internal/pricing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultAlphaVantageURL = "https://www.alphavantage.co"

	// Free tier allows 5 requests per minute
	DefaultRatePerMinute = 5

	DefaultTimeout = 10 * time.Second
)

type AlphaVantage struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

type AlphaVantageOption func(*AlphaVantage)

func WithBaseURL(u string) AlphaVantageOption {
	return func(c *AlphaVantage) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) AlphaVantageOption {
	return func(c *AlphaVantage) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRatePerMinute caps outbound calls. Zero or less disables the limit.
func WithRatePerMinute(n int) AlphaVantageOption {
	return func(c *AlphaVantage) {
		if n <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
	}
}

func NewAlphaVantage(apiKey string, opts ...AlphaVantageOption) *AlphaVantage {
	c := &AlphaVantage{
		apiKey:     apiKey,
		baseURL:    DefaultAlphaVantageURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		now:        time.Now,
	}
	WithRatePerMinute(DefaultRatePerMinute)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AlphaVantage) Name() string { return "alphavantage" }

type globalQuoteResponse struct {
	GlobalQuote  map[string]string `json:"Global Quote"`
	Note         string            `json:"Note"`
	Information  string            `json:"Information"`
	ErrorMessage string            `json:"Error Message"`
}

// Quote fetches GLOBAL_QUOTE for symbol.
func (c *AlphaVantage) Quote(ctx context.Context, symbol string) (*Quote, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, pricing.Upstream("alphavantage", fmt.Errorf("rate limiter: %w", err))
	}

	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	logger.Verbose.Printf("📡 QUOTE: GET GLOBAL_QUOTE %s", symbol)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pricing.Upstream("alphavantage", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, pricing.Upstream("alphavantage", fmt.Errorf("status %d - %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pricing.Upstream("alphavantage", fmt.Errorf("decode response: %w", err))
	}

	switch {
	case payload.Note != "":
		return nil, pricing.Upstream("alphavantage", fmt.Errorf("throttled: %s", payload.Note))
	case payload.Information != "":
		return nil, pricing.Upstream("alphavantage", fmt.Errorf("throttled: %s", payload.Information))
	case payload.ErrorMessage != "":
		return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
	case len(payload.GlobalQuote) == 0:
		return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}

	return parseGlobalQuote(symbol, payload.GlobalQuote, c.now().UTC())
}

func parseGlobalQuote(symbol string, fields map[string]string, fetched time.Time) (*Quote, error) {
	price, err := number(fields, "05. price")
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("%s: no usable price: %w", symbol, ErrNotFound)
	}

	quote := &Quote{
		Symbol:           symbol,
		Price:            price,
		LatestTradingDay: fields["07. latest trading day"],
		Source:           "alphavantage",
		FetchedAt:        fetched,
	}
	if s := fields["01. symbol"]; s != "" {
		quote.Symbol = strings.ToUpper(s)
	}

	// Secondary fields are informational; a malformed one is left at zero
	quote.Open, _ = number(fields, "02. open")
	quote.High, _ = number(fields, "03. high")
	quote.Low, _ = number(fields, "04. low")
	quote.PreviousClose, _ = number(fields, "08. previous close")
	quote.Change, _ = number(fields, "09. change")
	quote.ChangePercent, _ = number(fields, "10. change percent")
	if v, err := strconv.ParseInt(strings.TrimSpace(fields["06. volume"]), 10, 64); err == nil {
		quote.Volume = v
	}
	return quote, nil
}

func number(fields map[string]string, key string) (float64, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(fields[key]), "%")
	if raw == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	return strconv.ParseFloat(raw, 64)
}
