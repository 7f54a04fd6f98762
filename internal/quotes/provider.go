// Package quotes looks up the current price of an underlying so the
// calculator can prefill its stock price.
package quotes

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jwaldner/breakingbad/internal/pricing"
)

var (
	ErrNotFound      = errors.New("quote not found")
	ErrNotConfigured = errors.New("quote provider not configured")
)

// Quote is a snapshot of one symbol.
type Quote struct {
	Symbol           string    `json:"symbol"`
	Price            float64   `json:"price"`
	Open             float64   `json:"open"`
	High             float64   `json:"high"`
	Low              float64   `json:"low"`
	PreviousClose    float64   `json:"previousClose"`
	Change           float64   `json:"change"`
	ChangePercent    float64   `json:"changePercent"`
	Volume           int64     `json:"volume"`
	LatestTradingDay string    `json:"latestTradingDay"`
	Source           string    `json:"source"`
	Cached           bool      `json:"cached"`
	FetchedAt        time.Time `json:"fetchedAt"`
}

//go:generate mockgen -destination=mock/provider.go -package=mockquotes github.com/jwaldner/breakingbad/internal/quotes Provider

// Provider defines the interface for quote sources
type Provider interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
	Name() string
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,9}$`)

// NormalizeSymbol trims and upper-cases a ticker and rejects anything that
// cannot be one.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", pricing.InvalidInput("quote", "symbol", "symbol is required")
	}
	if !symbolPattern.MatchString(s) {
		return "", pricing.InvalidInput("quote", "symbol", "%q is not a ticker symbol", symbol)
	}
	return s, nil
}
