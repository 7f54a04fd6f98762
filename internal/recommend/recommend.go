// Package recommend turns the gap between a market price and the model
// price into a buy, sell or hold call.
package recommend

import (
	"fmt"
	"math"

	"github.com/jwaldner/breakingbad/internal/pricing"
)

type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
	Hold Action = "hold"
)

type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// Policy holds the relative-difference thresholds as fractions of the
// theoretical price.
type Policy struct {
	High            float64
	Medium          float64
	InclusiveBounds bool
}

var DefaultPolicy = Policy{High: 0.10, Medium: 0.05}

func (p Policy) Validate() error {
	if math.IsNaN(p.High) || math.IsNaN(p.Medium) || p.Medium <= 0 || p.High < p.Medium {
		return fmt.Errorf("thresholds need 0 < medium <= high, got medium=%v high=%v", p.Medium, p.High)
	}
	return nil
}

func (p Policy) above(diff, threshold float64) bool {
	if p.InclusiveBounds {
		return diff >= threshold
	}
	return diff > threshold
}

type Recommendation struct {
	Type              OptionKind `json:"type"`
	Action            Action     `json:"action"`
	Confidence        Confidence `json:"confidence"`
	Reason            string     `json:"reason"`
	TheoreticalPrice  float64    `json:"theoreticalPrice"`
	MarketPrice       float64    `json:"marketPrice"`
	PriceDifference   float64    `json:"priceDifference"`
	PercentDifference float64    `json:"percentDifference"`
}

type Engine struct {
	policy Policy
}

func New(policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{policy: policy}, nil
}

func (e *Engine) Policy() Policy { return e.policy }

// Evaluate classifies one option. A market price above the model price is
// a sell signal.
func (e *Engine) Evaluate(kind OptionKind, theoretical, market float64) (*Recommendation, error) {
	if kind != Call && kind != Put {
		return nil, pricing.InvalidInput("recommend", "type", "unknown option type %q", kind)
	}
	if math.IsNaN(theoretical) || math.IsInf(theoretical, 0) || theoretical < 0 {
		return nil, pricing.InvalidInput("recommend", "theoreticalPrice", "must be a non-negative finite number, got %v", theoretical)
	}
	if math.IsNaN(market) || math.IsInf(market, 0) || market < 0 {
		return nil, pricing.InvalidInput("recommend", "marketPrice", "must be a non-negative finite number, got %v", market)
	}
	if theoretical == 0 {
		// Deep out of the money: no relative difference exists.
		return &Recommendation{
			Type:            kind,
			Action:          Hold,
			Confidence:      Low,
			Reason:          fmt.Sprintf("No Theoretical Value: the model prices this %s option at zero, so the market price of %.2f cannot be compared.", kind, market),
			MarketPrice:     market,
			PriceDifference: market,
		}, nil
	}

	diff := market - theoretical
	rel := diff / theoretical
	pct := rel * 100

	rec := &Recommendation{
		Type:              kind,
		TheoreticalPrice:  theoretical,
		MarketPrice:       market,
		PriceDifference:   diff,
		PercentDifference: pct,
	}

	p := e.policy
	switch {
	case p.above(rel, p.High):
		rec.Action, rec.Confidence = Sell, High
		rec.Reason = fmt.Sprintf("Strong Sell Signal: Market price is %.1f%% above theoretical value. This significant premium suggests an overvalued %s option.", pct, kind)
	case p.above(-rel, p.High):
		rec.Action, rec.Confidence = Buy, High
		rec.Reason = fmt.Sprintf("Strong Buy Signal: Market price is %.1f%% below theoretical value. This significant discount presents a potential buying opportunity.", -pct)
	case p.above(rel, p.Medium):
		rec.Action, rec.Confidence = Sell, Medium
		rec.Reason = fmt.Sprintf("Moderate Sell Signal: Market price is %.1f%% above theoretical value. Consider selling with careful monitoring.", pct)
	case p.above(-rel, p.Medium):
		rec.Action, rec.Confidence = Buy, Medium
		rec.Reason = fmt.Sprintf("Moderate Buy Signal: Market price is %.1f%% below theoretical value. Consider buying with careful monitoring.", -pct)
	default:
		rec.Action, rec.Confidence = Hold, Low
		rec.Reason = fmt.Sprintf("Neutral Position: Market price closely aligns with theoretical value (%.1f%% difference). Current market conditions suggest holding your position.", math.Abs(pct))
	}
	return rec, nil
}

// EvaluatePair returns the call recommendation followed by the put.
func (e *Engine) EvaluatePair(res *pricing.Result, marketCall, marketPut float64) ([]Recommendation, error) {
	if res == nil {
		return nil, pricing.InvalidInput("recommend", "result", "no theoretical prices")
	}
	call, err := e.Evaluate(Call, res.Call, marketCall)
	if err != nil {
		return nil, fmt.Errorf("call: %w", err)
	}
	put, err := e.Evaluate(Put, res.Put, marketPut)
	if err != nil {
		return nil, fmt.Errorf("put: %w", err)
	}
	return []Recommendation{*call, *put}, nil
}
