// Package pricing evaluates the Black-Scholes closed form for European
// options with a continuous dividend yield.
package pricing

import (
	"math"
	"time"
)

// Result is one evaluation of the model.
type Result struct {
	Call       float64
	Put        float64
	Delta      float64 // call delta, e^{-qt}·N(d1)
	D1         float64
	D2         float64
	Volatility float64 // echoed input σ
	CDF        string
	Timestamp  time.Time
}

// ImpliedVolatilityPercent is the input σ expressed in percent. The name is
// kept for compatibility with existing clients; nothing is solved for.
func (r *Result) ImpliedVolatilityPercent() float64 {
	return r.Volatility * 100
}

// Pricer is safe for concurrent use.
type Pricer struct {
	cdf CDF
	now func() time.Time
}

type Option func(*Pricer)

func WithCDF(c CDF) Option {
	return func(p *Pricer) {
		if c != nil {
			p.cdf = c
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pricer) {
		if now != nil {
			p.now = now
		}
	}
}

func New(opts ...Option) *Pricer {
	p := &Pricer{cdf: ErfCDF{}, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CDFName reports which normal CDF backend the pricer uses.
func (p *Pricer) CDFName() string { return p.cdf.Name() }

// Price validates the inputs and evaluates call, put and call delta.
func (p *Pricer) Price(in OptionInputs) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	S, X := in.StockPrice, in.StrikePrice
	r, q := in.InterestRate, in.DividendYield
	t, sigma := in.TimeToExpiration, in.Volatility

	volSqrtT := sigma * math.Sqrt(t)
	if volSqrtT == 0 || !isFinite(volSqrtT) {
		return nil, Degenerate("price", "volatility", "σ·√t = %v", volSqrtT)
	}

	d1 := (math.Log(S/X) + (r-q+0.5*sigma*sigma)*t) / volSqrtT
	d2 := d1 - volSqrtT
	if !isFinite(d1) || !isFinite(d2) {
		return nil, Degenerate("price", "d1", "d1=%v d2=%v", d1, d2)
	}

	divDiscount := math.Exp(-q * t)
	rateDiscount := math.Exp(-r * t)
	if !isFinite(divDiscount) || !isFinite(rateDiscount) {
		return nil, Degenerate("price", "discount", "e^{-qt}=%v e^{-rt}=%v", divDiscount, rateDiscount)
	}

	nd1, nd2 := p.cdf.CDF(d1), p.cdf.CDF(d2)
	call := S*divDiscount*nd1 - X*rateDiscount*nd2
	put := X*rateDiscount*p.cdf.CDF(-d2) - S*divDiscount*p.cdf.CDF(-d1)
	delta := divDiscount * nd1

	tolerance := 1e-6 * (S + X)
	var err error
	if call, err = clampNonNegative("call", call, tolerance); err != nil {
		return nil, err
	}
	if put, err = clampNonNegative("put", put, tolerance); err != nil {
		return nil, err
	}
	if !isFinite(delta) {
		return nil, Degenerate("price", "delta", "delta=%v", delta)
	}

	return &Result{
		Call:       call,
		Put:        put,
		Delta:      delta,
		D1:         d1,
		D2:         d2,
		Volatility: sigma,
		CDF:        p.cdf.Name(),
		Timestamp:  p.now().UTC(),
	}, nil
}

// Intrinsic is the payoff at expiry: max(S−X,0) for the call, max(X−S,0)
// for the put.
func Intrinsic(stock, strike float64) (call, put float64) {
	return math.Max(stock-strike, 0), math.Max(strike-stock, 0)
}

func clampNonNegative(field string, v, tolerance float64) (float64, error) {
	if !isFinite(v) {
		return 0, Degenerate("price", field, "%s=%v", field, v)
	}
	if v < 0 {
		if v < -tolerance {
			return 0, Degenerate("price", field, "negative %s price %v", field, v)
		}
		return 0, nil
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
