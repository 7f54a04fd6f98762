package pricing

import "math"

// OptionInputs holds the six scalars of a single Black-Scholes evaluation.
// Rates, yield and volatility are decimals (0.05 for 5%), time is in years.
type OptionInputs struct {
	StockPrice       float64 `json:"stockPrice"`
	StrikePrice      float64 `json:"strikePrice"`
	InterestRate     float64 `json:"interestRate"`
	DividendYield    float64 `json:"dividendYield"`
	TimeToExpiration float64 `json:"timeToExpiration"`
	Volatility       float64 `json:"volatility"`
}

// WithVolatility returns a copy with σ replaced.
func (in OptionInputs) WithVolatility(sigma float64) OptionInputs {
	in.Volatility = sigma
	return in
}

// Validate rejects non-finite fields and non-positive S, X, t, σ.
func (in OptionInputs) Validate() error {
	if err := in.ValidateExceptVolatility(); err != nil {
		return err
	}
	return positive("volatility", in.Volatility)
}

// ValidateExceptVolatility checks every field the volatility sweep does not
// override.
func (in OptionInputs) ValidateExceptVolatility() error {
	if err := positive("stockPrice", in.StockPrice); err != nil {
		return err
	}
	if err := positive("strikePrice", in.StrikePrice); err != nil {
		return err
	}
	if err := finite("interestRate", in.InterestRate); err != nil {
		return err
	}
	if err := finite("dividendYield", in.DividendYield); err != nil {
		return err
	}
	return positive("timeToExpiration", in.TimeToExpiration)
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return InvalidInput("validate", field, "must be a finite number, got %v", v)
	}
	return nil
}

func positive(field string, v float64) error {
	if err := finite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return InvalidInput("validate", field, "must be greater than zero, got %v", v)
	}
	return nil
}
