package pricing

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// CDF evaluates the standard normal cumulative distribution function.
type CDF interface {
	CDF(x float64) float64
	Name() string
}

// ErfCDF is the exact form 0.5·(1+erf(x/√2)).
type ErfCDF struct{}

func (ErfCDF) CDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

func (ErfCDF) Name() string { return "erf" }

// Zelen & Severo coefficients (Abramowitz-Stegun 26.2.17).
const (
	zsP  = 0.2316419
	zsD  = 0.3989423
	zsB1 = 0.3193815
	zsB2 = -0.3565638
	zsB3 = 1.781478
	zsB4 = -1.821256
	zsB5 = 1.330274
)

// PolynomialCDF is the five-term rational approximation. With the
// coefficients truncated to seven digits the absolute error stays under 1e-6.
type PolynomialCDF struct{}

func (PolynomialCDF) CDF(x float64) float64 {
	t := 1.0 / (1.0 + zsP*math.Abs(x))
	d := zsD * math.Exp(-x*x/2)
	p := d * t * (zsB1 + t*(zsB2+t*(zsB3+t*(zsB4+t*zsB5))))
	if x > 0 {
		return 1 - p
	}
	return p
}

func (PolynomialCDF) Name() string { return "polynomial" }

// GonumCDF delegates to gonum's unit normal distribution.
type GonumCDF struct{}

func (GonumCDF) CDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

func (GonumCDF) Name() string { return "gonum" }

// CDFByName resolves the configured backend. An empty name selects erf.
func CDFByName(name string) (CDF, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "erf":
		return ErfCDF{}, nil
	case "polynomial", "zelen-severo", "poly":
		return PolynomialCDF{}, nil
	case "gonum":
		return GonumCDF{}, nil
	}
	return nil, fmt.Errorf("unknown cdf backend %q (want erf, polynomial or gonum)", name)
}
