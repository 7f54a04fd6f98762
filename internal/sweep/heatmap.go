// Package sweep reprices an option across a grid of volatility levels.
package sweep

import (
	"context"
	"math"

	"github.com/jwaldner/breakingbad/internal/logger"
	"github.com/jwaldner/breakingbad/internal/pricing"
	"golang.org/x/sync/errgroup"
)

// Pricer is the part of pricing.Pricer the driver needs.
type Pricer interface {
	Price(in pricing.OptionInputs) (*pricing.Result, error)
	CDFName() string
}

// Point is one row of the heat map. Volatility is in percent.
type Point struct {
	Volatility float64 `json:"volatility"`
	Call       float64 `json:"callPrice"`
	Put        float64 `json:"putPrice"`
	Delta      float64 `json:"delta"`
	Hue        float64 `json:"hue"`
	PutHue     float64 `json:"putHue"`
}

// Omission records a level that failed and was left out.
type Omission struct {
	Volatility float64
	Err        error
}

type HeatMap struct {
	Points  []Point
	Omitted []Omission
	CDF     string
}

type Driver struct {
	pricer      Pricer
	parallelism int
	observer    func(Point)
}

type Option func(*Driver)

// WithParallelism fans the grid out over n goroutines. Output order does
// not change.
func WithParallelism(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.parallelism = n
		}
	}
}

// WithObserver is called once per priced point. With parallelism above 1 it
// may be called from several goroutines at once.
func WithObserver(fn func(Point)) Option {
	return func(d *Driver) { d.observer = fn }
}

func New(p Pricer, opts ...Option) *Driver {
	d := &Driver{pricer: p, parallelism: 1}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run prices base once per grid level with the volatility overridden.
// A level that fails is logged and omitted; inputs that would fail at every
// level are rejected up front.
func (d *Driver) Run(ctx context.Context, base pricing.OptionInputs, grid Grid) (*HeatMap, error) {
	if err := grid.Validate(); err != nil {
		return nil, pricing.InvalidInput("sweep", "grid", "%v", err)
	}
	if err := base.ValidateExceptVolatility(); err != nil {
		return nil, err
	}

	levels := grid.Levels()
	points := make([]*Point, len(levels))
	failures := make([]error, len(levels))

	priceAt := func(i int) {
		res, err := d.pricer.Price(base.WithVolatility(levels[i] / 100))
		if err != nil {
			failures[i] = err
			return
		}
		pt := &Point{Volatility: levels[i], Call: res.Call, Put: res.Put, Delta: res.Delta}
		points[i] = pt
		if d.observer != nil {
			d.observer(*pt)
		}
	}

	if d.parallelism <= 1 {
		for i := range levels {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			priceAt(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.parallelism)
		for i := range levels {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				priceAt(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	hm := &HeatMap{Points: make([]Point, 0, len(levels)), CDF: d.pricer.CDFName()}
	for i, pt := range points {
		if pt == nil {
			logger.Warn.Printf("⚠️ SWEEP: omitting volatility %.1f%%: %v", levels[i], failures[i])
			hm.Omitted = append(hm.Omitted, Omission{Volatility: levels[i], Err: failures[i]})
			continue
		}
		hm.Points = append(hm.Points, *pt)
	}
	hm.Shade()
	return hm, nil
}

// Shade colours the call and put columns separately, each over its own
// range: the cheapest point gets 240 (blue) and the dearest 0 (red). A flat
// column is all 120.
func (hm *HeatMap) Shade() {
	shade(hm.Points, func(p *Point) (float64, *float64) { return p.Call, &p.Hue })
	shade(hm.Points, func(p *Point) (float64, *float64) { return p.Put, &p.PutHue })
}

func shade(points []Point, column func(*Point) (float64, *float64)) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range points {
		v, _ := column(&points[i])
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for i := range points {
		v, hue := column(&points[i])
		if hi == lo {
			*hue = 120
			continue
		}
		*hue = (1 - (v-lo)/(hi-lo)) * 240
	}
}
