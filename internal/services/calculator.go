package services

import (
	"context"
	"time"

	"github.com/jwaldner/breakingbad/internal/audit"
	"github.com/jwaldner/breakingbad/internal/logger"
	"github.com/jwaldner/breakingbad/internal/metrics"
	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/recommend"
	"github.com/jwaldner/breakingbad/internal/sweep"
)

type requestIDKey struct{}

// WithRequestID tags ctx so audit events can be correlated with access logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Calculator is the one place HTTP handlers and the CLI go through to price,
// sweep and recommend. Every call is audited and measured.
type Calculator struct {
	pricer  *pricing.Pricer
	driver  *sweep.Driver
	engine  *recommend.Engine
	audit   *audit.Recorder
	metrics *metrics.Metrics
	grid    sweep.Grid
}

type CalculatorOption func(*Calculator)

// WithAudit records every calculation. A nil recorder disables auditing.
func WithAudit(r *audit.Recorder) CalculatorOption {
	return func(c *Calculator) { c.audit = r }
}

func WithMetrics(m *metrics.Metrics) CalculatorOption {
	return func(c *Calculator) { c.metrics = m }
}

// WithDefaultGrid replaces the grid used when a sweep request carries none.
func WithDefaultGrid(g sweep.Grid) CalculatorOption {
	return func(c *Calculator) { c.grid = g }
}

func NewCalculator(p *pricing.Pricer, d *sweep.Driver, e *recommend.Engine, opts ...CalculatorOption) *Calculator {
	c := &Calculator{pricer: p, driver: d, engine: e, grid: sweep.DefaultGrid}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) CDFName() string { return c.pricer.CDFName() }

func (c *Calculator) DefaultGrid() sweep.Grid { return c.grid }

func (c *Calculator) Policy() recommend.Policy { return c.engine.Policy() }

// Calculate prices a single set of inputs.
func (c *Calculator) Calculate(ctx context.Context, in pricing.OptionInputs) (*pricing.Result, error) {
	start := time.Now()
	res, err := c.pricer.Price(in)
	c.finish(ctx, "calculate", start, in, res, err)
	return res, err
}

// HeatMap sweeps volatility over grid. A zero grid means the default one.
func (c *Calculator) HeatMap(ctx context.Context, in pricing.OptionInputs, grid sweep.Grid) (*sweep.HeatMap, error) {
	if grid == (sweep.Grid{}) {
		grid = c.grid
	}
	start := time.Now()
	hm, err := c.driver.Run(ctx, in, grid)
	var points []sweep.Point
	if hm != nil {
		c.metrics.AddSweepOmitted(len(hm.Omitted))
		points = hm.Points
	}
	c.finish(ctx, "heatmap", start, map[string]interface{}{"inputs": in, "grid": grid}, points, err)
	return hm, err
}

// Recommend prices in and compares both legs against the market.
func (c *Calculator) Recommend(ctx context.Context, in pricing.OptionInputs, marketCall, marketPut float64) (*pricing.Result, []recommend.Recommendation, error) {
	start := time.Now()
	res, err := c.pricer.Price(in)
	var recs []recommend.Recommendation
	if err == nil {
		recs, err = c.engine.EvaluatePair(res, marketCall, marketPut)
	}
	inputs := map[string]interface{}{"inputs": in, "marketCallPrice": marketCall, "marketPutPrice": marketPut}
	c.finish(ctx, "recommend", start, inputs, recs, err)
	if err != nil {
		return nil, nil, err
	}
	return res, recs, nil
}

func (c *Calculator) finish(ctx context.Context, op string, start time.Time, inputs, output interface{}, err error) {
	c.metrics.ObserveCalculation(op, start, err)

	event := audit.Event{
		Time:           start.UTC(),
		Kind:           op,
		RequestID:      RequestID(ctx),
		Inputs:         inputs,
		DurationMicros: time.Since(start).Microseconds(),
	}
	if err != nil {
		event.Error = err.Error()
		logger.Debug.Printf("🧮 %s failed: %v", op, err)
	} else {
		event.Output = output
	}
	if aerr := c.audit.Record(event); aerr != nil {
		logger.Verbose.Printf("📋 audit %s not recorded: %v", op, aerr)
	}
}
