// Package app assembles the calculator, quote and rate stacks from a
// Config. cmd/server and cmd/bscalc share it.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jwaldner/breakingbad/internal/audit"
	"github.com/jwaldner/breakingbad/internal/config"
	"github.com/jwaldner/breakingbad/internal/logger"
	"github.com/jwaldner/breakingbad/internal/metrics"
	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/quotes"
	"github.com/jwaldner/breakingbad/internal/recommend"
	"github.com/jwaldner/breakingbad/internal/services"
	"github.com/jwaldner/breakingbad/internal/sweep"
	"github.com/jwaldner/breakingbad/internal/treasury"
)

type App struct {
	Config     *config.Config
	Metrics    *metrics.Metrics // nil when metrics are disabled
	Calculator *services.Calculator
	Quotes     quotes.Provider
	Rates      *treasury.Client
	Formatter  services.Formatter

	closers []func() error
}

type Option func(*settings)

type settings struct {
	sweepOpts []sweep.Option
}

// WithSweepOptions passes extra options to the sweep driver, e.g. a progress
// observer.
func WithSweepOptions(opts ...sweep.Option) Option {
	return func(s *settings) { s.sweepOpts = append(s.sweepOpts, opts...) }
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	a := &App{
		Config:    cfg,
		Formatter: services.Formatter{PricePlaces: cfg.Display.PricePlaces, DeltaPlaces: cfg.Display.DeltaPlaces},
	}
	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
	}

	calc, err := a.buildCalculator(s)
	if err != nil {
		return nil, err
	}
	a.Calculator = calc
	a.Quotes = a.buildQuotes()
	a.Rates = treasury.NewClient(
		treasury.WithBaseURL(cfg.Treasury.BaseURL),
		treasury.WithHTTPClient(&http.Client{Timeout: cfg.Treasury.Timeout}),
		treasury.WithFallback(cfg.Treasury.FallbackRate),
	)
	return a, nil
}

func (a *App) buildCalculator(s settings) (*services.Calculator, error) {
	cfg := a.Config

	cdf, err := pricing.CDFByName(cfg.Pricing.CDF)
	if err != nil {
		return nil, err
	}
	pricer := pricing.New(pricing.WithCDF(cdf))

	engine, err := recommend.New(recommend.Policy{
		High:            cfg.Recommend.High,
		Medium:          cfg.Recommend.Medium,
		InclusiveBounds: cfg.Recommend.InclusiveBounds,
	})
	if err != nil {
		return nil, fmt.Errorf("recommendation policy: %w", err)
	}

	grid := sweep.Grid{From: cfg.Sweep.From, To: cfg.Sweep.To, Step: cfg.Sweep.Step}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("sweep grid: %w", err)
	}
	driverOpts := append([]sweep.Option{sweep.WithParallelism(cfg.Sweep.Parallelism)}, s.sweepOpts...)
	driver := sweep.New(pricer, driverOpts...)

	calcOpts := []services.CalculatorOption{
		services.WithMetrics(a.Metrics),
		services.WithDefaultGrid(grid),
	}
	if cfg.Audit.Enabled {
		rec := audit.Open(audit.Options{
			File:       cfg.Audit.File,
			BufferSize: cfg.Audit.BufferSize,
			MaxSizeMB:  cfg.Audit.MaxSizeMB,
			MaxBackups: cfg.Audit.MaxBackups,
		})
		rec.OnDrop = a.Metrics.DropAudit
		a.closers = append(a.closers, rec.Close)
		calcOpts = append(calcOpts, services.WithAudit(rec))
		logger.Info.Printf("📋 Audit trail: %s", cfg.Audit.File)
	}

	logger.Info.Printf("🧮 Pricer CDF: %s, sweep %v..%v step %v (parallelism %d)",
		pricer.CDFName(), grid.From, grid.To, grid.Step, cfg.Sweep.Parallelism)
	return services.NewCalculator(pricer, driver, engine, calcOpts...), nil
}

// buildQuotes stacks cache over instrumentation over the API client, so cache
// hits never count as API calls.
func (a *App) buildQuotes() quotes.Provider {
	cfg := a.Config.Quotes

	client := quotes.NewAlphaVantage(cfg.APIKey,
		quotes.WithBaseURL(cfg.BaseURL),
		quotes.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		quotes.WithRatePerMinute(cfg.RatePerMinute),
	)
	if cfg.APIKey == "" {
		logger.Warn.Printf("⚠️ ALPHA_VANTAGE_API_KEY not set - quote lookup disabled, enter prices manually")
	}

	instrumented := quotes.NewInstrumented(client, a.Metrics, cfg.SlowThreshold)
	a.closers = append(a.closers, func() error { instrumented.Close(); return nil })

	var cache quotes.Cache
	switch cfg.Cache.Backend {
	case "memory":
		cache = quotes.NewMemoryCache(cfg.Cache.SizeMB)
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr, DB: cfg.Cache.RedisDB})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn.Printf("⚠️ Redis %s unreachable, quotes will bypass the cache until it is: %v", cfg.Cache.RedisAddr, err)
		}
		cancel()
		a.closers = append(a.closers, rdb.Close)
		cache = quotes.NewRedisCache(rdb, cfg.Cache.KeyPrefix)
	default:
		return instrumented
	}
	logger.Info.Printf("💾 Quote cache: %s (ttl %v)", cache.Name(), cfg.Cache.TTL)
	return quotes.NewCached(instrumented, cache, cfg.Cache.TTL, a.Metrics)
}

// Close flushes the audit trail, reports quote stats and releases
// connections, in reverse order of creation.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
