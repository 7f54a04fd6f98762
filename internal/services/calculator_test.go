package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/jwaldner/breakingbad/internal/audit"
	"github.com/jwaldner/breakingbad/internal/metrics"
	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/recommend"
	"github.com/jwaldner/breakingbad/internal/sweep"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Close() error { return nil }

func (b *syncBuffer) events(t *testing.T) []audit.Event {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []audit.Event
	sc := bufio.NewScanner(bytes.NewReader(b.buf.Bytes()))
	for sc.Scan() {
		var e audit.Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	return out
}

var reference = pricing.OptionInputs{
	StockPrice:       100,
	StrikePrice:      100,
	InterestRate:     0.05,
	TimeToExpiration: 1,
	Volatility:       0.2,
}

func newCalculator(t *testing.T) (*Calculator, *syncBuffer, *metrics.Metrics) {
	t.Helper()
	p := pricing.New()
	engine, err := recommend.New(recommend.DefaultPolicy)
	require.NoError(t, err)

	out := &syncBuffer{}
	m := metrics.New()
	calc := NewCalculator(p, sweep.New(p), engine,
		WithAudit(audit.NewRecorder(out, 10)),
		WithMetrics(m),
	)
	return calc, out, m
}

func TestCalculateIsAudited(t *testing.T) {
	calc, out, m := newCalculator(t)
	ctx := WithRequestID(context.Background(), "req-1")

	res, err := calc.Calculate(ctx, reference)
	require.NoError(t, err)
	require.InDelta(t, 10.4506, res.Call, 1e-3)

	_, err = calc.Calculate(ctx, reference.WithVolatility(0))
	require.True(t, errors.Is(err, pricing.ErrInvalidInput))

	require.NoError(t, calc.audit.Close())
	events := out.events(t)
	require.Len(t, events, 2)
	require.Equal(t, "calculate", events[0].Kind)
	require.Equal(t, "req-1", events[0].RequestID)
	require.Empty(t, events[0].Error)
	require.NotNil(t, events[0].Output)
	require.Contains(t, events[1].Error, "volatility")
	require.Nil(t, events[1].Output)

	require.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("calculate", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("calculate", "error")))
}

func TestHeatMapUsesDefaultGrid(t *testing.T) {
	calc, _, _ := newCalculator(t)

	hm, err := calc.HeatMap(context.Background(), reference, sweep.Grid{})
	require.NoError(t, err)
	require.Len(t, hm.Points, 19)
	require.Equal(t, 5.0, hm.Points[0].Volatility)
	require.Equal(t, 50.0, hm.Points[18].Volatility)

	custom := WithDefaultGrid(sweep.Grid{From: 10, To: 20, Step: 5})
	custom(calc)
	hm, err = calc.HeatMap(context.Background(), reference, sweep.Grid{})
	require.NoError(t, err)
	require.Len(t, hm.Points, 3)
}

func TestRecommend(t *testing.T) {
	calc, _, _ := newCalculator(t)

	res, recs, err := calc.Recommend(context.Background(), reference, 12.0, 5.57)
	require.NoError(t, err)
	require.InDelta(t, 5.5735, res.Put, 1e-3)
	require.Len(t, recs, 2)
	require.Equal(t, recommend.Call, recs[0].Type)
	require.Equal(t, recommend.Sell, recs[0].Action)
	require.Equal(t, recommend.High, recs[0].Confidence)
	require.Equal(t, recommend.Hold, recs[1].Action)

	_, _, err = calc.Recommend(context.Background(), reference, -1, 5)
	require.True(t, errors.Is(err, pricing.ErrInvalidInput))
}

func TestCalculatorWithoutAuditOrMetrics(t *testing.T) {
	p := pricing.New()
	engine, err := recommend.New(recommend.DefaultPolicy)
	require.NoError(t, err)
	calc := NewCalculator(p, sweep.New(p), engine)

	_, err = calc.Calculate(context.Background(), reference)
	require.NoError(t, err)
	require.Equal(t, "erf", calc.CDFName())
	require.Equal(t, recommend.DefaultPolicy, calc.Policy())
}
