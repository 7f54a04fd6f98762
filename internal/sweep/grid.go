package sweep

import (
	"fmt"
	"math"
)

const maxLevels = 1000

// Grid is a volatility range in percent, inclusive of both ends.
type Grid struct {
	From float64 `json:"from" yaml:"from"`
	To   float64 `json:"to" yaml:"to"`
	Step float64 `json:"step" yaml:"step"`
}

// DefaultGrid is 5%, 7.5%, ..., 50%.
var DefaultGrid = Grid{From: 5, To: 50, Step: 2.5}

func (g Grid) Validate() error {
	for _, v := range []float64{g.From, g.To, g.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("grid bounds must be finite: %+v", g)
		}
	}
	if g.From <= 0 {
		return fmt.Errorf("grid must start above 0%%, got %v", g.From)
	}
	if g.Step <= 0 {
		return fmt.Errorf("grid step must be positive, got %v", g.Step)
	}
	if g.To < g.From {
		return fmt.Errorf("grid end %v is below start %v", g.To, g.From)
	}
	if n := (g.To-g.From)/g.Step + 1; n > maxLevels {
		return fmt.Errorf("grid has %.0f levels, limit is %d", math.Floor(n), maxLevels)
	}
	return nil
}

// Levels lists the grid in ascending order. Each level is From + i·Step so
// rounding does not accumulate across the range.
func (g Grid) Levels() []float64 {
	n := g.count()
	levels := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		levels = append(levels, g.From+float64(i)*g.Step)
	}
	return levels
}

func (g Grid) count() int {
	return int(math.Floor((g.To-g.From)/g.Step+1e-9)) + 1
}
