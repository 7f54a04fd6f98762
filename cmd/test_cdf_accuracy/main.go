package main

import (
	"fmt"
	"math"
	"os"

	"github.com/jwaldner/breakingbad/internal/pricing"
)

// Compares the normal CDF backends against each other and on one short-dated
// put, so a backend change can be judged before it is configured.
func main() {
	fmt.Println("🎯 Testing CDF Accuracy Across Backends")
	fmt.Println("=======================================")

	reference := pricing.ErfCDF{}
	backends := []pricing.CDF{pricing.PolynomialCDF{}, pricing.GonumCDF{}}

	fmt.Printf("📊 Max |Φ(x) - erf Φ(x)| for x in [-8, 8], step 0.001:\n")
	failed := false
	for _, b := range backends {
		worst, at := 0.0, 0.0
		for i := -8000; i <= 8000; i++ {
			x := float64(i) / 1000
			if d := math.Abs(b.CDF(x) - reference.CDF(x)); d > worst {
				worst, at = d, x
			}
		}
		status := "✅"
		if worst > 1e-6 {
			status = "⚠️ "
			failed = true
		}
		fmt.Printf("   %s %-10s %.3e at x=%.3f\n", status, b.Name(), worst, at)
	}
	fmt.Println()

	// Short-dated out-of-the-money put where CDF tails matter
	in := pricing.OptionInputs{
		StockPrice:       188.36,
		StrikePrice:      166.0,
		InterestRate:     0.03983,
		TimeToExpiration: 0.057534246575342465,
		Volatility:       0.39963570444400937,
	}
	fmt.Printf("🔬 Put S=%.2f X=%.0f t=%.6f r=%.5f σ=%.6f:\n",
		in.StockPrice, in.StrikePrice, in.TimeToExpiration, in.InterestRate, in.Volatility)
	for _, b := range append([]pricing.CDF{reference}, backends...) {
		res, err := pricing.New(pricing.WithCDF(b)).Price(in)
		if err != nil {
			fmt.Printf("   ❌ %-10s %v\n", b.Name(), err)
			failed = true
			continue
		}
		fmt.Printf("   %-10s put $%.6f  call delta %.6f\n", b.Name(), res.Put, res.Delta)
	}

	if failed {
		os.Exit(1)
	}
}
