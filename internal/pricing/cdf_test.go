package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCDFSymmetry(t *testing.T) {
	// The polynomial is only accurate to its approximation error; at x=0 it
	// returns the same p for both signs.
	tolerance := map[string]float64{"erf": 1e-12, "gonum": 1e-12, "polynomial": 1e-6}
	for _, cdf := range backends() {
		t.Run(cdf.Name(), func(t *testing.T) {
			tol, ok := tolerance[cdf.Name()]
			require.True(t, ok)
			for x := -8.0; x <= 8.0; x += 0.25 {
				require.InDelta(t, 1.0, cdf.CDF(x)+cdf.CDF(-x), tol, "x=%v", x)
			}
		})
	}
}

func TestCDFAgainstErf(t *testing.T) {
	exact := ErfCDF{}
	for x := -8.0; x <= 8.0; x += 0.01 {
		require.InDelta(t, exact.CDF(x), PolynomialCDF{}.CDF(x), 1e-6, "polynomial x=%v", x)
		require.InDelta(t, exact.CDF(x), GonumCDF{}.CDF(x), 1e-12, "gonum x=%v", x)
	}
}

func TestCDFKnownValues(t *testing.T) {
	for _, cdf := range backends() {
		require.InDelta(t, 0.5, cdf.CDF(0), 1e-6, cdf.Name())
		require.InDelta(t, 0.8413447460685429, cdf.CDF(1), 1e-6, cdf.Name())
		require.InDelta(t, 0.022750131948179195, cdf.CDF(-2), 1e-6, cdf.Name())
	}
}

func TestCDFByName(t *testing.T) {
	testCases := map[string]string{
		"":           "erf",
		"erf":        "erf",
		" ERF ":      "erf",
		"polynomial": "polynomial",
		"poly":       "polynomial",
		"gonum":      "gonum",
	}
	for in, want := range testCases {
		cdf, err := CDFByName(in)
		require.NoError(t, err, in)
		require.Equal(t, want, cdf.Name())
	}

	_, err := CDFByName("scipy")
	require.Error(t, err)
}
