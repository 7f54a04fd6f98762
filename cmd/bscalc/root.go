package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwaldner/breakingbad/internal/app"
	"github.com/jwaldner/breakingbad/internal/config"
	"github.com/jwaldner/breakingbad/internal/logger"
	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/utils"
)

type globalFlags struct {
	configFile string
	logLevel   string
	cdf        string
	jsonOutput bool
}

// inputFlags mirror the calculator form. Defaults are the textbook
// at-the-money example.
type inputFlags struct {
	stock    float64
	strike   float64
	rate     float64
	dividend float64
	years    float64
	vol      float64
	expiry   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "bscalc",
		Short:         "Black-Scholes option calculator",
		Long:          `bscalc prices European options, sweeps volatility and compares model prices with the market.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(c *cobra.Command, args []string) {
			_ = c.Help()
		},
	}

	root.PersistentFlags().StringVar(&g.configFile, "config", config.DefaultFile, "config file (missing file means defaults)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "error, warn, info, debug or verbose")
	root.PersistentFlags().StringVar(&g.cdf, "cdf", "", "normal CDF backend: erf, polynomial or gonum (default from config)")
	root.PersistentFlags().BoolVar(&g.jsonOutput, "json", false, "print JSON instead of a table")

	root.AddCommand(
		newPriceCmd(g),
		newSweepCmd(g),
		newRecommendCmd(g),
		newQuoteCmd(g),
		newRateCmd(g),
	)
	return root
}

func (g *globalFlags) load() (*config.Config, error) {
	if !logger.ValidLevel(g.logLevel) {
		return nil, fmt.Errorf("unknown log level %q", g.logLevel)
	}
	logger.InitWithLevel(g.logLevel)

	cfg, err := config.LoadFrom(g.configFile)
	if err != nil {
		return nil, err
	}
	if g.cdf != "" {
		cfg.Pricing.CDF = g.cdf
	}
	// one-shot commands have no scrape endpoint
	cfg.Metrics.Enabled = false
	return cfg, nil
}

func (g *globalFlags) app(opts ...app.Option) (*app.App, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, opts...)
}

func addInputFlags(cmd *cobra.Command, in *inputFlags) {
	f := cmd.Flags()
	f.Float64VarP(&in.stock, "stock", "s", 100, "current stock price")
	f.Float64VarP(&in.strike, "strike", "k", 100, "strike price")
	f.Float64VarP(&in.rate, "rate", "r", 0.05, "risk-free interest rate (decimal)")
	f.Float64VarP(&in.dividend, "dividend", "q", 0, "continuous dividend yield (decimal)")
	f.Float64VarP(&in.years, "time", "t", 1, "time to expiration in years")
	f.Float64VarP(&in.vol, "vol", "v", 0.2, "volatility (decimal)")
	f.StringVar(&in.expiry, "expiry", "", "expiration date YYYY-MM-DD, instead of --time")
}

func (in *inputFlags) inputs(cmd *cobra.Command, now time.Time) (pricing.OptionInputs, error) {
	out := pricing.OptionInputs{
		StockPrice:       in.stock,
		StrikePrice:      in.strike,
		InterestRate:     in.rate,
		DividendYield:    in.dividend,
		TimeToExpiration: in.years,
		Volatility:       in.vol,
	}
	if in.expiry == "" {
		return out, nil
	}
	if cmd.Flags().Changed("time") {
		return pricing.OptionInputs{}, pricing.InvalidInput("validate", "expirationDate", "use either --time or --expiry, not both")
	}
	years, err := utils.YearsToExpiration(in.expiry, now)
	if err != nil {
		return pricing.OptionInputs{}, err
	}
	out.TimeToExpiration = years
	return out, nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
