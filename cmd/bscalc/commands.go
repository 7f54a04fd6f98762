package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jwaldner/breakingbad/internal/app"
	"github.com/jwaldner/breakingbad/internal/pricing"
	"github.com/jwaldner/breakingbad/internal/sweep"
	"github.com/jwaldner/breakingbad/internal/treasury"
)

func newPriceCmd(g *globalFlags) *cobra.Command {
	in := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a call and a put",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := in.inputs(cmd, time.Now())
			if err != nil {
				return err
			}
			a, err := g.app()
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Calculator.Calculate(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			resp := a.Formatter.Calculation(res)
			if g.jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Call option price\t%s\n", resp.Fields["callOptionPrice"].Display)
			fmt.Fprintf(tw, "Put option price\t%s\n", resp.Fields["putOptionPrice"].Display)
			call, put := pricing.Intrinsic(inputs.StockPrice, inputs.StrikePrice)
			fmt.Fprintf(tw, "Intrinsic (call/put)\t$%.2f / $%.2f\n", call, put)
			fmt.Fprintf(tw, "Delta\t%s\n", resp.Fields["delta"].Display)
			fmt.Fprintf(tw, "Volatility\t%s\n", resp.Fields["impliedVolatility"].Display)
			fmt.Fprintf(tw, "CDF\t%s\n", resp.CDF)
			return tw.Flush()
		},
	}
	addInputFlags(cmd, in)
	return cmd
}

func newSweepCmd(g *globalFlags) *cobra.Command {
	in := &inputFlags{}
	var grid sweep.Grid
	var quiet bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Price across a volatility grid (heat map)",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := in.inputs(cmd, time.Now())
			if err != nil {
				return err
			}
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("from") {
				grid.From = cfg.Sweep.From
			}
			if !cmd.Flags().Changed("to") {
				grid.To = cfg.Sweep.To
			}
			if !cmd.Flags().Changed("step") {
				grid.Step = cfg.Sweep.Step
			}
			if err := grid.Validate(); err != nil {
				return err
			}

			var opts []app.Option
			var bar *progressbar.ProgressBar
			if !quiet && !g.jsonOutput {
				bar = progressbar.NewOptions(len(grid.Levels()),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("pricing"),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(20),
					progressbar.OptionClearOnFinish(),
				)
				opts = append(opts, app.WithSweepOptions(sweep.WithObserver(func(sweep.Point) { _ = bar.Add(1) })))
			}

			a, err := app.New(cfg, opts...)
			if err != nil {
				return err
			}
			defer a.Close()

			hm, err := a.Calculator.HeatMap(cmd.Context(), inputs, grid)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}
			resp := a.Formatter.HeatMap(hm)
			if g.jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Volatility\tCall\tPut\tDelta\t")
			for _, p := range resp.Points {
				fmt.Fprintf(tw, "%.1f%%\t%.2f\t%.2f\t%.3f\t\n", p.Volatility, p.CallPrice, p.PutPrice, p.Delta)
			}
			for _, v := range resp.Omitted {
				fmt.Fprintf(tw, "%.1f%%\tomitted\t\t\t\n", v)
			}
			return tw.Flush()
		},
	}
	addInputFlags(cmd, in)
	cmd.Flags().Float64Var(&grid.From, "from", sweep.DefaultGrid.From, "lowest volatility in percent")
	cmd.Flags().Float64Var(&grid.To, "to", sweep.DefaultGrid.To, "highest volatility in percent")
	cmd.Flags().Float64Var(&grid.Step, "step", sweep.DefaultGrid.Step, "volatility step in percent")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "hide the progress bar")
	return cmd
}

func newRecommendCmd(g *globalFlags) *cobra.Command {
	in := &inputFlags{}
	var marketCall, marketPut float64

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Compare model prices with market prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := in.inputs(cmd, time.Now())
			if err != nil {
				return err
			}
			a, err := g.app()
			if err != nil {
				return err
			}
			defer a.Close()

			res, recs, err := a.Calculator.Recommend(cmd.Context(), inputs, marketCall, marketPut)
			if err != nil {
				return err
			}
			resp := a.Formatter.Recommendations(res, recs)
			if g.jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			out := cmd.OutOrStdout()
			for _, r := range resp.Recommendations {
				fmt.Fprintf(out, "%s: %s (%s confidence)\n", r.Type, r.Action, r.Confidence)
				fmt.Fprintf(out, "  theoretical %.2f, market %.2f, difference %+.2f (%+.1f%%)\n",
					r.TheoreticalPrice, r.MarketPrice, r.PriceDifference, r.PercentDifference)
				fmt.Fprintf(out, "  %s\n", r.Reason)
			}
			return nil
		},
	}
	addInputFlags(cmd, in)
	cmd.Flags().Float64Var(&marketCall, "market-call", 0, "market price of the call")
	cmd.Flags().Float64Var(&marketPut, "market-put", 0, "market price of the put")
	_ = cmd.MarkFlagRequired("market-call")
	_ = cmd.MarkFlagRequired("market-put")
	return cmd
}

func newQuoteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Look up the current price of a stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.app()
			if err != nil {
				return err
			}
			defer a.Close()

			q, err := a.Quotes.Quote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp := a.Formatter.Quote(q)
			if g.jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %.2f (%+.2f, %+.2f%%) as of %s\n",
				resp.Symbol, resp.Price, resp.Change, resp.ChangePercent, resp.LatestTradingDay)
			return nil
		},
	}
}

func newRateCmd(g *globalFlags) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Show the current risk-free rate (Treasury Bills)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.app()
			if err != nil {
				return err
			}
			defer a.Close()

			var rate treasury.Rate
			if strict {
				r, err := a.Rates.RiskFreeRate(cmd.Context())
				if err != nil {
					return err
				}
				rate = *r
			} else {
				rate = a.Rates.RateWithFallback(cmd.Context())
			}
			resp := a.Formatter.Rate(rate)
			if g.jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f%% (%s, as of %s)\n", resp.Rate*100, resp.Source, resp.AsOf)
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of falling back when the Treasury API is down")
	return cmd
}
