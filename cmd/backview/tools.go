package main

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/backview/pkg/sample"
	"github.com/raykavin/backview/pkg/series"
	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"
)

func (a *app) buildChartsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "charts",
		Short: "List the available charts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			tbl := tablewriter.NewWriter(cmd.OutOrStdout())
			tbl.SetHeader([]string{"ID", "Title", "Kind", "Index"})
			tbl.SetAutoFormatHeaders(false)
			for _, def := range series.Definitions() {
				tbl.Append([]string{def.ID.String(), def.Title, def.Kind.String(), fmt.Sprint(def.Index)})
			}
			tbl.Render()
		},
	}
}

func (a *app) buildSampleCmd() *cobra.Command {
	var (
		cfg      = sample.DefaultConfig()
		interval string
	)

	sampleCmd := &cobra.Command{
		Use:   "sample <out.json>",
		Short: "Write a synthetic backtest response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := str2duration.ParseDuration(interval)
			if err != nil {
				return fmt.Errorf("invalid interval: %w", err)
			}
			if d < time.Minute {
				return fmt.Errorf("interval must be at least 1m")
			}
			cfg.Interval = d

			if err := saveResult(args[0], sample.Generate(cfg)); err != nil {
				return err
			}
			a.log.WithField("file", args[0]).Infof("sample with %d bars written", cfg.Bars)
			return nil
		},
	}

	sampleCmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	sampleCmd.Flags().IntVar(&cfg.Bars, "bars", cfg.Bars, "Number of candles")
	sampleCmd.Flags().StringVar(&interval, "interval", "5m", "Candle period (e.g. 5m, 1h, 1d)")
	sampleCmd.Flags().Float64Var(&cfg.Balance, "balance", cfg.Balance, "Initial balance")

	return sampleCmd
}

func (a *app) buildConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cfg.WriteYAML(cmd.OutOrStdout())
		},
	}
}
