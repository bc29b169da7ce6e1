package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raykavin/backview/internal/config"
	"github.com/raykavin/backview/pkg/logger"
	"github.com/raykavin/backview/pkg/series"
	"github.com/spf13/cobra"
)

// app carries the state shared by every command once the configuration
// has been loaded
type app struct {
	configFile string
	logLevel   string

	cfg *config.Config
	log logger.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := new(app)

	rootCmd := &cobra.Command{
		Use:               "backview",
		Short:             "Visualize backtest results",
		Version:           "1.0.0",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log.level (e.g. debug)")

	rootCmd.AddCommand(
		a.buildServeCmd(),
		a.buildRunCmd(),
		a.buildRenderCmd(),
		a.buildChartsCmd(),
		a.buildSampleCmd(),
		a.buildConfigCmd(),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg, a.log = cfg, log
	return nil
}

// charts resolves render.charts, empty meaning every chart
func (a *app) charts() ([]series.ChartID, error) {
	ids, err := series.ParseChartIDs(a.cfg.Render.Charts)
	if err != nil {
		return nil, fmt.Errorf("render.charts: %w", err)
	}
	return ids, nil
}
