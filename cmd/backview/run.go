package main

import (
	"encoding/json"
	"os"

	"github.com/raykavin/backview/pkg/client"
	"github.com/raykavin/backview/pkg/result"
	"github.com/spf13/cobra"
)

func (a *app) buildRunCmd() *cobra.Command {
	var (
		req      = client.DefaultRequest()
		saveFile string
		flags    = new(renderFlags)
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a backtest on the configured endpoint and render the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := req.Validate(); err != nil {
				return err
			}

			a.log.WithFields(map[string]any{
				"strategy": req.StrategyKey,
				"inst":     req.InstID,
				"bar":      req.Bar,
				"days":     req.Days,
			}).Info("running backtest")

			arr, err := a.newClient().Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			if saveFile != "" {
				if err := saveResult(saveFile, arr); err != nil {
					return err
				}
				a.log.WithField("file", saveFile).Info("result saved")
			}
			return a.present(cmd, arr, flags)
		},
	}

	// Request flags
	runCmd.Flags().StringVarP(&req.StrategyKey, "strategy", "s", req.StrategyKey, "Strategy key")
	runCmd.Flags().StringVarP(&req.Bar, "bar", "b", req.Bar, "Candle period (e.g. 5m)")
	runCmd.Flags().Float64Var(&req.MinUnit, "min-unit", req.MinUnit, "Minimum order unit")
	runCmd.Flags().StringVar(&req.Currency, "currency", req.Currency, "Quote currency")
	runCmd.Flags().StringVarP(&req.InstID, "inst", "i", req.InstID, "Instrument id (e.g. BTC-USDT)")
	runCmd.Flags().IntVarP(&req.Days, "days", "d", req.Days, "Days of history, 1 to 30")
	runCmd.Flags().Float64Var(&req.InitialBalance, "balance", req.InitialBalance, "Initial balance, 1000 to 20000")
	runCmd.Flags().IntVarP(&req.Leverage, "leverage", "l", req.Leverage, "Leverage, 1 to 20")
	runCmd.Flags().Float64Var(&req.MaintenanceMarginRate, "margin-rate", req.MaintenanceMarginRate, "Maintenance margin rate")
	runCmd.Flags().Float64Var(&req.OpenFeeRate, "open-fee", req.OpenFeeRate, "Open fee rate")
	runCmd.Flags().Float64Var(&req.CloseFeeRate, "close-fee", req.CloseFeeRate, "Close fee rate")

	runCmd.Flags().StringVar(&saveFile, "save", "", "Save the raw response to this file")
	flags.register(runCmd)

	return runCmd
}

func saveResult(path string, arr result.Array) error {
	content, err := json.Marshal(result.Response{Data: arr})
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}
