// Package client submits backtest parameters to the external backtest
// endpoint and returns its raw result array.
package client

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Request is the backtest parameter form. The binding tags are shared
// with the HTTP service, which binds the same struct.
type Request struct {
	StrategyKey           string  `json:"strategy_key" form:"strategy_key" binding:"required,oneof=ma20 dualma ThreeBarTrendStrategy DualMaStrategy_model"`
	Bar                   string  `json:"bar" form:"bar" binding:"required,oneof=1m 5m 15m 30m 1h 4h 1d"`
	MinUnit               float64 `json:"min_unit" form:"min_unit" binding:"gt=0"`
	Currency              string  `json:"currency" form:"currency" binding:"required"`
	InstID                string  `json:"instId" form:"instId" binding:"required"`
	Days                  int     `json:"days" form:"days" binding:"min=1,max=30"`
	InitialBalance        float64 `json:"initial_balance" form:"initial_balance" binding:"min=1000,max=20000"`
	Leverage              int     `json:"leverage" form:"leverage" binding:"min=1,max=20"`
	MaintenanceMarginRate float64 `json:"maintenance_margin_rate" form:"maintenance_margin_rate" binding:"min=0,max=0.1"`
	OpenFeeRate           float64 `json:"open_fee_rate" form:"open_fee_rate" binding:"min=0,max=0.01"`
	CloseFeeRate          float64 `json:"close_fee_rate" form:"close_fee_rate" binding:"min=0,max=0.01"`
}

// DefaultRequest returns the initial values of the form
func DefaultRequest() Request {
	return Request{
		StrategyKey:           "ma20",
		Bar:                   "5m",
		MinUnit:               10,
		Currency:              "BTC-USDT",
		InstID:                "BTC-USDT",
		Days:                  10,
		InitialBalance:        10000,
		Leverage:              1,
		MaintenanceMarginRate: 0.005,
		OpenFeeRate:           0.0001,
		CloseFeeRate:          0.0001,
	}
}

// Strategies lists the accepted strategy keys
var Strategies = []string{"ma20", "dualma", "ThreeBarTrendStrategy", "DualMaStrategy_model"}

// Bars lists the accepted candle periods
var Bars = []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// Validate checks every field against its allowed range
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
