// Package sample builds synthetic result arrays with the same layout the
// backtest endpoint returns. It backs the CLI sample command and tests.
package sample

import (
	"encoding/json"
	"math"
	"math/rand"
	"time"

	"github.com/raykavin/backview/pkg/bdata"
	"github.com/raykavin/backview/pkg/result"
)

const TimeLayout = "2006-01-02 15:04:05"

// Config shapes the generated result
type Config struct {
	Seed     int64
	Bars     int
	Interval time.Duration
	Start    time.Time
	Balance  float64
}

// DefaultConfig returns a 5 minute, one day result
func DefaultConfig() Config {
	return Config{
		Seed:     42,
		Bars:     288,
		Interval: 5 * time.Minute,
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Balance:  10000,
	}
}

// Trace is a plot trace as written on the wire
type Trace map[string]any

// Plot encodes traces as the JSON text carried by a plot entry
func Plot(traces ...Trace) string {
	content, err := json.Marshal(map[string]any{"data": traces})
	if err != nil {
		panic(err)
	}
	return string(content)
}

// PlotEntry is an entry holding the plot text directly
func PlotEntry(traces ...Trace) json.RawMessage {
	return mustRaw(map[string]any{"plot": Plot(traces...)})
}

// WrappedEntry is an entry holding the plot text under value
func WrappedEntry(traces ...Trace) json.RawMessage {
	return mustRaw(map[string]any{"value": map[string]any{"plot": Plot(traces...)}})
}

// TableEntry is a tabular entry
func TableEntry(headers []string, data [][]any) json.RawMessage {
	return mustRaw(map[string]any{"headers": headers, "data": data})
}

// Raw encodes any value as an entry
func Raw(v any) json.RawMessage {
	return mustRaw(v)
}

func mustRaw(v any) json.RawMessage {
	content, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return content
}

type trade struct {
	open, close           int
	side                  string
	openPrice, closePrice float64
	profit                float64
}

// Generate builds a complete 13 entry result array
func Generate(cfg Config) result.Array {
	rnd := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Bars < 8 {
		cfg.Bars = 8
	}

	times := make([]string, cfg.Bars)
	prices := make([]float64, cfg.Bars)
	price := 42000.0
	for i := range prices {
		times[i] = cfg.Start.Add(time.Duration(i) * cfg.Interval).Format(TimeLayout)
		price += rnd.NormFloat64() * 40
		prices[i] = math.Round(price*100) / 100
	}

	trades := make([]trade, 0)
	for i := 0; i+4 < cfg.Bars; i += 6 {
		t := trade{open: i + 1, close: i + 4, side: "long"}
		if rnd.Intn(2) == 0 {
			t.side = "short"
		}
		t.openPrice, t.closePrice = prices[t.open], prices[t.close]
		t.profit = t.closePrice - t.openPrice
		if t.side == "short" {
			t.profit = -t.profit
		}
		t.profit = math.Round(t.profit*100) / 100
		trades = append(trades, t)
	}

	var (
		openTimes, closeTimes, profitTimes []string
		openPrices, closePrices, profits   []float64
		balances, revenue, rebound         []float64
		durations                          []float64
		longIncome, shortIncome            float64
		rows                               [][]any
	)

	balance, cumulative, peak := cfg.Balance, 0.0, 0.0
	for _, t := range trades {
		openTimes = append(openTimes, times[t.open])
		closeTimes = append(closeTimes, times[t.close])
		profitTimes = append(profitTimes, times[t.close])
		openPrices = append(openPrices, t.openPrice)
		closePrices = append(closePrices, t.closePrice)
		profits = append(profits, t.profit)

		balance += t.profit
		cumulative += t.profit
		peak = math.Max(peak, cumulative)
		balances = append(balances, math.Round(balance*100)/100)
		revenue = append(revenue, cumulative)
		rebound = append(rebound, cumulative-peak)
		durations = append(durations, float64(t.close-t.open)*cfg.Interval.Minutes())

		if t.side == "long" {
			longIncome += t.profit
		} else {
			shortIncome += t.profit
		}

		var note any
		if t.profit < 0 {
			note = "stop"
		}
		rows = append(rows, []any{times[t.open], times[t.close], t.side, t.openPrice, t.closePrice, t.profit, note})
	}

	return result.Array{
		PlotEntry(
			Trace{"name": "price", "x": times, "y": bdata.Encode(prices)},
			Trace{"name": "open", "x": openTimes, "y": openPrices},
			Trace{"name": "close", "x": closeTimes, "y": closePrices},
		),
		Raw("synthetic backtest result"),
		WrappedEntry(Trace{"x": profitTimes, "y": balances}),
		WrappedEntry(Trace{"x": profitTimes, "y": bdata.Encode(profits)}),
		WrappedEntry(Trace{"x": profitTimes, "y": bdata.Encode(revenue)}),
		WrappedEntry(Trace{"x": profitTimes, "y": bdata.Encode(rebound)}),
		WrappedEntry(Trace{"x": []string{"long", "short"}, "y": bdata.Encode([]float64{longIncome, shortIncome})}),
		WrappedEntry(Trace{"x": bdata.Encode(durations), "y": bdata.Encode(profits)}),
		Raw(nil),
		Raw(nil),
		Raw(nil),
		Raw(nil),
		TableEntry([]string{"open_time", "close_time", "side", "open_price", "close_price", "profit", "note"}, rows),
	}
}
