package view

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/raykavin/backview/pkg/bdata"
	"github.com/raykavin/backview/pkg/chart"
	"github.com/raykavin/backview/pkg/logger/zerolog"
	"github.com/raykavin/backview/pkg/metric"
	"github.com/raykavin/backview/pkg/result"
	"github.com/raykavin/backview/pkg/sample"
	"github.com/raykavin/backview/pkg/series"
	"github.com/raykavin/backview/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireView struct {
	Charts []struct {
		ID     string         `json:"id"`
		Title  string         `json:"title"`
		Option map[string]any `json:"option"`
		Domain *chart.Domain  `json:"domain"`
		Error  *ErrorBody     `json:"error"`
	} `json:"charts"`
	Table *struct {
		Columns []table.Column   `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	} `json:"table"`
	TableError *ErrorBody `json:"table_error"`
}

func decodeView(t *testing.T, v *View) wireView {
	t.Helper()
	content, err := json.Marshal(v)
	require.NoError(t, err)

	var out wireView
	require.NoError(t, json.Unmarshal(content, &out))
	return out
}

func TestBuildSample(t *testing.T) {
	v := NewBuilder().Build(sample.Generate(sample.DefaultConfig()))

	require.Len(t, v.Panels, len(series.ChartIDs()))
	assert.Empty(t, v.Failed())
	require.NoError(t, v.TableErr)
	require.NotNil(t, v.Table)

	for _, p := range v.Panels {
		require.NotNil(t, p.Option, p.ID)
		require.NotNil(t, p.Stats, p.ID)
		assert.NotEmpty(t, p.Title)
	}

	out := decodeView(t, v)
	require.Len(t, out.Charts, len(series.ChartIDs()))
	assert.Equal(t, "price-and-trades", out.Charts[0].ID)
	for _, c := range out.Charts {
		assert.Nil(t, c.Error, c.ID)
		assert.NotNil(t, c.Option, c.ID)
		assert.NotNil(t, c.Domain, c.ID)
	}
	require.NotNil(t, out.Table)
	assert.Nil(t, out.TableError)
	assert.Equal(t, "open_time", out.Table.Columns[0].Key)
}

func TestBuildIsolatesFailures(t *testing.T) {
	arr := sample.Generate(sample.DefaultConfig())
	arr[5] = sample.WrappedEntry(sample.Trace{
		"x": []string{"2024-01-01 00:00:00"},
		"y": bdata.Buffer{Data: "AAAAAA==", DType: "f4"},
	})

	var logs bytes.Buffer
	l, err := zerolog.New(&logs, zerolog.Config{Level: "info", JSON: true})
	require.NoError(t, err)

	v := NewBuilder(WithLogger(zerolog.NewAdapter(l))).Build(arr)

	failed := v.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, series.ReboundCurve, failed[0].ID)
	assert.Equal(t, "Rebound curve", failed[0].Title)
	assert.Nil(t, failed[0].Option)
	require.ErrorIs(t, failed[0].Err, bdata.ErrUnsupportedEncoding)

	ok, found := v.Panel(series.RevenueCurve)
	require.True(t, found)
	assert.NoError(t, ok.Err)
	assert.NotNil(t, v.Table)

	out := decodeView(t, v)
	require.NotNil(t, out.Charts[4].Error)
	assert.Equal(t, CodeUnsupportedEncoding, out.Charts[4].Error.Code)
	assert.Nil(t, out.Charts[4].Option)

	assert.Contains(t, logs.String(), "rebound-curve")
	assert.Contains(t, logs.String(), CodeUnsupportedEncoding)
}

func TestBuildMissingTable(t *testing.T) {
	arr := sample.Generate(sample.DefaultConfig())[:12]

	v := NewBuilder().Build(arr)
	assert.Empty(t, v.Failed())
	require.ErrorIs(t, v.TableErr, result.ErrIndexOutOfRange)

	out := decodeView(t, v)
	assert.Nil(t, out.Table)
	require.NotNil(t, out.TableError)
	assert.Equal(t, CodeIndexOutOfRange, out.TableError.Code)
}

func TestBuildEmptySeries(t *testing.T) {
	arr := sample.Generate(sample.DefaultConfig())
	arr[3] = sample.WrappedEntry(sample.Trace{"x": []string{}, "y": bdata.Encode(nil)})

	p := NewBuilder().Chart(series.TradingProfit, arr)
	require.ErrorIs(t, p.Err, chart.ErrEmptySeries)
	assert.Equal(t, CodeEmptySeries, ErrorCode(p.Err))
}

func TestWithCharts(t *testing.T) {
	b := NewBuilder(WithCharts(series.TradingProfit, "volume"), WithoutTable())
	v := b.Build(sample.Generate(sample.DefaultConfig()))

	require.Len(t, v.Panels, 2)
	assert.Equal(t, series.TradingProfit, v.Panels[0].ID)
	assert.NoError(t, v.Panels[0].Err)
	require.ErrorIs(t, v.Panels[1].Err, series.ErrUnknownChart)
	assert.Nil(t, v.Table)
	assert.NoError(t, v.TableErr)
}

func TestWithLocation(t *testing.T) {
	arr := sample.Generate(sample.DefaultConfig())
	arr[3] = sample.WrappedEntry(sample.Trace{
		"x": []int64{1704067200000},
		"y": bdata.Encode([]float64{5}),
	})

	loc := time.FixedZone("UTC+8", 8*3600)
	p := NewBuilder(WithLocation(loc)).Chart(series.TradingProfit, arr)
	require.NoError(t, p.Err)
	assert.Equal(t, []string{"2024-01-01 08:00:00"}, p.Option.Categories)
}

func TestErrorCode(t *testing.T) {
	tt := []struct {
		err  error
		code string
	}{
		{bdata.ErrUnsupportedEncoding, CodeUnsupportedEncoding},
		{fmt.Errorf("trading-profit: %w", bdata.ErrMalformedBuffer), CodeMalformedPayload},
		{fmt.Errorf("x: %w", result.ErrMalformedPayload), CodeMalformedPayload},
		{result.ErrIndexOutOfRange, CodeIndexOutOfRange},
		{chart.ErrEmptySeries, CodeEmptySeries},
		{table.ErrSchemaMismatch, CodeSchemaMismatch},
		{series.ErrUnknownChart, CodeUnknownChart},
		{errors.New("boom"), CodeInternal},
	}

	for _, tc := range tt {
		assert.Equal(t, tc.code, ErrorCode(tc.err), tc.err.Error())
	}

	assert.Nil(t, NewErrorBody(nil))
	assert.Equal(t, &ErrorBody{Code: CodeInternal, Message: "boom"}, NewErrorBody(errors.New("boom")))
}

func TestBuildOversizedValues(t *testing.T) {
	arr := sample.Generate(sample.DefaultConfig())
	arr[3] = sample.WrappedEntry(sample.Trace{
		"x": []string{"2024-01-01 00:00:00", "2024-01-01 00:05:00"},
		"y": bdata.Encode([]float64{1.7e308, 1.7e308}),
	})

	v := NewBuilder().Build(arr)
	failed := v.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, series.TradingProfit, failed[0].ID)
	assert.Equal(t, CodeMalformedPayload, ErrorCode(failed[0].Err))

	out := decodeView(t, v)
	require.Len(t, out.Charts, len(series.ChartIDs()))
	require.NotNil(t, out.Charts[2].Error)
	assert.Equal(t, CodeMalformedPayload, out.Charts[2].Error.Code)
	assert.NotNil(t, out.Charts[3].Option)
	require.NotNil(t, out.Table)
}

func TestMarshalOmitsNonFiniteStats(t *testing.T) {
	opt, err := chart.Assemble(series.Series{Categories: []string{"a"}, Values: []float64{1}}, series.KindBar)
	require.NoError(t, err)

	v := &View{Panels: []Panel{{
		ID:     series.TradingProfit,
		Option: &opt,
		Stats:  &metric.Summary{Count: 2, Sum: math.Inf(1), Mean: math.Inf(1), StdDev: math.NaN()},
	}}}

	content, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(content), `"stats"`)
}
