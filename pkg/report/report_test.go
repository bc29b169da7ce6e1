package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/raykavin/backview/pkg/chart"
	"github.com/raykavin/backview/pkg/logger/zerolog"
	"github.com/raykavin/backview/pkg/result"
	"github.com/raykavin/backview/pkg/sample"
	"github.com/raykavin/backview/pkg/series"
	"github.com/raykavin/backview/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	v := view.NewBuilder().Build(sample.Generate(sample.DefaultConfig()))

	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, v))

	out := buf.String()
	for _, id := range series.ChartIDs() {
		assert.Contains(t, out, id.String())
	}
	assert.Contains(t, out, "PROFIT PER TRADE")
	assert.Contains(t, out, "MEAN (95%)")
	assert.Contains(t, out, "open_time")
}

func TestSummaryWithFailures(t *testing.T) {
	arr := sample.Generate(sample.DefaultConfig())
	arr[3] = sample.Raw(nil)
	v := view.NewBuilder().Build(arr[:12])

	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, v))

	out := buf.String()
	assert.Contains(t, out, view.CodeMalformedPayload)
	assert.NotContains(t, out, "PROFIT PER TRADE")
	assert.Contains(t, out, "trade log unavailable")
}

func TestExport(t *testing.T) {
	arr := sample.Generate(sample.DefaultConfig())
	v := view.NewBuilder(view.WithCharts(series.RevenueCurve, series.ReboundCurve, series.BalanceAfterClose)).Build(arr)

	dir := filepath.Join(t.TempDir(), "charts")
	var progress bytes.Buffer
	paths, err := NewExporter(dir, 400, 300, &progress, zerolog.Nop()).Export(v)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, path := range paths {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(content, []byte("\x89PNG")), path)
	}
	assert.Equal(t, filepath.Join(dir, "revenue-curve.png"), paths[0])
	assert.NotEmpty(t, progress.String())
}

func TestExportSkipsFailedPanels(t *testing.T) {
	v := view.NewBuilder(view.WithCharts(series.RevenueCurve)).Build(result.Array{})

	paths, err := NewExporter(t.TempDir(), 400, 300, nil, zerolog.Nop()).Export(v)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestExportSinglePointAndBrokenChart(t *testing.T) {
	point := series.Series{Categories: []string{"2024-01-01 00:00:00"}, Values: []float64{1000}}
	line, err := chart.Assemble(point, series.KindLine)
	require.NoError(t, err)
	area, err := chart.Assemble(point, series.KindArea)
	require.NoError(t, err)

	v := &view.View{Panels: []view.Panel{
		{ID: series.RevenueCurve, Option: &line},
		{ID: series.PriceAndTrades, Option: &chart.Option{}},
		{ID: series.ReboundCurve, Option: &area},
	}}

	dir := t.TempDir()
	paths, err := NewExporter(dir, 400, 300, nil, zerolog.Nop()).Export(v)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "revenue-curve.png"),
		filepath.Join(dir, "rebound-curve.png"),
	}, paths)
	assert.NoFileExists(t, filepath.Join(dir, "price-and-trades.png"))

	for _, path := range paths {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(content, []byte("\x89PNG")), path)
	}
}
