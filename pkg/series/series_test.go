package series

import (
	"sort"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/raykavin/backview/pkg/bdata"
	"github.com/raykavin/backview/pkg/result"
	"github.com/raykavin/backview/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layout builds a result array with entry at index and filler elsewhere
func layout(index int, entry []byte) result.Array {
	arr := make(result.Array, 13)
	for i := range arr {
		arr[i] = sample.Raw(nil)
	}
	arr[index] = entry
	return arr
}

func TestTradingProfit_EndToEnd(t *testing.T) {
	arr := layout(3, sample.WrappedEntry(sample.Trace{
		"x": []int64{0, 1},
		"y": bdata.Encode([]float64{10, 20}),
	}))

	s, err := NewExtractor().Extract(TradingProfit, arr)
	require.NoError(t, err)
	require.Equal(t, []float64{10, 20}, s.Values)
	require.Equal(t, []string{"1970-01-01 00:00:00", "1970-01-01 00:00:00"}, s.Categories)
}

func TestSingleTraceCharts(t *testing.T) {
	x := []string{"2024-01-01 00:00:00", "2024-01-01T00:05:00", "2024-01-01 00:10:00.250"}
	want := []string{"2024-01-01 00:00:00", "2024-01-01 00:05:00", "2024-01-01 00:10:00"}

	testCases := []struct {
		id    ChartID
		index int
		y     any
	}{
		{BalanceAfterClose, 2, []float64{100, 101.5, 99}},
		{TradingProfit, 3, bdata.Encode([]float64{100, 101.5, 99})},
		{RevenueCurve, 4, bdata.Encode([]float64{100, 101.5, 99})},
		{ReboundCurve, 5, bdata.Encode([]float64{100, 101.5, 99})},
	}

	for _, tc := range testCases {
		t.Run(tc.id.String(), func(t *testing.T) {
			arr := layout(tc.index, sample.WrappedEntry(sample.Trace{"x": x, "y": tc.y}))

			s, err := NewExtractor().Extract(tc.id, arr)
			require.NoError(t, err)
			require.Equal(t, want, s.Categories)
			require.Equal(t, []float64{100, 101.5, 99}, s.Values)
			require.Empty(t, s.Markers)
		})
	}
}

func TestBalanceAfterClose_RejectsEncodedY(t *testing.T) {
	arr := layout(2, sample.WrappedEntry(sample.Trace{
		"x": []string{"2024-01-01"},
		"y": bdata.Encode([]float64{1}),
	}))

	_, err := NewExtractor().Extract(BalanceAfterClose, arr)
	require.ErrorIs(t, err, result.ErrMalformedPayload)
}

func TestIncomeComparison_RawLabels(t *testing.T) {
	arr := layout(6, sample.WrappedEntry(sample.Trace{
		"x": []string{"2024-01-01", "short"},
		"y": bdata.Encode([]float64{12.5, -3}),
	}))

	s, err := NewExtractor().Extract(IncomeComparison, arr)
	require.NoError(t, err)
	require.Equal(t, []string{"2024-01-01", "short"}, s.Categories)
	require.Equal(t, []float64{12.5, -3}, s.Values)
}

func TestDurationVsIncome_DecodedX(t *testing.T) {
	arr := layout(7, sample.WrappedEntry(sample.Trace{
		"x": bdata.Encode([]float64{15, 2.5}),
		"y": bdata.Encode([]float64{-1, 4}),
	}))

	s, err := NewExtractor().Extract(DurationVsIncome, arr)
	require.NoError(t, err)
	require.Equal(t, []string{"15", "2.5"}, s.Categories)
	require.Equal(t, []float64{-1, 4}, s.Values)

	literal := layout(7, sample.WrappedEntry(sample.Trace{"x": []float64{15}, "y": bdata.Encode([]float64{1})}))
	_, err = NewExtractor().Extract(DurationVsIncome, literal)
	require.ErrorIs(t, err, result.ErrMalformedPayload)
}

func TestExtract_UnsupportedEncoding(t *testing.T) {
	arr := layout(4, sample.WrappedEntry(sample.Trace{
		"x": []string{"2024-01-01"},
		"y": bdata.Buffer{Data: "AAAAAAAAJEA=", DType: "f4"},
	}))

	_, err := NewExtractor().Extract(RevenueCurve, arr)
	require.ErrorIs(t, err, bdata.ErrUnsupportedEncoding)
}

func TestExtract_LengthMismatch(t *testing.T) {
	arr := layout(3, sample.WrappedEntry(sample.Trace{
		"x": []string{"2024-01-01", "2024-01-02"},
		"y": bdata.Encode([]float64{1}),
	}))

	_, err := NewExtractor().Extract(TradingProfit, arr)
	require.ErrorIs(t, err, result.ErrMalformedPayload)
}

func TestExtract_ShortResult(t *testing.T) {
	_, err := NewExtractor().Extract(DurationVsIncome, result.Array{sample.Raw(nil)})
	require.ErrorIs(t, err, result.ErrIndexOutOfRange)
}

func TestExtract_BadTimestamp(t *testing.T) {
	arr := layout(5, sample.WrappedEntry(sample.Trace{
		"x": []string{"yesterday"},
		"y": bdata.Encode([]float64{1}),
	}))

	_, err := NewExtractor().Extract(ReboundCurve, arr)
	require.ErrorIs(t, err, result.ErrMalformedPayload)
}

func TestPriceAndTrades_MergesTimeline(t *testing.T) {
	arr := layout(0, sample.PlotEntry(
		sample.Trace{
			"x": []string{"2024-01-01 00:10:00", "2024-01-01 00:00:00", "2024-01-01 00:05:00"},
			"y": bdata.Encode([]float64{3, 1, 2}),
		},
		sample.Trace{"name": "open", "x": []string{"2024-01-01 00:05:00"}, "y": []float64{2.1}},
		sample.Trace{"x": []string{"2024-01-01 00:07:30", "2024-01-01 00:10:00"}, "y": []float64{2.5, 3.1}},
	))

	s, err := NewExtractor().Extract(PriceAndTrades, arr)
	require.NoError(t, err)
	require.Equal(t, []string{
		"2024-01-01 00:00:00",
		"2024-01-01 00:05:00",
		"2024-01-01 00:07:30",
		"2024-01-01 00:10:00",
	}, s.Categories)
	// 00:07:30 has no price point and carries 00:05:00 forward
	require.Equal(t, []float64{1, 2, 2, 3}, s.Values)
	require.Len(t, s.Markers, 2)
	require.Equal(t, Marker{Name: "open", Values: []float64{0, 2.1, 0, 0}}, s.Markers[0])
	require.Equal(t, Marker{Name: "trace 2", Values: []float64{0, 0, 2.5, 3.1}}, s.Markers[1])
	require.Zero(t, s.Dropped)
}

func TestPriceAndTrades_DeduplicatesAndLeadingFill(t *testing.T) {
	arr := layout(0, sample.PlotEntry(
		sample.Trace{
			"x": []string{"2024-01-01 00:05:00", "2024-01-01 00:05:00.500"},
			"y": bdata.Encode([]float64{7, 8}),
		},
		sample.Trace{"x": "2024-01-01 00:00:00", "y": 6.5},
		sample.Trace{"x": []string{}, "y": []float64{}},
	))

	s, err := NewExtractor().Extract(PriceAndTrades, arr)
	require.NoError(t, err)
	require.Equal(t, []string{"2024-01-01 00:00:00", "2024-01-01 00:05:00"}, s.Categories)
	require.Equal(t, []float64{8, 8}, s.Values)
	require.Equal(t, []float64{6.5, 0}, s.Markers[0].Values)
	require.Equal(t, []float64{0, 0}, s.Markers[1].Values)
}

func TestPriceAndTrades_RepeatedWallClockHour(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 05:30Z and 06:30Z both read 01:30 on the night clocks fall back
	arr := layout(0, sample.PlotEntry(
		sample.Trace{
			"x": []int64{1730611800000, 1730615400000},
			"y": bdata.Encode([]float64{10, 11}),
		},
		sample.Trace{"x": []int64{1730615400000}, "y": []float64{11}},
		sample.Trace{"x": []int64{}, "y": []float64{}},
	))

	s, err := NewExtractor(WithLocation(loc)).Extract(PriceAndTrades, arr)
	require.NoError(t, err)
	require.Equal(t, []string{"2024-11-03 01:30:00"}, s.Categories)
	require.Equal(t, []float64{11}, s.Values)
	require.Equal(t, []float64{11}, s.Markers[0].Values)
	require.Zero(t, s.Dropped)
}

func TestPriceAndTrades_Errors(t *testing.T) {
	twoTraces := layout(0, sample.PlotEntry(
		sample.Trace{"x": []string{"2024-01-01"}, "y": bdata.Encode([]float64{1})},
		sample.Trace{"x": []string{}, "y": []float64{}},
	))
	_, err := NewExtractor().Extract(PriceAndTrades, twoTraces)
	require.ErrorIs(t, err, result.ErrMalformedPayload)

	noPrice := layout(0, sample.PlotEntry(
		sample.Trace{"x": []string{}, "y": bdata.Encode(nil)},
		sample.Trace{"x": []string{"2024-01-01"}, "y": []float64{1}},
		sample.Trace{"x": []string{}, "y": []float64{}},
	))
	_, err = NewExtractor().Extract(PriceAndTrades, noPrice)
	require.ErrorIs(t, err, result.ErrMalformedPayload)

	wrapped := layout(0, sample.WrappedEntry(sample.Trace{"x": []string{}, "y": bdata.Encode(nil)}))
	_, err = NewExtractor().Extract(PriceAndTrades, wrapped)
	require.ErrorIs(t, err, result.ErrMalformedPayload)
}

func TestAlignSparse_NoMatchIsDropped(t *testing.T) {
	categories := []string{"2024-01-01 00:00:00", "2024-01-01 00:05:00"}

	aligned, dropped := AlignSparse(categories, []string{"2024-01-01 00:07:00"}, []float64{9})
	require.Equal(t, []float64{0, 0}, aligned, "unmatched spike must not land on any slot")
	require.Equal(t, 1, dropped)

	aligned, dropped = AlignSparse(categories,
		[]string{"2024-01-01 00:05:00", "2024-01-01 00:05:00", "missing"},
		[]float64{1, 2, 3})
	require.Equal(t, []float64{0, 2}, aligned)
	require.Equal(t, 1, dropped)

	aligned, dropped = AlignSparse(nil, []string{"a"}, nil)
	require.Empty(t, aligned)
	require.Equal(t, 1, dropped)
}

func TestFormatTimestamp_Monotonic(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	base := time.Date(1999, 12, 31, 23, 59, 58, 0, time.UTC)
	steps := []time.Duration{0, time.Second, time.Minute, time.Hour, 36 * time.Hour, 400 * 24 * time.Hour, 9000 * 24 * time.Hour}

	labels := make([]string, 0, len(steps))
	for _, step := range steps {
		labels = append(labels, FormatTimestamp(base.Add(step), loc))
	}

	require.True(t, sort.StringsAreSorted(labels), "labels: %v", labels)
	require.Equal(t, "2000-01-01 07:59:58", labels[0])
}

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		raw  string
		want string
	}{
		{`"2024-03-01 12:30:45"`, "2024-03-01 12:30:45"},
		{`"2024-03-01T12:30:45"`, "2024-03-01 12:30:45"},
		{`"2024-03-01T12:30:45.123456"`, "2024-03-01 12:30:45"},
		{`"2024-03-01T12:30:45+02:00"`, "2024-03-01 10:30:45"},
		{`"2024-03-01"`, "2024-03-01 00:00:00"},
		{`1704067200000`, "2024-01-01 00:00:00"},
		{`1704067200500.0`, "2024-01-01 00:00:00"},
	}

	for _, tc := range testCases {
		ts, err := ParseTimestamp([]byte(tc.raw), time.UTC)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, FormatTimestamp(ts, time.UTC), tc.raw)
	}

	for _, raw := range []string{`"soon"`, `null`, `{}`, `true`} {
		_, err := ParseTimestamp([]byte(raw), time.UTC)
		require.ErrorIs(t, err, result.ErrMalformedPayload, raw)
	}
}

func TestExtractor_WithLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	arr := layout(4, sample.WrappedEntry(sample.Trace{
		"x": []int64{1704067200000},
		"y": bdata.Encode([]float64{1}),
	}))

	s, err := NewExtractor(WithLocation(loc)).Extract(RevenueCurve, arr)
	require.NoError(t, err)
	require.Equal(t, []string{"2023-12-31 21:00:00"}, s.Categories)
}

func TestRegistry(t *testing.T) {
	ids := ChartIDs()
	require.Equal(t, []ChartID{
		PriceAndTrades, BalanceAfterClose, TradingProfit, RevenueCurve,
		ReboundCurve, IncomeComparison, DurationVsIncome,
	}, ids)

	for _, def := range Definitions() {
		require.NotEmpty(t, def.Title, def.ID)
		require.GreaterOrEqual(t, def.Index, 0)
	}

	_, err := ParseChartID("backtester")
	require.ErrorIs(t, err, ErrUnknownChart)

	parsed, err := ParseChartIDs([]string{"rebound-curve", "trading-profit"})
	require.NoError(t, err)
	require.Equal(t, []ChartID{ReboundCurve, TradingProfit}, parsed)

	all, err := ParseChartIDs(nil)
	require.NoError(t, err)
	require.Len(t, all, 7)

	def, err := Lookup(ReboundCurve)
	require.NoError(t, err)
	require.Equal(t, KindArea, def.Kind)
}

func TestGeneratedSample_AllCharts(t *testing.T) {
	arr := sample.Generate(sample.DefaultConfig())

	for _, def := range Definitions() {
		s, err := def.Extract(arr)
		require.NoError(t, err, def.ID)
		require.NoError(t, s.Validate())
		require.NotZero(t, s.Len(), def.ID)
		require.Zero(t, s.Dropped, def.ID)
	}
}

func TestSeries_Validate(t *testing.T) {
	require.Error(t, Series{Categories: []string{"a"}}.Validate())
	require.Error(t, Series{
		Categories: []string{"a"},
		Values:     []float64{1},
		Markers:    []Marker{{Name: "m"}},
	}.Validate())
	require.NoError(t, Series{}.Validate())
}
