package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const maxTicks = 8

var markerColors = []drawing.Color{
	drawing.ColorFromHex("91CC75"),
	drawing.ColorFromHex("EE6666"),
	drawing.ColorFromHex("FAC858"),
}

// RenderPNG draws the option as a PNG image
func RenderPNG(w io.Writer, opt Option, width, height int) error {
	if len(opt.Values) == 0 {
		return ErrEmptySeries
	}

	yRange := &gochart.ContinuousRange{Min: float64(opt.Domain.Min), Max: float64(opt.Domain.Max)}
	if yRange.Max <= yRange.Min {
		yRange.Max = yRange.Min + 1
	}

	if opt.Type == SeriesBar {
		return renderBars(w, opt, yRange, width, height)
	}
	return renderLines(w, opt, yRange, width, height)
}

func renderLines(w io.Writer, opt Option, yRange *gochart.ContinuousRange, width, height int) error {
	stroke := strokeColor(opt.Style)
	main := gochart.ContinuousSeries{
		Name: opt.Title,
		Style: gochart.Style{
			StrokeColor: stroke,
			StrokeWidth: float64(max(opt.Style.Width, 1)),
		},
	}
	if opt.Style.Area {
		main.Style.FillColor = stroke.WithAlpha(64)
	}
	for i, v := range opt.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		main.XValues = append(main.XValues, float64(i))
		main.YValues = append(main.YValues, v)
	}
	if len(main.XValues) == 1 {
		// a lone point is drawn as a flat segment across its category slot
		x, y := main.XValues[0], main.YValues[0]
		main.XValues = []float64{x - 0.5, x + 0.5}
		main.YValues = []float64{y, y}
	}

	seriesList := []gochart.Series{main}
	for i, m := range opt.Markers {
		marker := gochart.ContinuousSeries{
			Name: m.Name,
			Style: gochart.Style{
				StrokeColor: drawing.ColorTransparent,
				DotWidth:    5,
				DotColor:    markerColors[i%len(markerColors)],
			},
		}
		for j, v := range m.Values {
			if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			marker.XValues = append(marker.XValues, float64(j))
			marker.YValues = append(marker.YValues, v)
		}
		if len(marker.XValues) > 0 {
			seriesList = append(seriesList, marker)
		}
	}

	graph := gochart.Chart{
		Title:  opt.Title,
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Ticks: categoryTicks(opt.Categories),
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(opt.Categories)) - 0.5},
		},
		YAxis: gochart.YAxis{
			Range: yRange,
		},
		Series: seriesList,
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", opt.ID, err)
	}
	return nil
}

func renderBars(w io.Writer, opt Option, yRange *gochart.ContinuousRange, width, height int) error {
	bars := make([]gochart.Value, len(opt.Values))
	for i, v := range opt.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		label := ""
		if i < len(opt.Categories) && showTick(i, len(opt.Categories)) {
			label = opt.Categories[i]
		}
		bars[i] = gochart.Value{Value: v, Label: label}
	}

	barWidth := max((width-64)/(2*len(bars)), 1)
	graph := gochart.BarChart{
		Title:      opt.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: gochart.YAxis{
			Range: yRange,
		},
		Bars: bars,
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", opt.ID, err)
	}
	return nil
}

// categoryTicks labels at most maxTicks evenly spaced categories. The
// x range follows the ticks, so unlabelled bounds at -0.5 and n-0.5 keep
// half a slot around the outer categories.
func categoryTicks(categories []string) []gochart.Tick {
	n := len(categories)
	ticks := make([]gochart.Tick, 0, maxTicks+2)
	ticks = append(ticks, gochart.Tick{Value: -0.5})
	for i, c := range categories {
		if showTick(i, n) {
			ticks = append(ticks, gochart.Tick{Value: float64(i), Label: c})
		}
	}
	return append(ticks, gochart.Tick{Value: float64(n) - 0.5})
}

func showTick(i, n int) bool {
	if n <= maxTicks {
		return true
	}
	step := int(math.Ceil(float64(n) / maxTicks))
	return i%step == 0
}

func strokeColor(style Style) drawing.Color {
	if style.Color == "" {
		return drawing.ColorFromHex(strings.TrimPrefix(DefaultColor, "#"))
	}
	return drawing.ColorFromHex(strings.TrimPrefix(style.Color, "#"))
}
