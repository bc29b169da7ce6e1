package chart

import (
	"math"

	"github.com/samber/lo"
)

// Spec is a declarative chart description in the shape accepted by
// category/value charting engines such as ECharts
type Spec map[string]any

// ECharts converts the option into an engine spec. Non finite values
// become null gaps; marker slots without a point are null as well.
func (o Option) ECharts() Spec {
	xAxis := map[string]any{
		"type": "category",
		"data": o.Categories,
	}
	if !o.Style.BoundaryGap {
		xAxis["boundaryGap"] = false
	}

	main := map[string]any{
		"name": o.Title,
		"type": string(o.Type),
		"data": nullable(o.Values, false),
	}
	if o.Style.Color != "" {
		main["lineStyle"] = map[string]any{
			"color": o.Style.Color,
			"width": o.Style.Width,
		}
	}
	if o.Style.Area {
		main["areaStyle"] = map[string]any{}
	}

	seriesList := []map[string]any{main}
	for _, m := range o.Markers {
		seriesList = append(seriesList, map[string]any{
			"name":       m.Name,
			"type":       "scatter",
			"symbol":     "triangle",
			"symbolSize": 12,
			"data":       nullable(m.Values, true),
		})
	}

	return Spec{
		"title":   map[string]any{"text": o.Title},
		"tooltip": map[string]any{"trigger": "axis"},
		"xAxis":   xAxis,
		"yAxis": map[string]any{
			"type": "value",
			"min":  o.Domain.Min,
			"max":  o.Domain.Max,
		},
		"series": seriesList,
	}
}

func nullable(values []float64, zeroIsGap bool) []any {
	return lo.Map(values, func(v float64, _ int) any {
		if math.IsNaN(v) || math.IsInf(v, 0) || (zeroIsGap && v == 0) {
			return nil
		}
		return v
	})
}
