// Package chart assembles declarative chart options from normalized series.
package chart

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/raykavin/backview/pkg/result"
	"github.com/raykavin/backview/pkg/series"
	"github.com/samber/lo"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

var ErrEmptySeries = errors.New("empty series")

// DefaultColor is the stroke color of styled charts
const DefaultColor = "#5470C6"

// SeriesType is the series type handed to the rendering engine
type SeriesType string

const (
	SeriesLine SeriesType = "line"
	SeriesBar  SeriesType = "bar"
)

// Domain is the y axis range
type Domain struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Style holds the per chart drawing options
type Style struct {
	Color       string `json:"color,omitempty"`
	Width       int    `json:"width,omitempty"`
	Area        bool   `json:"area,omitempty"`
	BoundaryGap bool   `json:"boundary_gap"`
}

// Option is a fully resolved chart. It shares no memory with the series
// it was built from and is not modified after Assemble returns.
type Option struct {
	ID         series.ChartID
	Title      string
	Type       SeriesType
	Categories []string
	Values     []float64
	Markers    []series.Marker
	Domain     Domain
	Style      Style
}

// Assemble builds the option of a series drawn as kind.
// Both domain bounds are rounded up: Min = ceil(min), Max = ceil(max).
func Assemble(s series.Series, kind series.Kind) (Option, error) {
	if err := s.Validate(); err != nil {
		return Option{}, err
	}

	domain, err := ComputeDomain(s.Values)
	if err != nil {
		return Option{}, err
	}

	return Option{
		Type:       seriesType(kind),
		Categories: slices.Clone(s.Categories),
		Values:     slices.Clone(s.Values),
		Markers: lo.Map(s.Markers, func(m series.Marker, _ int) series.Marker {
			return series.Marker{Name: m.Name, Values: slices.Clone(m.Values)}
		}),
		Domain: domain,
		Style:  styleFor(kind, true),
	}, nil
}

// AssembleDefinition builds the option of a registered chart
func AssembleDefinition(def series.Definition, s series.Series) (Option, error) {
	opt, err := Assemble(s, def.Kind)
	if err != nil {
		return Option{}, fmt.Errorf("%s: %w", def.ID, err)
	}

	opt.ID = def.ID
	opt.Title = def.Title
	opt.Style = styleFor(def.Kind, def.Styled)
	return opt, nil
}

// ComputeDomain returns the rounded y range of values. Non finite values
// are not plotted and take no part in the range.
func ComputeDomain(values []float64) (Domain, error) {
	if len(values) == 0 {
		return Domain{}, ErrEmptySeries
	}

	finite := lo.Filter(values, func(v float64, _ int) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	})
	if len(finite) == 0 {
		return Domain{}, fmt.Errorf("%w: no finite values", ErrEmptySeries)
	}

	lower, err := ceilInt(floats.Min(finite))
	if err != nil {
		return Domain{}, err
	}
	upper, err := ceilInt(floats.Max(finite))
	if err != nil {
		return Domain{}, err
	}
	return Domain{Min: lower, Max: upper}, nil
}

// ceilInt rounds v up and fails when the result does not fit an int
func ceilInt[F constraints.Float](v F) (int, error) {
	c := math.Ceil(float64(v))
	if c < math.MinInt || c >= math.MaxInt {
		return 0, fmt.Errorf("%w: value %g is outside the chart domain", result.ErrMalformedPayload, float64(v))
	}
	return int(c), nil
}

func seriesType(kind series.Kind) SeriesType {
	if kind == series.KindBar {
		return SeriesBar
	}
	return SeriesLine
}

func styleFor(kind series.Kind, styled bool) Style {
	style := Style{
		Area:        kind == series.KindArea,
		BoundaryGap: kind != series.KindArea,
	}
	if styled {
		style.Color = DefaultColor
		style.Width = 2
	}
	return style
}
