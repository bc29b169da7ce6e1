package series

import (
	"fmt"
	"strconv"
	"time"

	"github.com/raykavin/backview/pkg/result"
	"github.com/samber/lo"
)

// Extractor reads normalized series out of a result array
type Extractor struct {
	loc *time.Location
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLocation sets the zone used to parse and format timestamps
func WithLocation(loc *time.Location) Option {
	return func(e *Extractor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewExtractor creates an extractor, timestamps default to UTC
func NewExtractor(options ...Option) *Extractor {
	e := &Extractor{loc: time.UTC}
	for _, option := range options {
		option(e)
	}
	return e
}

// Location returns the zone used for timestamps
func (e *Extractor) Location() *time.Location {
	return e.loc
}

// Extract runs the extractor registered for id
func (e *Extractor) Extract(id ChartID, arr result.Array) (Series, error) {
	def, err := Lookup(id)
	if err != nil {
		return Series{}, err
	}
	return e.ExtractDefinition(def, arr)
}

// ExtractDefinition runs the extractor described by def
func (e *Extractor) ExtractDefinition(def Definition, arr result.Array) (Series, error) {
	extract := def.extract
	if extract == nil {
		extract = (*Extractor).singleTrace
	}

	s, err := extract(e, arr, def)
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", def.ID, err)
	}
	if err := s.Validate(); err != nil {
		return Series{}, fmt.Errorf("%s: %w: %v", def.ID, result.ErrMalformedPayload, err)
	}
	return s, nil
}

// singleTrace reads trace 0 of the chart's payload according to its x/y sources
func (e *Extractor) singleTrace(arr result.Array, def Definition) (Series, error) {
	payload, err := result.PayloadAt(arr, def.Index, def.Wrapped)
	if err != nil {
		return Series{}, err
	}

	trace, err := payload.Trace(0)
	if err != nil {
		return Series{}, err
	}

	categories, err := e.categories(trace.X, def.X)
	if err != nil {
		return Series{}, fmt.Errorf("x: %w", err)
	}

	values, err := values(trace.Y, def.Y)
	if err != nil {
		return Series{}, fmt.Errorf("y: %w", err)
	}

	if len(categories) != len(values) {
		return Series{}, fmt.Errorf("%w: trace 0 has %d x and %d y values",
			result.ErrMalformedPayload, len(categories), len(values))
	}

	return Series{Categories: categories, Values: values}, nil
}

func (e *Extractor) categories(field result.Field, source XSource) ([]string, error) {
	switch source {
	case XTimestamp:
		times, err := timestamps(field, e.loc)
		if err != nil {
			return nil, err
		}
		return e.labels(times), nil
	case XLabel:
		return field.Labels()
	case XDecoded:
		decoded, err := field.Floats()
		if err != nil {
			return nil, err
		}
		return lo.Map(decoded, func(v float64, _ int) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}), nil
	default:
		return nil, fmt.Errorf("unknown x source %d", source)
	}
}

func values(field result.Field, source YSource) ([]float64, error) {
	switch source {
	case YLiteral:
		return field.Numbers()
	case YDecoded:
		return field.Floats()
	default:
		return nil, fmt.Errorf("unknown y source %d", source)
	}
}

func (e *Extractor) labels(times []time.Time) []string {
	return lo.Map(times, func(t time.Time, _ int) string {
		return FormatTimestamp(t, e.loc)
	})
}

// sparseTrace is a trace of timestamped points
type sparseTrace struct {
	name   string
	times  []time.Time
	values []float64
}

func (e *Extractor) readSparse(payload *result.Payload, i int, encoded bool) (sparseTrace, error) {
	trace, err := payload.Trace(i)
	if err != nil {
		return sparseTrace{}, err
	}

	times, err := timestamps(trace.X, e.loc)
	if err != nil {
		return sparseTrace{}, fmt.Errorf("trace %d x: %w", i, err)
	}

	source := YLiteral
	if encoded {
		source = YDecoded
	}
	vals, err := values(trace.Y, source)
	if err != nil {
		return sparseTrace{}, fmt.Errorf("trace %d y: %w", i, err)
	}

	if len(times) != len(vals) {
		return sparseTrace{}, fmt.Errorf("%w: trace %d has %d x and %d y values",
			result.ErrMalformedPayload, i, len(times), len(vals))
	}

	name := trace.Name
	if name == "" {
		name = fmt.Sprintf("trace %d", i)
	}
	return sparseTrace{name: name, times: times, values: vals}, nil
}

// priceAndTrades merges the price trace and the two trade traces onto one
// sorted timeline. The price is carried forward across slots it has no
// point for; trades become sparse markers.
func (e *Extractor) priceAndTrades(arr result.Array, def Definition) (Series, error) {
	payload, err := result.PayloadAt(arr, def.Index, def.Wrapped)
	if err != nil {
		return Series{}, err
	}
	if len(payload.Data) < 3 {
		return Series{}, fmt.Errorf("%w: expected 3 traces, got %d", result.ErrMalformedPayload, len(payload.Data))
	}

	price, err := e.readSparse(payload, 0, true)
	if err != nil {
		return Series{}, err
	}
	opens, err := e.readSparse(payload, 1, false)
	if err != nil {
		return Series{}, err
	}
	closes, err := e.readSparse(payload, 2, false)
	if err != nil {
		return Series{}, err
	}

	// distinct instants can share a label when a zone repeats an hour
	categories := lo.Uniq(e.labels(mergeTimeline(price.times, opens.times, closes.times)))
	if len(categories) > 0 && len(price.values) == 0 {
		return Series{}, fmt.Errorf("%w: price trace is empty", result.ErrMalformedPayload)
	}

	s := Series{
		Categories: categories,
		Values:     alignCarry(categories, e.labels(price.times), price.values),
	}

	for _, trades := range []sparseTrace{opens, closes} {
		aligned, dropped := AlignSparse(categories, e.labels(trades.times), trades.values)
		s.Markers = append(s.Markers, Marker{Name: trades.name, Values: aligned})
		s.Dropped += dropped
	}

	return s, nil
}
