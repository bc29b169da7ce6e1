// Package view builds the complete visualization of a backtest result: one
// panel per chart plus the trade log. A failing panel never prevents the
// others from being built.
package view

import (
	"time"

	"github.com/raykavin/backview/pkg/chart"
	"github.com/raykavin/backview/pkg/logger"
	"github.com/raykavin/backview/pkg/logger/zerolog"
	"github.com/raykavin/backview/pkg/metric"
	"github.com/raykavin/backview/pkg/result"
	"github.com/raykavin/backview/pkg/series"
	"github.com/raykavin/backview/pkg/table"
	"github.com/samber/lo"
)

// Panel is the outcome of one chart. Exactly one of Option and Err is set.
type Panel struct {
	ID      series.ChartID
	Title   string
	Option  *chart.Option
	Stats   *metric.Summary
	Dropped int
	Err     error
}

// View is the outcome of a whole result array
type View struct {
	Panels   []Panel
	Table    *table.Table
	TableErr error
}

// Panel returns the panel of chart id
func (v *View) Panel(id series.ChartID) (Panel, bool) {
	return lo.Find(v.Panels, func(p Panel) bool {
		return p.ID == id
	})
}

// Failed returns the panels that could not be built
func (v *View) Failed() []Panel {
	return lo.Filter(v.Panels, func(p Panel, _ int) bool {
		return p.Err != nil
	})
}

type Builder struct {
	log       logger.Logger
	charts    []series.ChartID
	extractor *series.Extractor
	withTable bool
}

type Option func(*Builder)

func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// WithCharts restricts the view to the given charts, in that order
func WithCharts(ids ...series.ChartID) Option {
	return func(b *Builder) {
		if len(ids) > 0 {
			b.charts = ids
		}
	}
}

// WithLocation sets the zone timestamp categories are formatted in
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		b.extractor = series.NewExtractor(series.WithLocation(loc))
	}
}

// WithoutTable skips the trade log
func WithoutTable() Option {
	return func(b *Builder) {
		b.withTable = false
	}
}

func NewBuilder(options ...Option) *Builder {
	b := &Builder{
		log:       zerolog.Nop(),
		charts:    series.ChartIDs(),
		extractor: series.NewExtractor(),
		withTable: true,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// Charts returns the charts built by the builder
func (b *Builder) Charts() []series.ChartID {
	return append([]series.ChartID(nil), b.charts...)
}

// Build decodes every requested chart and the trade log of arr
func (b *Builder) Build(arr result.Array) *View {
	view := &View{
		Panels: lo.Map(b.charts, func(id series.ChartID, _ int) Panel {
			return b.Chart(id, arr)
		}),
	}

	if b.withTable {
		view.Table, view.TableErr = table.Project(arr)
		if view.TableErr != nil {
			b.log.WithError(view.TableErr).
				WithField("code", ErrorCode(view.TableErr)).
				Warn("trade log not available")
		}
	}

	return view
}

// Chart builds the panel of a single chart
func (b *Builder) Chart(id series.ChartID, arr result.Array) Panel {
	panel := Panel{ID: id}

	def, err := series.Lookup(id)
	if err != nil {
		return b.fail(panel, err)
	}
	panel.Title = def.Title

	s, err := b.extractor.ExtractDefinition(def, arr)
	if err != nil {
		return b.fail(panel, err)
	}

	opt, err := chart.AssembleDefinition(def, s)
	if err != nil {
		return b.fail(panel, err)
	}

	panel.Option = &opt
	panel.Dropped = s.Dropped
	if summary, ok := metric.Describe(s.Values); ok {
		if summary.Finite() {
			panel.Stats = &summary
		} else {
			b.log.WithField("chart", id.String()).Warn("statistics overflow, omitted")
		}
	}

	if s.Dropped > 0 {
		b.log.WithFields(map[string]any{
			"chart":   id.String(),
			"dropped": s.Dropped,
		}).Warn("trade points outside the timeline were dropped")
	}
	b.log.WithFields(map[string]any{
		"chart":  id.String(),
		"points": s.Len(),
	}).Debug("chart built")

	return panel
}

func (b *Builder) fail(panel Panel, err error) Panel {
	panel.Err = err
	b.log.WithError(err).WithFields(map[string]any{
		"chart": panel.ID.String(),
		"code":  ErrorCode(err),
	}).Warn("chart not available")
	return panel
}
