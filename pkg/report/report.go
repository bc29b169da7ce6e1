// Package report prints a backtest view to a terminal and exports its
// charts as PNG files.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/backview/pkg/chart"
	"github.com/raykavin/backview/pkg/logger"
	"github.com/raykavin/backview/pkg/metric"
	"github.com/raykavin/backview/pkg/series"
	"github.com/raykavin/backview/pkg/view"
	"github.com/schollz/progressbar/v3"
)

const (
	histogramBins   = 15
	bootstrapRounds = 10000
)

// Summary writes the panel statistics, a histogram of the profit per trade,
// its confidence interval and the trade log
func Summary(w io.Writer, v *view.View) error {
	buffer := bytes.NewBuffer(nil)
	tbl := tablewriter.NewWriter(buffer)
	tbl.SetHeader([]string{"Chart", "Points", "Min", "Max", "Mean", "P50", "Dropped", "Status"})
	tbl.SetAutoFormatHeaders(false)
	tbl.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
	})

	for _, p := range v.Panels {
		tbl.Append(panelRow(p))
	}
	tbl.Render()

	if _, err := fmt.Fprintln(w, buffer.String()); err != nil {
		return err
	}

	if p, ok := v.Panel(series.TradingProfit); ok && p.Err == nil && p.Stats != nil {
		if err := profit(w, p.Option.Values); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "------ TRADES -------")
	if v.TableErr != nil {
		_, err := fmt.Fprintf(w, "trade log unavailable: %s\n", v.TableErr)
		return err
	}
	if v.Table != nil {
		v.Table.Render(w)
	}
	return nil
}

func panelRow(p view.Panel) []string {
	if p.Err != nil {
		return []string{p.ID.String(), "-", "-", "-", "-", "-", "-", view.ErrorCode(p.Err)}
	}
	if p.Stats == nil {
		return []string{p.ID.String(), "0", "-", "-", "-", "-", strconv.Itoa(p.Dropped), "ok"}
	}

	s := p.Stats
	return []string{
		p.ID.String(),
		strconv.Itoa(s.Count),
		fmt.Sprintf("%.2f", s.Min),
		fmt.Sprintf("%.2f", s.Max),
		fmt.Sprintf("%.2f", s.Mean),
		fmt.Sprintf("%.2f", s.P50),
		strconv.Itoa(p.Dropped),
		"ok",
	}
}

func profit(w io.Writer, values []float64) error {
	fmt.Fprintln(w, "------ PROFIT PER TRADE -------")
	hist := histogram.Hist(histogramBins, values)
	if err := histogram.Fprint(w, hist, histogram.Linear(10)); err != nil {
		return err
	}
	fmt.Fprintln(w)

	interval := metric.Bootstrap(values, metric.MeanMeasure, bootstrapRounds, 0.95)
	_, err := fmt.Fprintf(w, "MEAN (95%%): %.2f (%.2f ~ %.2f)\n\n", interval.Mean, interval.Lower, interval.Upper)
	return err
}

// Exporter writes one PNG per chart into a directory
type Exporter struct {
	dir           string
	width, height int
	progress      io.Writer
	log           logger.Logger
}

// NewExporter creates an exporter. Progress is drawn on progress, nil
// disables the bar.
func NewExporter(dir string, width, height int, progress io.Writer, log logger.Logger) *Exporter {
	return &Exporter{dir: dir, width: width, height: height, progress: progress, log: log}
}

// Export renders every successful panel to <dir>/<chart>.png and returns
// the written paths. Failed panels and charts that cannot be drawn are
// logged and skipped, no partial file is left behind.
func (e *Exporter) Export(v *view.View) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	bar := progressbar.NewOptions(len(v.Panels),
		progressbar.OptionSetWriter(e.writer()),
		progressbar.OptionSetDescription("rendering charts"),
		progressbar.OptionShowCount(),
	)

	paths := make([]string, 0, len(v.Panels))
	for _, p := range v.Panels {
		if p.Err != nil {
			e.log.WithError(p.Err).WithField("chart", p.ID.String()).Warn("chart skipped")
		} else {
			path, err := e.write(p)
			if err != nil {
				e.log.WithError(err).WithField("chart", p.ID.String()).Warn("chart could not be drawn")
			} else {
				paths = append(paths, path)
			}
		}

		if err := bar.Add(1); err != nil {
			e.log.Warnf("update progressbar fail: %v", err)
		}
	}
	return paths, nil
}

func (e *Exporter) write(p view.Panel) (string, error) {
	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, *p.Option, e.width, e.height); err != nil {
		return "", fmt.Errorf("%s: %w", p.ID, err)
	}

	path := filepath.Join(e.dir, p.ID.String()+".png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (e *Exporter) writer() io.Writer {
	if e.progress == nil {
		return io.Discard
	}
	return e.progress
}
