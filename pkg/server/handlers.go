package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raykavin/backview/pkg/chart"
	"github.com/raykavin/backview/pkg/client"
	"github.com/raykavin/backview/pkg/result"
	"github.com/raykavin/backview/pkg/series"
	"github.com/raykavin/backview/pkg/table"
	"github.com/raykavin/backview/pkg/view"
	"github.com/samber/lo"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeUnavailable    = "BACKTEST_UNAVAILABLE"
	codeUpstream       = "UPSTREAM_ERROR"
)

type chartInfo struct {
	ID    series.ChartID `json:"id"`
	Title string         `json:"title"`
	Kind  string         `json:"kind"`
	Index int            `json:"index"`
}

type formInfo struct {
	Defaults   client.Request `json:"defaults"`
	Strategies []string       `json:"strategies"`
	Bars       []string       `json:"bars"`
	Enabled    bool           `json:"enabled"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := s.indexHTML.Execute(c.Writer, map[string]any{
		"Charts":   s.charts,
		"Backtest": s.runner != nil,
	})
	if err != nil {
		s.log.WithError(err).Error("failed to render page")
	}
}

func (s *Server) handleScript(c *gin.Context) {
	c.Data(http.StatusOK, "application/javascript", []byte(s.script))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCharts(c *gin.Context) {
	c.JSON(http.StatusOK, lo.Map(series.Definitions(), func(d series.Definition, _ int) chartInfo {
		return chartInfo{ID: d.ID, Title: d.Title, Kind: d.Kind.String(), Index: d.Index}
	}))
}

func (s *Server) handleForm(c *gin.Context) {
	c.JSON(http.StatusOK, formInfo{
		Defaults:   client.DefaultRequest(),
		Strategies: client.Strategies,
		Bars:       client.Bars,
		Enabled:    s.runner != nil,
	})
}

// handleBacktest runs the submitted form against the backtest endpoint
// and answers with the resulting view
func (s *Server) handleBacktest(c *gin.Context) {
	if s.runner == nil {
		abortWithError(c, http.StatusServiceUnavailable, codeUnavailable, "no backtest endpoint configured")
		return
	}

	builder, ok := s.builder(c)
	if !ok {
		return
	}

	req := client.DefaultRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	start := time.Now()
	arr, err := s.runner.Run(c.Request.Context(), req)
	if err != nil {
		s.metrics.backtest.WithLabelValues("error").Observe(time.Since(start).Seconds())
		s.log.WithError(err).WithField("strategy", req.StrategyKey).Error("backtest failed")

		var apiErr *client.APIError
		switch {
		case errors.As(err, &apiErr):
			abortWithError(c, http.StatusBadGateway, codeUpstream, apiErr.Error())
		case errors.Is(err, result.ErrMalformedPayload):
			abortWithError(c, http.StatusBadGateway, view.ErrorCode(err), err.Error())
		default:
			abortWithError(c, http.StatusBadGateway, codeUpstream, err.Error())
		}
		return
	}
	s.metrics.backtest.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, s.build(builder, arr))
}

// handleRender builds the view of a result posted as {"data": [...]}
func (s *Server) handleRender(c *gin.Context) {
	builder, ok := s.builder(c)
	if !ok {
		return
	}
	arr, ok := s.decodeResult(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, s.build(builder, arr))
}

func (s *Server) handleRenderPNG(c *gin.Context) {
	id, err := series.ParseChartID(c.Param("chart"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, view.ErrorCode(err), err.Error())
		return
	}

	width, height, ok := s.imageSize(c)
	if !ok {
		return
	}
	arr, ok := s.decodeResult(c)
	if !ok {
		return
	}

	panel := view.NewBuilder(view.WithLogger(s.log), view.WithLocation(s.location)).Chart(id, arr)
	s.countPanel(panel)
	if panel.Err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, view.ErrorCode(panel.Err), panel.Err.Error())
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, *panel.Option, width, height); err != nil {
		s.log.WithError(err).WithField("chart", id.String()).Error("failed to render chart")
		abortWithError(c, http.StatusInternalServerError, view.CodeInternal, "failed to render chart")
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleTradesCSV(c *gin.Context) {
	arr, ok := s.decodeResult(c)
	if !ok {
		return
	}

	tbl, err := table.Project(arr)
	if err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, view.ErrorCode(err), err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="trades.csv"`)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)
	if err := tbl.WriteCSV(c.Writer); err != nil {
		s.log.WithError(err).Error("failed to write trade history")
	}
}

func (s *Server) decodeResult(c *gin.Context) (result.Array, bool) {
	arr, err := result.Decode(c.Request.Body)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, view.ErrorCode(err), err.Error())
		return nil, false
	}
	return arr, true
}

// builder reads the optional ?charts=a,b selection
func (s *Server) builder(c *gin.Context) (*view.Builder, bool) {
	ids := s.charts
	if raw := c.Query("charts"); raw != "" {
		parsed, err := series.ParseChartIDs(strings.Split(raw, ","))
		if err != nil {
			abortWithError(c, http.StatusBadRequest, view.ErrorCode(err), err.Error())
			return nil, false
		}
		ids = parsed
	}

	return view.NewBuilder(
		view.WithLogger(s.log),
		view.WithCharts(ids...),
		view.WithLocation(s.location),
	), true
}

func (s *Server) build(builder *view.Builder, arr result.Array) *view.View {
	v := builder.Build(arr)
	for _, panel := range v.Panels {
		s.countPanel(panel)
	}
	return v
}

func (s *Server) countPanel(panel view.Panel) {
	outcome := "ok"
	if panel.Err != nil {
		outcome = view.ErrorCode(panel.Err)
	}
	s.metrics.panels.WithLabelValues(panel.ID.String(), outcome).Inc()
}

func (s *Server) imageSize(c *gin.Context) (int, int, bool) {
	width, height := s.width, s.height
	for name, target := range map[string]*int{"width": &width, "height": &height} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 100 || v > 4096 {
			abortWithError(c, http.StatusBadRequest, codeInvalidRequest, name+" must be between 100 and 4096")
			return 0, 0, false
		}
		*target = v
	}
	return width, height, true
}
