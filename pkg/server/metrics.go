package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	panels   *prometheus.CounterVec
	backtest *prometheus.HistogramVec
}

func newMetrics(reg *prometheus.Registry) *metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backview_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backview_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		panels: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backview_panels_total",
				Help: "Chart panels built, by chart and outcome code",
			},
			[]string{"chart", "outcome"},
		),
		backtest: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backview_backtest_duration_seconds",
				Help:    "Duration of calls to the backtest endpoint",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			},
			[]string{"outcome"},
		),
	}
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}
