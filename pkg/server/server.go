// Package server exposes the result viewer over HTTP: a small web page, a
// JSON API returning chart options and the trade log, PNG and CSV exports.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/raykavin/backview/pkg/client"
	"github.com/raykavin/backview/pkg/logger"
	"github.com/raykavin/backview/pkg/series"
	"github.com/rs/cors"
)

//go:embed assets
var staticFiles embed.FS

type Server struct {
	addr           string
	debug          bool
	allowedOrigins []string
	runner         client.Runner
	charts         []series.ChartID
	location       *time.Location
	width, height  int
	log            logger.Logger

	registry  *prometheus.Registry
	metrics   *metrics
	indexHTML *template.Template
	script    string
	handler   http.Handler
}

type Option func(*Server)

// WithAddr sets the listen address, ":8080" by default
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithDebug keeps the page script readable and turns on gin debug output
func WithDebug() Option {
	return func(s *Server) {
		s.debug = true
	}
}

func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithClient enables the backtest endpoint
func WithClient(runner client.Runner) Option {
	return func(s *Server) {
		s.runner = runner
	}
}

// WithCharts sets the charts returned by default
func WithCharts(ids ...series.ChartID) Option {
	return func(s *Server) {
		if len(ids) > 0 {
			s.charts = ids
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		s.location = loc
	}
}

// WithImageSize sets the default PNG size
func WithImageSize(width, height int) Option {
	return func(s *Server) {
		s.width, s.height = width, height
	}
}

func New(log logger.Logger, options ...Option) (*Server, error) {
	s := &Server{
		addr:           ":8080",
		allowedOrigins: []string{"*"},
		charts:         series.ChartIDs(),
		location:       time.UTC,
		width:          1024,
		height:         480,
		log:            log,
	}
	for _, option := range options {
		option(s)
	}

	var err error
	s.indexHTML, err = template.ParseFS(staticFiles, "assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	appJS, err := staticFiles.ReadFile("assets/app.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read app.js: %w", err)
	}

	transformed := api.Transform(string(appJS), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2015,
		MinifySyntax:      !s.debug,
		MinifyIdentifiers: !s.debug,
		MinifyWhitespace:  !s.debug,
	})
	if len(transformed.Errors) > 0 {
		return nil, fmt.Errorf("page script failed with: %v", transformed.Errors)
	}
	s.script = string(transformed.Code)

	s.registry = prometheus.NewRegistry()
	s.metrics = newMetrics(s.registry)
	s.handler = s.routes()

	return s, nil
}

// Handler returns the complete HTTP handler, CORS included
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	if !s.debug && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(s.requestLogger())
	router.Use(s.recovery())

	router.GET("/", s.handleIndex)
	router.GET("/assets/app.js", s.handleScript)
	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(s.metricsHandler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/charts", s.handleCharts)
		v1.GET("/form", s.handleForm)
		v1.POST("/backtest", s.handleBacktest)
		v1.POST("/render", s.handleRender)
		v1.POST("/render/:chart/png", s.handleRenderPNG)
		v1.POST("/trades.csv", s.handleTradesCSV)
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
		MaxAge:         600,
	}).Handler(router)
}

// ListenAndServe serves until ctx is cancelled, then drains open requests
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("http server listening")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}
