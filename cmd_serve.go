package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/saqibullah/diabetes-risk-predictor/api"
	"github.com/saqibullah/diabetes-risk-predictor/config"
	"github.com/saqibullah/diabetes-risk-predictor/logging"
	"github.com/saqibullah/diabetes-risk-predictor/metrics"
	"github.com/saqibullah/diabetes-risk-predictor/model"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction HTTP server",
	Long: `Loads the scaler and classifier artifacts once and serves the prediction API.

A missing or invalid artifact does not stop the server: /health reports
unhealthy and the prediction endpoints answer 500 until it is restarted with
valid artifacts.`,
	RunE: runServe,
}

// setup loads config, builds the logger on logOut and loads the artifacts.
func setup(ctx context.Context, logOut io.Writer) (config.Config, *slog.Logger, *model.InferenceContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, nil, err
	}
	logger := logging.New(logOut, logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	loader := model.NewLoader(model.LoaderConfig{
		ScalerSource: cfg.Artifacts.ScalerPath,
		ModelSource:  cfg.Artifacts.ModelPath,
		Timeout:      cfg.Artifacts.Timeout,
		Retries:      cfg.Artifacts.Retries,
	}, logger)
	ic := loader.Load(ctx)
	if !ic.Ready() {
		logger.Warn("model or scaler not loaded properly",
			"model_loaded", ic.ModelLoaded(),
			"scaler_loaded", ic.ScalerLoaded(),
		)
	}
	return cfg, logger, ic, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, ic, err := setup(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	m.SetArtifactLoaded("model", ic.ModelLoaded())
	m.SetArtifactLoaded("scaler", ic.ScalerLoaded())

	gin.SetMode(cfg.GinMode)
	router := newRouter(cfg, api.NewHandler(ic, m, logger), m, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "addr", srv.Addr, "healthy", ic.Ready())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newRouter(cfg config.Config, h *api.Handler, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(api.RequestID(), api.AccessLog(logger), m.Middleware(), api.Recovery(logger))
	r.Use(cors.New(corsConfig(cfg)))

	h.Register(r)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	if cfg.StaticDir != "" {
		r.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))
		r.Static("/static", cfg.StaticDir)
	}
	return r
}

func corsConfig(cfg config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	origins := cfg.AllowedOrigins()
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
