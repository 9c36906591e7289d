package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP control surface and the background jobs",
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		cfg, logger, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer func() { err = joinCleanup(err, cleanup) }()

		ctx, stop := signalContext()
		defer stop()

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer closeDB(db, logger)

		app := NewCompositionRoot(cfg, db, logger)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder, err := app.CreateMetricsRecorder(reg)
		if err != nil {
			return err
		}
		publisher, closePublisher := app.CreateEventPublisher()
		defer func() { err = joinCleanup(err, closePublisher) }()

		ctl, err := app.CreateProductionController(publisher, recorder)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if shutdownErr := ctl.Shutdown(shutdownCtx); shutdownErr != nil {
				logger.Warn("discharges still outstanding at exit", "error", shutdownErr)
			}
		}()

		if created, reconcileErr := ctl.ReconcileRuns(ctx); reconcileErr != nil {
			logger.WarnContext(ctx, "startup run reconciliation incomplete", "created", created, "error", reconcileErr)
		}
		jobManager := app.CreateJobManager(ctl)
		if err = jobManager.StartAll(); err != nil {
			return err
		}
		defer jobManager.StopAll()

		level, _ := cfg.LogLevel()
		e := echo.New()
		e.HideBanner = true
		e.Logger.SetLevel(echoLevel(level))
		e.Use(middleware.Recover())
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				logger.DebugContext(c.Request().Context(), "request",
					"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
				return nil
			},
		}))
		e.GET("/health", func(c echo.Context) error {
			return c.String(http.StatusOK, "Healthy")
		})
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
		app.CreateServer(ctl).Register(e)

		errCh := make(chan error, 1)
		go func() {
			errCh <- e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort))
		}()

		select {
		case err = <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}
