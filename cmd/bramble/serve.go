package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/bramble/internal/repositories/customer"
	"github.com/Ramsey-B/bramble/internal/repositories/matchdecision"
	"github.com/Ramsey-B/bramble/internal/repositories/run"
	"github.com/Ramsey-B/bramble/pkg/middleware"
	"github.com/Ramsey-B/bramble/pkg/routes/cluster"
	"github.com/Ramsey-B/bramble/pkg/routes/health"
	"github.com/Ramsey-B/bramble/pkg/routes/metrics"
	runroutes "github.com/Ramsey-B/bramble/pkg/routes/run"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the stewardship review API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := tracing.Init(ctx, a.cfg.Tracing())
			if err != nil {
				return err
			}
			defer func() { _ = shutdownTracing(context.Background()) }()

			svc, st, err := a.startServices(ctx, needs{database: true, graph: a.cfg.SinkGraphEnabled})
			if err != nil {
				return err
			}
			defer func() { _ = st.Stop(context.Background()) }()

			checks := map[string]health.Check{"database": svc.db.PingContext}
			if svc.graph != nil {
				checks["graph"] = svc.graph.VerifyConnectivity
			}
			checker := health.NewChecker(a.cfg.Version, checks)

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true
			e.HTTPErrorHandler = middleware.Error(a.logger)
			e.Use(otelecho.Middleware(a.cfg.AppName))
			e.Use(middleware.RequestContext())
			e.Use(middleware.Logger(a.logger))

			checker.RegisterRoutes(e)
			metrics.RegisterRoutes(e)

			runs := run.NewRepository(svc.db, a.logger)
			api := e.Group("/api/v1")
			runroutes.NewHandler(runs).Register(api.Group("/runs"))
			cluster.NewHandler(
				runs,
				customer.NewRepository(svc.db, a.logger),
				matchdecision.NewRepository(svc.db, a.logger),
				a.cfg.ReviewLimit,
			).Register(api)

			server := &http.Server{
				Addr:         a.cfg.Addr(),
				Handler:      e,
				ReadTimeout:  time.Duration(a.cfg.HttpServerReadTimeoutSeconds) * time.Second,
				WriteTimeout: time.Duration(a.cfg.HttpServerWriteTimeoutSeconds) * time.Second,
				IdleTimeout:  time.Duration(a.cfg.HttpServerIdleTimeoutSeconds) * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Infof("Listening on %s", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()
			checker.SetReady(true)

			select {
			case <-ctx.Done():
			case err := <-errCh:
				return err
			}

			checker.SetReady(false)
			a.logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
