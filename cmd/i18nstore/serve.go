package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/i18n-store/internal/infra/providers"
	"github.com/totegamma/i18n-store/internal/infra/telemetry"
	"github.com/totegamma/i18n-store/internal/log"
	"github.com/totegamma/i18n-store/internal/present/rest"
	restmiddleware "github.com/totegamma/i18n-store/internal/present/rest/middleware"
)

const (
	serviceName     = "i18n-store"
	shutdownTimeout = 10 * time.Second
)

func (f *commandFactory) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			conf := f.conf.Server

			if conf.EnableTrace {
				shutdown, err := telemetry.SetupTraceProvider(ctx, conf.TraceEndpoint, serviceName, version)
				if err != nil {
					log.Error(ctx, "failed to set up tracing", err)
					return err
				}
				defer func() {
					if err := shutdown(context.Background()); err != nil {
						log.Error(ctx, "failed to flush traces", err)
					}
				}()
			}

			db, closeDB, err := f.open(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			sqlDB, err := db.DB()
			if err != nil {
				return err
			}

			app := providers.NewApp(conf, db)

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true
			e.Use(middleware.Recover())
			e.Use(middleware.CORS())
			e.Use(middleware.RequestID())
			if conf.EnableTrace {
				e.Use(otelecho.Middleware(serviceName))
			}
			e.Use(restmiddleware.RequestLogger())
			e.Use(restmiddleware.InjectRequest)

			rest.NewHandler(app.Translation, app.Export, app.Auth, sqlDB, app.Registry).RegisterRoutes(e)

			go func() {
				log.Info(ctx, "listening", slog.String("addr", conf.ListenAddr), slog.String("driver", conf.Driver))
				if err := e.Start(conf.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error(ctx, "server encountered an error", err)
				}
			}()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := e.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "failed shutting down http server", err)
				return err
			}

			log.Info(ctx, "completed graceful shutdown of http server")
			return nil
		},
	}
}
