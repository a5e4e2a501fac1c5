package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"subdesk/internal/handlers"
	"subdesk/internal/jobs/background"
	"subdesk/internal/middleware"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var withScheduler bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, unless disabled, the job scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&withScheduler, "scheduler", true, "run the reminder and renewal jobs in this process")
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, "api")
	if err != nil {
		return err
	}
	defer a.close()

	var scheduler *background.JobScheduler
	if withScheduler {
		sched := a.reminderCfg.Schedule
		scheduler, err = background.NewJobScheduler(a.reminderJobs, a.dashboardRefresh, background.Schedule{
			GenerateEvery:  sched.GenerateEvery.Duration,
			DispatchEvery:  sched.DispatchEvery.Duration,
			LapsedEvery:    sched.LapsedEvery.Duration,
			DashboardEvery: sched.DashboardEvery.Duration,
			QueueDelivery:  a.reminderCfg.Dispatch.Mode == "queue",
		})
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				log.Error().Err(err).Msg("failed to stop scheduler")
			}
		}()
	}

	e := newEcho(a, scheduler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.HTTPAddr).Str("version", Version).Msg("subdesk API listening")
		if err := e.Start(a.cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newEcho(a *app, scheduler *background.JobScheduler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versions := middleware.NewVersionMiddleware()
	e.Use(versions.APIVersionResolver())

	var jobStatus handlers.JobStatusProvider
	if scheduler != nil {
		jobStatus = scheduler
	}

	h := &handlers.Handlers{
		Auth:          handlers.NewAuthHandlers(a.auth),
		Customers:     handlers.NewCustomerHandlers(a.customers),
		Categories:    handlers.NewCategoryHandlers(a.categories),
		Products:      handlers.NewProductHandlers(a.products),
		Subscriptions: handlers.NewSubscriptionHandlers(a.subscriptions, a.reminders),
		Reminders:     handlers.NewReminderHandlers(a.reminders),
		Dashboard:     handlers.NewDashboardHandlers(a.dashboard),
		Jobs:          handlers.NewJobHandlers(a.exports, a.queue, jobStatus),
		Health: handlers.NewHealthHandlers(map[string]handlers.Pinger{
			"database": a.pool,
			"redis":    a.cache,
		}, jobStatus, Version),
	}
	handlers.RegisterRoutes(e, h, versions, middleware.JWTMiddleware(a.auth))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}
