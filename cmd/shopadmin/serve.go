package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-router"
	refreshjob "github.com/goliatone/go-shopadmin/adapters/job"
	adminrouter "github.com/goliatone/go-shopadmin/adapters/router"
	"github.com/goliatone/go-shopadmin/app"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog admin API",
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "listen address, overrides server.host/server.port")
	cmd.Flags().Duration("refresh", 0, "reload catalogs from the cache at this interval (0 disables)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Load(ctx); err != nil {
		a.Logger.Errorf("initial load: %v", err)
	}

	if every, _ := cmd.Flags().GetDuration("refresh"); every > 0 {
		go refreshLoop(ctx, a, every)
	}

	srv := router.NewFiberAdapter(fiberAppInitializer(a))
	r := srv.Router()
	r.Get("/healthz", func(c router.Context) error {
		return c.JSON(200, map[string]any{"status": "ok", "entities": a.Workspaces.Entities()})
	})
	handler := adminrouter.NewHandler(adminrouter.Config{
		Workspaces: a.Workspaces,
		BasePath:   a.Config.Server.BasePath,
		Formats:    a.Runner.Renderers.Formats(),
		Logger:     a.Logger,
	})
	handler.RegisterRoutes(r)

	addr := a.Config.Server.Addr()
	if override, _ := cmd.Flags().GetString("addr"); override != "" {
		addr = override
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Infof("serving catalog API on http://%s%s", addr, a.Config.Server.BasePath)
		errCh <- srv.Serve(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Infof("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func refreshLoop(ctx context.Context, a *app.App, every time.Duration) {
	cancels := refreshjob.NewCancelRegistry()
	task := refreshjob.NewRefreshTask(refreshjob.TaskConfig{
		Workspaces:     a.Workspaces,
		CancelRegistry: cancels,
		Logger:         a.Logger,
		RetryPolicy: refreshjob.RetryPolicy{
			MaxRetries: a.Config.Backend.RefreshRetries,
			Backoff: job.BackoffConfig{
				Strategy: job.BackoffExponential,
				Interval: time.Second,
				Jitter:   true,
			},
		},
	})
	enqueuer := &refreshjob.AsyncEnqueuer{Task: task, Timeout: every, Logger: a.Logger}
	defer enqueuer.Wait()
	scheduler := refreshjob.NewScheduler(refreshjob.Config{
		Enqueuer:       enqueuer,
		CancelRegistry: cancels,
		Logger:         a.Logger,
	})

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, entity := range a.Workspaces.Entities() {
				if _, err := scheduler.RequestRefresh(ctx, string(entity)); err != nil {
					a.Logger.Errorf("schedule refresh %s: %v", entity, err)
				}
			}
		}
	}
}

func fiberAppInitializer(a *app.App) func(*fiber.App) *fiber.App {
	return func(*fiber.App) *fiber.App {
		fiberApp := fiber.New(fiber.Config{
			AppName:               "shopadmin",
			DisableStartupMessage: true,
		})

		fiberApp.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
		}))
		fiberApp.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders: "Content-Type,Authorization",
		}))

		if a.Metrics != nil {
			fiberApp.Get("/metrics", adaptor.HTTPHandler(a.Metrics.Handler()))
		}
		return fiberApp
	}
}
