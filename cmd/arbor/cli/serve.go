package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/arbor-cms/arbor/internal/app"
	"github.com/arbor-cms/arbor/internal/auth"
	"github.com/arbor-cms/arbor/internal/history"
	"github.com/arbor-cms/arbor/internal/observability"
	"github.com/arbor-cms/arbor/internal/pages"
	pageshttp "github.com/arbor-cms/arbor/internal/pages/http"
	"github.com/arbor-cms/arbor/internal/platform/cache"
	"github.com/arbor-cms/arbor/internal/platform/db"
	"github.com/arbor-cms/arbor/internal/platform/httpx"
	"github.com/arbor-cms/arbor/internal/rbac"
	"github.com/arbor-cms/arbor/internal/revisions"
	"github.com/arbor-cms/arbor/internal/shared"
	"github.com/arbor-cms/arbor/internal/view"
	"github.com/arbor-cms/arbor/internal/workflow"
	"github.com/arbor-cms/arbor/jobs"
)

func newServeCommand(rt *runtime) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.InTestMode() {
				rt.logger.Info("test mode detected, skipping runtime startup")
				return nil
			}
			if addr != "" {
				rt.cfg.AppAddr = addr
			}
			return serve(cmd.Context(), rt.cfg, rt.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides APP_ADDR)")
	return cmd
}

func serve(parent context.Context, cfg *app.Config, logger *slog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	routes := httpx.NewRoutes()
	pageshttp.RegisterNames(routes, app.AdminPrefix)

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	rbacService := rbac.NewService(pool)
	pageRepo := pages.NewRepository(pool)
	historyRepo := history.NewRepository(pool)
	recorder := history.NewRecorder(pool)

	pagesHandler := pageshttp.NewHandler(pageshttp.Params{
		Logger:    logger,
		Pages:     pageRepo,
		History:   historyRepo,
		Users:     history.NewCachedUsers(historyRepo, redisClient, cfg.HistoryUsersCacheTTL),
		Workflows: workflow.NewRepository(pool),
		Timeline:  historyRepo,
		Revisions: revisions.NewRepository(pool, recorder),
		Policy:    rbac.NewPagePolicy(rbacService),
		Templates: templates,
		Routes:    routes,
		CSRF:      csrfManager,
		PageSize:  cfg.HistoryPageSize,
	})

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Routes:         routes,
		AuthHandler:    authHandler,
		PagesHandler:   pagesHandler,
		JobHandler:     jobs.NewHandler(inspector, logger),
		RBACMiddleware: rbac.Middleware{Service: rbacService, Logger: logger},
		Pages:          pageRepo,
		Metrics:        observability.NewMetrics(),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
