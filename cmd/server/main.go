package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/email-builder/internal/api"
	"github.com/email-builder/internal/auth"
	"github.com/email-builder/internal/config"
	"github.com/email-builder/internal/logging"
	"github.com/email-builder/internal/middleware"
	"github.com/email-builder/internal/render"
	"github.com/email-builder/internal/service"
	"github.com/email-builder/internal/storage"
	"github.com/email-builder/internal/upload"

	_ "github.com/email-builder/docs" // swagger docs
)

// @title Email Builder API
// @version 1.0
// @description Backend for the email template builder: accounts, templates, image uploads and HTML export.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your JWT token with the `Bearer ` prefix, e.g. "Bearer eyJhbGci..."

func main() {
	// Load configuration
	cfg := config.Load()

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	ctx := context.Background()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.SlogLogger) error {
	var (
		users     service.UserStore
		templates service.TemplateStore
		pinger    api.Pinger
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn(ctx, "using in-memory storage, data is lost on restart")
		users = storage.NewMemoryUserStore()
		templates = storage.NewMemoryTemplateStore()
	case config.DriverPostgres:
		logger.Info(ctx, "connecting to database")
		db, err := storage.NewDatabase(&cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		logger.Info(ctx, "running migrations")
		if err := db.RunMigrations(ctx); err != nil {
			return err
		}
		users = storage.NewUserRepository(db)
		templates = storage.NewTemplateRepository(db)
		pinger = db
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Database.Driver)
	}

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	var renderOpts []render.Option
	if cfg.Render.SanitizeHTML {
		renderOpts = append(renderOpts, render.WithSanitizer())
	}
	renderer, err := render.New(renderOpts...)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL())
	exposeErrors := cfg.App.IsDevelopment()

	authSvc := service.NewAuthService(users, tokens, logger.With("component", "auth"))
	templateSvc := service.NewTemplateService(templates, renderer, logger.With("component", "templates"))
	imageSvc := service.NewImageService(
		upload.NewOptimizer(),
		upload.NewDiskStore(cfg.Upload.Dir),
		cfg.Upload.PublicBaseURL,
		cfg.Upload.URLPrefix,
		logger.With("component", "images"),
	)

	handler := api.NewHandler(authSvc, templateSvc, imageSvc, logger, api.Options{
		MaxUploadBytes: cfg.Upload.MaxBytes,
		ExposeErrors:   exposeErrors,
		Pinger:         pinger,
	})
	authMiddleware := middleware.NewAuthMiddleware(tokens, logger, exposeErrors)
	router := api.NewRouter(handler, authMiddleware, cfg, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server shutdown error", "error", err)
	}

	logger.Info(ctx, "server stopped")
	return nil
}
