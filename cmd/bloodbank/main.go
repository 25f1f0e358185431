// Package main запускает HTTP-сервер сервиса банка крови.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/kues-bloodbank/internal/config"
	"github.com/mmeshcher/kues-bloodbank/internal/handler"
	"github.com/mmeshcher/kues-bloodbank/internal/metrics"
	"github.com/mmeshcher/kues-bloodbank/internal/middleware"
	"github.com/mmeshcher/kues-bloodbank/internal/model"
	"github.com/mmeshcher/kues-bloodbank/internal/remote"
	"github.com/mmeshcher/kues-bloodbank/internal/repository"
	"github.com/mmeshcher/kues-bloodbank/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var repo service.Repository
	if cfg.DatabaseURI != "" {
		pg, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		repo = pg
	} else {
		sugar.Info("DATABASE_URI is empty, using in-memory store")
		repo = repository.NewMemoryRepository()
	}

	var remoteClient *remote.Client
	if cfg.RemoteEndpoint != "" {
		remoteClient = remote.NewClient(cfg.RemoteEndpoint)
	}

	hasher, err := service.HasherFor(cfg.PasswordScheme)
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	m := metrics.New()

	svc := service.NewService(repo, remoteClient,
		service.WithHasher(hasher),
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithSyncInterval(cfg.SyncInterval),
		service.WithAdmin(model.AdminAccount{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			Email:    cfg.AdminEmail,
		}),
	)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	loginLimit := middleware.RateLimit(cfg.LoginRatePerSecond, cfg.LoginBurst, cfg.TrustedProxies)
	h := handler.NewHandler(svc, logger, authMiddleware, m, loginLimit)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск фоновой отправки событий во внешний endpoint
	g.Go(func() error {
		svc.StartSync(ctx)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting blood bank server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
