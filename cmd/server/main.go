package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/autos-marketplace/config"
	"github.com/ErlanBelekov/autos-marketplace/internal/auth"
	"github.com/ErlanBelekov/autos-marketplace/internal/email"
	"github.com/ErlanBelekov/autos-marketplace/internal/health"
	"github.com/ErlanBelekov/autos-marketplace/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/autos-marketplace/internal/log"
	"github.com/ErlanBelekov/autos-marketplace/internal/metrics"
	httptransport "github.com/ErlanBelekov/autos-marketplace/internal/transport/http"
	"github.com/ErlanBelekov/autos-marketplace/internal/transport/http/handler"
	"github.com/ErlanBelekov/autos-marketplace/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if cfg.AutoMigrate {
		if err := migrateUp(cfg.DatabaseURL, logger); err != nil {
			stop()
			log.Fatalf("migrate: %v", err)
		}
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		stop()
		log.Fatalf("hasher: %v", err)
	}
	sessions := auth.NewSessions([]byte(cfg.JWTSecret), cfg.SessionTTL)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	// Accounts
	accountRepo := postgres.NewAccountRepository(pool)
	authUsecase := usecase.NewAuthUsecase(accountRepo, hasher, sessions, sender, usecase.AuthConfig{
		AppURL:         cfg.AppURL,
		VerifyTokenTTL: cfg.VerifyTokenTTL,
		MailTimeout:    cfg.MailTimeout,
	}, logger)
	authHandler := handler.NewAuthHandler(authUsecase, logger, !cfg.IsProduction())

	// Autos
	autoRepo := postgres.NewAutoRepository(pool)
	autoUsecase := usecase.NewAutoUsecase(autoRepo)
	autoHandler := handler.NewAutoHandler(autoUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer,
		health.PostgresProbe(pool),
		health.Probe{Name: "mailer", Check: func(context.Context) error { return email.Ready(sender) }},
	)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, httptransport.RouterConfig{
			AllowedOrigins: cfg.AllowedOrigins(),
			RequestTimeout: cfg.RequestTimeout,
			HSTS:           !cfg.IsLocal(),
		}, sessions, authHandler, autoHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func migrateUp(databaseURL string, logger *slog.Logger) error {
	m, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("close migrator", "error", err)
		}
	}()

	if err := m.Up(); err != nil {
		return err
	}
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("migrations applied", "version", v, "dirty", dirty)
	return nil
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
