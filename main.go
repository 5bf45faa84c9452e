package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BorisDmv/my-todo-api/internal/config"
	"github.com/BorisDmv/my-todo-api/internal/db"
	"github.com/BorisDmv/my-todo-api/internal/handlers"
	"github.com/BorisDmv/my-todo-api/internal/logging"
	appmiddleware "github.com/BorisDmv/my-todo-api/internal/middleware"
)

type store interface {
	handlers.Store
	Close()
}

func main() {
	cfg := config.MustLoad()
	log := logging.New(os.Stderr, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		st.Close()
		log.Info("store connection released")
	}()

	opts := handlers.RouterOptions{
		AllowedOrigins: cfg.CorsAllowedOrigins,
		AccessLog:      true,
	}
	done := make(chan struct{})
	defer close(done)
	if cfg.RateLimit.RPS > 0 {
		opts.RateLimiter = appmiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go opts.RateLimiter.Run(done)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.NewRouter(st, log, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "port", cfg.Port, "driver", cfg.StoreDriver, "origins", cfg.CorsAllowedOrigins)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var serveErr error
	select {
	case sig := <-stop:
		log.Info("shutdown requested", "signal", sig.String())
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	return serveErr
}

func openStore(ctx context.Context, cfg config.Config) (store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return db.NewMemoryStore(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pg, err := db.NewStore(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(connectCtx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}
