package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	platformconfig "campuslink-client-go/internal/platform/config"
	platformlogging "campuslink-client-go/internal/platform/logging"
	httptransport "campuslink-client-go/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "devserver:", err)
		os.Exit(1)
	}
}

func run() error {
	res, err := platformconfig.NewLoader().Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := res.Config

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("initialise logging: %w", err)
	}
	defer logger.Close()
	log := logger.Slog()

	redisAddr := cfg.DevServer.RedisAddr
	if redisAddr == "" && cfg.DevServer.EmbeddedRedis {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start embedded redis: %w", err)
		}
		defer mr.Close()
		redisAddr = mr.Addr()
		log.Info("embedded redis started", "addr", redisAddr)
	}
	if redisAddr == "" {
		return fmt.Errorf("no redis address configured and embedded redis disabled")
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	router, err := httptransport.Build(httptransport.Options{
		Logger:      log,
		LogLevel:    cfg.Log.Level,
		JWTSecret:   cfg.DevServer.JWTSecret,
		Redis:       rdb,
		ReportLimit: cfg.DevServer.ReportLimit,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:    cfg.DevServer.Addr,
		Handler: router.Engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("devserver listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
