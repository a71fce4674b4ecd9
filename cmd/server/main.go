package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skill-staffing/internal/app"
	"skill-staffing/internal/config"
	"skill-staffing/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.New(cfg.App.Environment)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	defer log.Sync()

	initCtx, initCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	bootstrap, cleanup, err := app.Bootstrap(initCtx, cfg, log)
	initCancel()
	if err != nil {
		log.Fatal("failed to bootstrap app", "error", err)
	}

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	bootstrap.Container.Start(runCtx)

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Fatal("invalid HTTP port", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr, "env", cfg.App.Environment)
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", "error", err)
		}
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
		log.Warn("shutdown error", "error", err)
	}
	if err := cleanup(ctx); err != nil {
		log.Warn("cleanup error", "error", err)
	}
	stop()
}
