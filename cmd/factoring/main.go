package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"factoring/internal/amqp"
	"factoring/internal/backend"
	"factoring/internal/cache"
	"factoring/internal/cli"
	"factoring/internal/core"
	apphttp "factoring/internal/http"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	result, err := backend.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()
	logger.Info("Initialized record store", "backend", cfg.DataBackend)

	rates := core.DefaultRates()
	if cfg.RatesFile != "" {
		loaded, err := core.LoadRatesFile(cfg.RatesFile)
		if err != nil {
			logger.Error("Failed to load rates file", "error", err, "path", cfg.RatesFile)
			os.Exit(1)
		}
		rates = loaded
		logger.Info("Loaded exchange rates", "path", cfg.RatesFile, "pairs", len(rates))
	}

	var audit apphttp.AuditPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		audit = client
		logger.Info("Audit publishing enabled",
			"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Audit publishing disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, result.Store, rates, audit, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	cacheManager := cache.NewManager()
	for _, c := range srv.Caches() {
		cacheManager.Register(c)
	}
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting factoring server",
			"port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
