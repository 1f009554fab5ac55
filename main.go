package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"oncopredict/config"
	"oncopredict/gateway"
	qhttp "oncopredict/http"
	"oncopredict/logging"
	"oncopredict/ml"
	"oncopredict/monitoring"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	code, err := run(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oncopredict: %v\n", err)
	}
	os.Exit(code)
}

func run(configPath string) (int, error) {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return exitConfig, err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return exitConfig, err
	}
	defer closer.Close()

	// 2. Acquire the classifier; a failure leaves the service degraded
	classifier := gateway.AcquireClassifier(ml.LoadModel, cfg.Model.Type, cfg.Model.Path, logger)
	gw, err := gateway.New(classifier, gateway.Options{Logger: logger, CacheSize: cfg.Cache.Size})
	if err != nil {
		return exitConfig, err
	}
	logger.Info("prediction gateway initialized", zap.Stringer("status", gw.Health()))

	// 3. Start HTTP server
	serverConfig := qhttp.ServerConfig{
		Addr:         cfg.Addr(),
		ReadTimeout:  cfg.Http.ReadTimeout,
		WriteTimeout: cfg.Http.WriteTimeout,
		MaxBodyBytes: cfg.Http.MaxBodyBytes,
	}
	if cfg.Metrics.Enabled {
		serverConfig.MetricsPath = cfg.Metrics.Path
	}
	server := qhttp.NewServer(serverConfig, gw, logger, monitoring.NewMetrics())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return exitRuntime, err
		}
		return exitOK, nil
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		return exitRuntime, err
	}

	logger.Info("exiting")
	return exitOK, nil
}
