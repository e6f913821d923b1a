// Package main - Entry point for the fundalloc API server
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fundalloc/api"
	"fundalloc/internal/config"
	"fundalloc/internal/logging"
)

const version = "0.1.0"

func main() {
	cfgFile := flag.String("config", "", "config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	if *cfgFile != "" {
		cfg, err := config.Load(*cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}

	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: api.NewServer(version),
	}

	go func() {
		logging.Info("fundalloc server listening",
			zap.String("addr", listenAddr),
			zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("server failed", zap.Error(err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logging.Info("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("shutdown failed", zap.Error(err))
	}
}
