package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/onexay/gitobs/internal/config"
	"github.com/onexay/gitobs/internal/httpserver"
	"github.com/onexay/gitobs/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	srv, err := httpserver.NewServer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server terminated: %v", err)
	}
}
