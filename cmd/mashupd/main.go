package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mashup/internal/config"
	"mashup/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(os.Getenv("MASHUP_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := start(ctx, cfg, logger)
	if err != nil {
		logger.Error("mashupd failed to start", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	<-ctx.Done()
	logger.Info("mashupd shutting down")
}
