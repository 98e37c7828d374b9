package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"copydesk/internal/config"
	"copydesk/internal/daemon"
	"copydesk/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, path, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := daemon.New(cfg, logger, buildCollaborators(cfg))
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}
	logger.Info("copydeskd running",
		logging.String("config", path),
		logging.String("api", d.Addr()))

	<-ctx.Done()
	logger.Info("copydeskd shutting down")
	d.Stop()
}
