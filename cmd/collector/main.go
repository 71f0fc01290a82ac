// cmd/collector/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/config"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/pipeline"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("heat news collection starting", "scope", pipeline.Describe(cfg))

	if err := pipeline.Run(ctx, cfg); err != nil {
		// The checkpoint survives a failed run so the next one can resume
		logger.Error("pipeline failed, checkpoint preserved for resume", "error", err)
		os.Exit(1)
	}
}
