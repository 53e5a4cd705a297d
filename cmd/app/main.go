package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/packing-advisor/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := initializeApp()
	if err != nil {
		logger.New().Error("failed to wire application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.New().Error("application stopped with error", "error", err)
		os.Exit(1)
	}
}
