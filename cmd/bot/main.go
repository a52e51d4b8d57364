package main

import (
	"context"
	"os"
	"time"

	"stock-signal-bot/internal/logger"
)

func main() {
	err := newRootCmd().Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = logger.Shutdown(ctx)

	if err != nil {
		os.Exit(1)
	}
}
