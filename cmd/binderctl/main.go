package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"binder/internal/cli"
	"binder/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Commands print their own results; logs stay quiet unless something is off
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(cli.AppOpener(cfg, logger), cfg)
	if err := root.ExecuteContext(ctx); err != nil {
		if cli.ExitCode(err) == cli.ExitError {
			logger.Error("binderctl failed", "error", err)
		}
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
