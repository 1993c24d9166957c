package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dcmcodec/pixeldecode/cmd/pixdecodectl/cmd"
	"github.com/dcmcodec/pixeldecode/pkg/logging"
)

var GitSHA string = "NA"

func main() {
	ctx, cnc := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cnc()
	go func() {
		defer cnc()
		<-ctx.Done()
	}()

	slog.SetDefault(logging.Logger(os.Stdout, logging.Options{Level: slog.LevelInfo}))
	ctx = logging.AppendCtx(ctx, slog.Group("pixdecodectl", slog.String("git", GitSHA)))

	if err := cmd.NewRoot(ctx, GitSHA).Execute(); err != nil {
		os.Exit(1)
	}
}
