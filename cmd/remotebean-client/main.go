package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yndnr/remotebean-go/internal/cli/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := command.App()
	if err := app.RunContext(ctx, os.Args); err != nil {
		command.PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
