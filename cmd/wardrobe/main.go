package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wardrobe/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.Execute(ctx, cli.NewRootCommand(cli.Config{}), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
