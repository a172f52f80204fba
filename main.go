// Package main provides the entrypoint for zadarma.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/isometry/zadarma-go/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.New(os.Args[1:]).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
