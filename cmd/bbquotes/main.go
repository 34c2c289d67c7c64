// Package main is the entry point for the bbquotes terminal client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/bbquotes/internal/adapters/cli"
)

// Version is injected via ldflags.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := cli.NewRootCommand(cli.Options{Version: Version}).ExecuteContext(ctx)

	stop()

	if err != nil {
		// Failed fetches have already been rendered.
		if !errors.Is(err, cli.ErrFetchFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}

		os.Exit(1)
	}
}
