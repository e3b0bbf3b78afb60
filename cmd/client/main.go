package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/defcomm/internal/buildinfo"
	"github.com/dmitrijs2005/defcomm/internal/client/cli"
	"github.com/dmitrijs2005/defcomm/internal/client/config"
	"github.com/dmitrijs2005/defcomm/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// Poll failures go to stderr so they do not interleave with the prompt.
	logger := logging.New(os.Stderr, "production")

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Run(ctx)
}
