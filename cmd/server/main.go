package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/defcomm/internal/buildinfo"
	"github.com/dmitrijs2005/defcomm/internal/logging"
	"github.com/dmitrijs2005/defcomm/internal/server"
	"github.com/dmitrijs2005/defcomm/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(os.Stdout, cfg.Env)

	app, err := server.NewApp(cfg, logger)
	if err != nil {
		logger.Error(context.Background(), err.Error())
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		logger.Error(context.Background(), err.Error())
		os.Exit(1)
	}
}
