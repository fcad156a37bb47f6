package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/dmitrijs2005/tripplanner/internal/buildinfo"
	"github.com/dmitrijs2005/tripplanner/internal/client/cli"
	"github.com/dmitrijs2005/tripplanner/internal/client/config"
	"github.com/dmitrijs2005/tripplanner/internal/logging"
)

const appName = "Trip Planner"

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func main() {

	displayAppname(appName)
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	// SIGINT is left to the REPL, where it cancels a running plan request.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to start", "error", err)
		stop()
		os.Exit(1)
	}
	defer app.Close()

	app.Run(ctx)
}
