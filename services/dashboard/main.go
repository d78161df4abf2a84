package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/kitchenscreen/services/dashboard/internal/app"
	"github.com/aquamarinepk/aqm"
)

const appNamespace = "DASHBOARD"

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("Cannot setup %s(%s): %v", app.AppName, app.AppVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	application, err := app.New(config, logger)
	if err != nil {
		log.Fatalf("Cannot create %s: %v", app.AppName, err)
	}

	if err := application.Initialize(ctx); err != nil {
		log.Fatalf("Cannot initialize %s: %v", app.AppName, err)
	}

	if err := application.Run(ctx); err != nil {
		log.Fatalf("%s(%s) stopped with error: %v", app.AppName, app.AppVersion, err)
	}
}
