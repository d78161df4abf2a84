package main

import (
	"context"
	"fmt"
	"os"

	"github.com/appetiteclub/kitchenscreen/cmd/utils/internal/commands"
	"github.com/aquamarinepk/aqm"
)

const (
	appName      = "kitchenscreen-utils"
	appVersion   = "0.1.0"
	appNamespace = "UTILS"
)

func main() {
	// Flags belong to cobra; config only reads UTILS_* variables.
	config, err := aqm.LoadConfig(appNamespace, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load config: %v\n", err)
		os.Exit(1)
	}

	logger := aqm.NewLogger(config.GetStringOrDef("log.level", "info"))

	root := commands.NewRootCmd(appName, appVersion, config, commands.DefaultRunners(config, logger))
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
