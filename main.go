// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp/censoredpi/cmd/bench"
	"github.com/hashicorp/censoredpi/cmd/run"
	cmdversion "github.com/hashicorp/censoredpi/cmd/version"
	"github.com/hashicorp/censoredpi/version"
)

func main() {
	os.Exit(realMain(os.Args[1:], &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}))
}

func realMain(args []string, ui cli.Ui) int {
	l := configureLogging("censoredpi")

	c := cli.NewCLI("censoredpi", version.GetVersion().SemanticVersion())
	c.Args = args
	c.Commands = commands(ui)

	rc, err := c.Run()
	if err != nil {
		l.Error("Error executing CLI", "error", err)
	}
	return rc
}

func commands(ui cli.Ui) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"run":     run.CommandFactory(ui),
		"bench":   bench.CommandFactory(ui),
		"version": cmdversion.CommandFactory(ui),
	}
}

// configureLogging takes a logger name, sets the default configuration, grabs the LOG_LEVEL from our ENV vars, and
// returns a configured and usable logger.
func configureLogging(loggerName string) hclog.Logger {
	// Create logger, set default and log level
	appLogger := hclog.New(&hclog.LoggerOptions{
		Name:  loggerName,
		Color: hclog.AutoColor,
	})
	hclog.SetDefault(appLogger)
	if logStr := os.Getenv("LOG_LEVEL"); logStr != "" {
		if level := hclog.LevelFromString(logStr); level != hclog.NoLevel {
			appLogger.SetLevel(level)
			appLogger.Debug("Logger configuration change", "LOG_LEVEL", hclog.Fmt("%s", logStr))
		}
	}
	return hclog.Default()
}
