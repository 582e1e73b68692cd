// Package main is the entry point for the statusbot service.
package main

import (
	"os"

	"github.com/mcstatusbot/statusbot/cmd/statusbot/app"
)

func main() {
	// stderr keeps stdout clean for commands that print data
	setupLogging(os.Stderr, newLogEnv())

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
