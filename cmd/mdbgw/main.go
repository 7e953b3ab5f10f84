package main

import (
	"os"

	"mdbgw/internal/slogutil"
)

func main() {
	logger := slogutil.NewLoggerWithFormat(os.Stderr, slogutil.FormatHuman, slogutil.LevelFromString("info"))

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", "error", err.Error())
		os.Exit(1)
	}
}
