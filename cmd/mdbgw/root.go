package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"mdbgw/internal/config"
	mdberrors "mdbgw/internal/errors"
	"mdbgw/internal/slogutil"
	"mdbgw/internal/version"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "mdbgw",
	Short: "mdbgw - message database web gateway",
	Long: `mdbgw serves static files over HTTP/1.0 and answers /mdb-lookup by
forwarding the search key to a lookup server that holds a fixed-width
record database in memory.

Run the two tiers separately:
  mdbgw lookup-server records.db 9999
  mdbgw http-server 8888 ./html localhost 9999`,
	Version:       version.Version,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default: mdbgw.{json,toml,yaml} in the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Log format: human or json (default from config)")
}

// loadSettings reads the config and builds the process logger. Flags given on
// the command line override the config file and environment.
func loadSettings() (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.LoadConfig(configPath, "")
	if err != nil {
		return nil, nil, nil, mdberrors.New(mdberrors.StartupFailed, "failed to load configuration", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	logger, closer, err := slogutil.FromConfig(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, nil, nil, mdberrors.New(mdberrors.StartupFailed, "failed to open log file", err)
	}
	return cfg, logger, closer, nil
}

// parsePort validates a decimal TCP port argument.
func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, mdberrors.New(mdberrors.StartupFailed, fmt.Sprintf("invalid port %q", s), err)
	}
	return port, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-shutdown:
			logger.Info("Received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(shutdown)
	}()

	return ctx, cancel
}
