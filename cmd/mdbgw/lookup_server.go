package main

import (
	"fmt"

	"github.com/spf13/cobra"

	mdberrors "mdbgw/internal/errors"
	"mdbgw/internal/lookup"
	"mdbgw/internal/slogutil"
	"mdbgw/internal/version"
)

var lookupMaxKeyLen int

var lookupServerCmd = &cobra.Command{
	Use:   "lookup-server <database_file> <server_port>",
	Short: "Serve record lookups over TCP",
	Long: `Start the lookup server. Each client connection sends one key per line;
the server answers with every matching record, one per line, followed by an
empty line. The database file is reloaded for every connection, so records
written by 'mdbgw mkdb' are picked up without a restart.

Examples:
  mdbgw lookup-server records.db 9999
  mdbgw lookup-server records.db.zst 9999 --max-key-len 5`,
	Args: cobra.ExactArgs(2),
	RunE: runLookupServer,
}

func init() {
	lookupServerCmd.Flags().IntVar(&lookupMaxKeyLen, "max-key-len", 0,
		"Truncate query keys to this many bytes (default from config)")
	rootCmd.AddCommand(lookupServerCmd)
}

func runLookupServer(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := loadSettings()
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	logger = slogutil.Component(logger, "lookup")

	port, err := parsePort(args[1])
	if err != nil {
		return err
	}

	maxKeyLen := cfg.Lookup.MaxKeyLen
	if lookupMaxKeyLen > 0 {
		maxKeyLen = lookupMaxKeyLen
	}

	server, err := lookup.NewServer(lookup.ServerConfig{
		Database:  args[0],
		MaxKeyLen: maxKeyLen,
	}, logger)
	if err != nil {
		return mdberrors.New(mdberrors.StartupFailed, "failed to create lookup server", err)
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	logger.Info("Starting lookup server", "version", version.Info(), "database", args[0], "port", port, "maxKeyLen", maxKeyLen)
	if err := server.ListenAndServe(ctx, fmt.Sprintf(":%d", port)); err != nil {
		return mdberrors.New(mdberrors.StartupFailed, "lookup server failed", err)
	}

	logger.Info("Lookup server stopped")
	return nil
}
