package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mdbgw/internal/accesslog"
	"mdbgw/internal/config"
	mdberrors "mdbgw/internal/errors"
	"mdbgw/internal/gateway"
	"mdbgw/internal/lookup"
	"mdbgw/internal/slogutil"
	"mdbgw/internal/version"
)

var (
	httpLookupMode string
	httpAccessDB   string
)

var httpServerCmd = &cobra.Command{
	Use:   "http-server <server_port> <web_root> <lookup_host> <lookup_port>",
	Short: "Serve static files and the /mdb-lookup page",
	Long: `Start the HTTP front end. Files are served from web_root; requests for
/mdb-lookup?key=... are forwarded to the lookup server and rendered as an
HTML table. One access-log line per request is printed to stdout.

Examples:
  mdbgw http-server 8888 ./html localhost 9999
  mdbgw http-server 8888 ./html localhost 9999 --lookup-mode per-request
  mdbgw http-server 8888 ./html localhost 9999 --access-db access.db`,
	Args: cobra.ExactArgs(4),
	RunE: runHTTPServer,
}

func init() {
	httpServerCmd.Flags().StringVar(&httpLookupMode, "lookup-mode", "",
		"Lookup connection mode: shared or per-request (default from config)")
	httpServerCmd.Flags().StringVar(&httpAccessDB, "access-db", "",
		"Also record access-log entries in this SQLite file")
	rootCmd.AddCommand(httpServerCmd)
}

func runHTTPServer(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := loadSettings()
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	logger = slogutil.Component(logger, "gateway")

	port, err := parsePort(args[0])
	if err != nil {
		return err
	}
	lookupPort, err := parsePort(args[3])
	if err != nil {
		return err
	}
	webRoot, lookupHost := args[1], args[2]

	mode := cfg.Gateway.LookupMode
	if httpLookupMode != "" {
		mode = httpLookupMode
	}
	if mode != config.LookupModeShared && mode != config.LookupModePerRequest {
		return mdberrors.New(mdberrors.StartupFailed, fmt.Sprintf("unknown lookup mode %q", mode), nil)
	}

	accessDB := cfg.Gateway.AccessDB
	if httpAccessDB != "" {
		accessDB = httpAccessDB
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	// Resolve up front so a bad host fails at startup in either mode.
	resolveCtx, resolveCancel := context.WithTimeout(ctx, 10*time.Second)
	addrs, err := net.DefaultResolver.LookupHost(resolveCtx, lookupHost)
	resolveCancel()
	if err != nil || len(addrs) == 0 {
		return mdberrors.New(mdberrors.StartupFailed, fmt.Sprintf("failed to resolve lookup host %q", lookupHost), err)
	}
	lookupAddr := net.JoinHostPort(lookupHost, strconv.Itoa(lookupPort))

	client, err := lookup.Dial(ctx, lookupAddr, lookup.Mode(mode))
	if err != nil {
		return mdberrors.New(mdberrors.StartupFailed, "failed to connect to lookup server", err)
	}
	defer func() { _ = client.Close() }()

	opts := gateway.Options{
		WebRoot:        webRoot,
		Lookup:         client,
		Logger:         logger,
		AccessLog:      os.Stdout,
		MaxRequestLine: cfg.Gateway.MaxRequestLine,
	}
	if accessDB != "" {
		store, err := accesslog.Open(accessDB, logger)
		if err != nil {
			return mdberrors.New(mdberrors.StartupFailed, "failed to open access database", err)
		}
		defer func() { _ = store.Close() }()
		opts.Recorder = store
	}

	server, err := gateway.NewServer(opts)
	if err != nil {
		return mdberrors.New(mdberrors.StartupFailed, "failed to create gateway", err)
	}

	logger.Info("Starting gateway", "version", version.Info(), "port", port, "webRoot", webRoot, "lookup", lookupAddr, "mode", mode)
	if err := server.ListenAndServe(ctx, fmt.Sprintf(":%d", port)); err != nil {
		return mdberrors.New(mdberrors.StartupFailed, "gateway failed", err)
	}

	logger.Info("Gateway stopped")
	return nil
}
