package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mdbgw/internal/lookup"
)

var queryTimeout time.Duration

var queryCmd = &cobra.Command{
	Use:   "query <lookup_host> <lookup_port> <key>",
	Short: "Send one key to a lookup server and print the raw result lines",
	Long: `Send one query to a running lookup server and print its result lines as
received. An empty key ("") matches every record.

Examples:
  mdbgw query localhost 9999 cat
  mdbgw query localhost 9999 ""`,
	Args: cobra.ExactArgs(3),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 10*time.Second, "Query timeout")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	port, err := parsePort(args[1])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	client := lookup.NewClient(net.JoinHostPort(args[0], strconv.Itoa(port)), lookup.ModePerRequest)
	defer func() { _ = client.Close() }()

	return printQuery(ctx, cmd.OutOrStdout(), client, args[2])
}

func printQuery(ctx context.Context, w io.Writer, client *lookup.Client, key string) error {
	n := 0
	err := client.Stream(ctx, key, func(line string) error {
		n++
		_, err := io.WriteString(w, line)
		return err
	})
	if err != nil {
		return fmt.Errorf("query %q against %s failed: %w", key, client.Addr(), err)
	}
	if n == 0 {
		_, _ = fmt.Fprintf(w, "No records match %q\n", key)
	}
	return nil
}
