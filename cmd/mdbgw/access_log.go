package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mdbgw/internal/accesslog"
	"mdbgw/internal/slogutil"
)

var accessLogLines int

var accessLogCmd = &cobra.Command{
	Use:   "access-log <access_db>",
	Short: "Show recent gateway requests recorded with --access-db",
	Long: `Show the most recent entries of an access-log database written by
'mdbgw http-server --access-db', newest first.

Examples:
  mdbgw access-log access.db
  mdbgw access-log access.db -n 100`,
	Args: cobra.ExactArgs(1),
	RunE: runAccessLog,
}

func init() {
	accessLogCmd.Flags().IntVarP(&accessLogLines, "lines", "n", 20, "Number of entries to show")
	rootCmd.AddCommand(accessLogCmd)
}

func runAccessLog(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); os.IsNotExist(err) {
		return fmt.Errorf("access database %s does not exist", args[0])
	}

	store, err := accesslog.Open(args[0], slogutil.NewDiscardLogger())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(context.Background(), accessLogLines)
	if err != nil {
		return err
	}
	return writeAccessLog(cmd.OutOrStdout(), entries)
}

func writeAccessLog(w io.Writer, entries []accesslog.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No requests recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tCLIENT\tSTATUS\tDURATION\tREQUEST")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Time.Local().Format(time.DateTime), e.ClientIP, e.Status, e.Duration, e.RequestLine)
	}
	return tw.Flush()
}
