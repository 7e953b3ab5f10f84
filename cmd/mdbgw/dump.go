package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mdbgw/internal/mdb"
	"mdbgw/internal/seed"
)

const dumpFormatText = "text"

var dumpFormat string

var dumpCmd = &cobra.Command{
	Use:   "dump <database_file>",
	Short: "Print the records of a database file",
	Long: `Print every record of a database file. The text format shows each record
the way the lookup server would report it for an empty key; the toml, yaml and
json formats produce a seed file that 'mdbgw mkdb' accepts.

Examples:
  mdbgw dump records.db
  mdbgw dump records.db --format toml > records.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpFormat, "format", dumpFormatText, "Output format: text, json, toml, yaml")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	store, err := mdb.Load(args[0])
	if err != nil {
		return err
	}
	return writeDump(cmd.OutOrStdout(), store, dumpFormat)
}

func writeDump(w io.Writer, store *mdb.Store, format string) error {
	switch format {
	case dumpFormatText:
		for _, m := range mdb.Find(store, "") {
			if _, err := io.WriteString(w, mdb.FormatMatch(m)); err != nil {
				return err
			}
		}
		return nil
	case seed.FormatJSON, seed.FormatTOML, seed.FormatYAML:
		return seed.Encode(w, store.Records, format)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
