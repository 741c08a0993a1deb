package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bisegni/ossql/pkg/cursor"
	"github.com/bisegni/ossql/pkg/engine"
)

var statsCmd = &cobra.Command{
	Use:   `stats "SQL"`,
	Short: "Show statistics about a query result",
	Long: `Run a query, read every page of the result and report the row count,
the number of pages and, per column, how many cells of each kind were seen.

Examples:
  ossql stats "SELECT * FROM logs"
  ossql --fetch-size 1000 stats "SELECT host, status FROM logs"`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close(os.Stderr)

	c, err := cursor.Open(cmd.Context(), s.fetcher, args[0], s.cfg.FetchSize, s.cursorOptions()...)
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := engine.CollectStats(cmd.Context(), c)
	if err != nil {
		return err
	}
	stats.Write(os.Stdout)
	return nil
}
