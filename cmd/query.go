package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bisegni/ossql/pkg/database"
	"github.com/bisegni/ossql/pkg/engine"
)

var queryCmd = &cobra.Command{
	Use:   `query "SQL"`,
	Short: "Run a query and stream the rows as JSONL",
	Long: `Run a SQL query and write one JSON object per result row. Pages are
fetched from the service as the output is consumed.

Examples:
  ossql query "SELECT name, age FROM people"
  ossql query --select "name,addr.city AS city" "SELECT * FROM people"
  ossql query --tree --limit 3 "SELECT * FROM people"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunQuery(cmd, args[0])
	},
}

// RunQuery executes sql and writes the rows to stdout.
func RunQuery(cmd *cobra.Command, sql string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close(os.Stderr)

	executor := engine.NewExecutor()
	executor.Pretty = QueryPretty
	executor.Tree = QueryTree
	executor.Limit = QueryLimit
	executor.Fields = engine.ParseFields(QuerySelect)

	table := database.NewRemoteTable(s.fetcher, sql, s.cfg.FetchSize, s.cursorOptions()...)
	n, err := executor.Execute(cmd.Context(), table, os.Stdout)
	if err != nil {
		return err
	}
	s.log.Debug("query finished", "rows", n)
	return nil
}
