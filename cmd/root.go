package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bisegni/ossql/pkg/config"
)

var (
	ConfigFile      string
	QueryPretty     bool
	QueryTree       bool
	QuerySelect     []string
	QueryLimit      int
	ReplayFile      string
	RecordFile      string
	ShowMetrics     bool
	InteractiveMode bool
)

var rootCmd = &cobra.Command{
	Use:   `ossql ["SQL"]`,
	Short: "SQL client for OpenSearch-compatible search services",
	Long: `ossql runs SQL queries against the SQL endpoint of a search service and
streams the result rows as JSONL. Large results are read page by page
through the service's cursor protocol.
If no command is provided, it defaults to running the given query.

Supports:
  - Query argument: ossql "SELECT name FROM people"
  - Stdin: echo "SELECT 1" | ossql
  - Offline replay of recorded responses: ossql --replay pages.jsonl "SELECT ..."

Examples:
  ossql --url jdbc:opensearch://https://search.local:9200 "SELECT * FROM logs"
  ossql --fetch-size 500 --select "host,geo.city AS city" "SELECT * FROM logs"
  ossql --record pages.jsonl "SELECT * FROM logs"
  ossql -i
  ossql stats "SELECT * FROM logs"`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		if InteractiveMode {
			return RunInteractive(cmd)
		}

		var sql string
		if len(args) == 1 {
			sql = args[0]
		} else {
			// Check if stdin has data
			stat, _ := os.Stdin.Stat()
			if stat == nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				return cmd.Help()
			}
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read query from stdin: %w", err)
			}
			sql = strings.TrimSpace(string(b))
			if sql == "" {
				return cmd.Help()
			}
		}
		return RunQuery(cmd, sql)
	},
}

// Execute runs the root command. An interrupt cancels in-flight round trips
// so open cursors are still released.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	config.AddFlags(pf)
	pf.StringVar(&ConfigFile, "config", "", "config file (yaml, json or toml)")
	pf.StringVar(&ReplayFile, "replay", "", "serve responses from a recorded JSON/JSONL file instead of the service")
	pf.StringVar(&RecordFile, "record", "", "append every response document to this JSONL file")
	pf.BoolVar(&ShowMetrics, "metrics", false, "print round trip metrics to stderr on exit")
	pf.BoolVar(&QueryPretty, "pretty", false, "Pretty print output")
	pf.BoolVar(&QueryTree, "tree", false, "print each row as a tree of its nested values")
	pf.StringSliceVarP(&QuerySelect, "select", "s", []string{}, "Select specific fields to include in output (e.g., name,addr.city AS city)")
	pf.IntVarP(&QueryLimit, "limit", "n", 0, "stop after this many rows (0 = all)")
	rootCmd.Flags().BoolVarP(&InteractiveMode, "interactive", "i", false, "Interactive REPL mode")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(convertCmd)
}
