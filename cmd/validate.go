package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bisegni/ossql/pkg/cursor"
	"github.com/bisegni/ossql/pkg/engine"
	"github.com/bisegni/ossql/pkg/logger"
	"github.com/bisegni/ossql/pkg/protocol"
	"github.com/bisegni/ossql/pkg/types"
)

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Validate a recording of service responses",
	Long: `Validate that a file of recorded response documents decodes as one
paginated result: the first page carries a schema, every row matches it and
each cursor token leads to the next document.

Supports:
  - File paths: ossql validate pages.jsonl
  - Stdin: cat pages.json | ossql validate

Examples:
  ossql --record pages.jsonl "SELECT * FROM logs" > /dev/null
  ossql validate pages.jsonl
  ossql validate --strict pages.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "reject column types the client does not know")
}

func runValidate(cmd *cobra.Command, args []string) error {
	filename := "-"
	if len(args) > 0 {
		filename = args[0]
	}

	replay, err := protocol.NewReplayTransport(filename)
	if err != nil {
		fmt.Printf("❌ Validation failed: %v\n", err)
		return err
	}
	documents := replay.Remaining()

	reg := types.NewRegistry()
	f := protocol.NewFetcher(replay, reg,
		protocol.WithStrictTypes(validateStrict),
		protocol.WithLogger(logger.Get()),
	)
	// The recording already holds the answer; the statement text is never sent.
	c, err := cursor.Open(cmd.Context(), f, "recorded", 0, cursor.WithConverter(types.NewConverter(reg)))
	if err != nil {
		fmt.Printf("❌ Validation failed: %v\n", err)
		return err
	}
	defer c.Close()

	stats, err := engine.CollectStats(cmd.Context(), c)
	if err != nil {
		fmt.Printf("❌ Validation failed: %v\n", err)
		return err
	}
	if left := replay.Remaining(); left > 0 {
		err = fmt.Errorf("%d of %d document(s) were not reached by the cursor chain", left, documents)
		fmt.Printf("❌ Validation failed: %v\n", err)
		return err
	}

	fmt.Printf("✅ Valid recording with %d row(s) in %d page(s), %d column(s)\n", stats.Rows, stats.Pages, len(stats.Columns))
	return nil
}
