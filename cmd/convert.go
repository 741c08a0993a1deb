package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bisegni/ossql/pkg/config"
	"github.com/bisegni/ossql/pkg/directive"
	"github.com/bisegni/ossql/pkg/types"
)

var (
	convertType string
	convertTo   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <literal>",
	Short: "Convert a literal cell value to a host representation",
	Long: `Convert a literal the way a cell of the given domain type would be read.
The literal is a number, true, false, null or a string; quotes are optional.

Examples:
  ossql convert --type long --to int8 42
  ossql convert --type timestamp --to timestamp "2015-01-01 12:10:30"
  ossql convert --type keyword --to float64 3.25`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertType, "type", "", "domain type of the value (e.g. long, keyword, timestamp)")
	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "default", "target representation (e.g. int32, string, timestamp)")
	convertCmd.MarkFlagRequired("type")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags(), ConfigFile)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	rep, err := types.ParseRepresentation(convertTo)
	if err != nil {
		return err
	}
	lit, err := directive.ParseLiteral(args[0])
	if err != nil {
		// Anything that does not lex as a single literal is a string.
		lit = types.StringValue(args[0])
	}
	reg := types.NewRegistry()
	return convertLiteral(os.Stdout, reg, types.NewConverter(reg), &types.Params{Location: loc}, convertType, lit, rep)
}

func convertLiteral(w io.Writer, reg *types.Registry, conv *types.Converter, p *types.Params, typeName string, lit types.Value, rep types.Representation) error {
	d, err := reg.Describe(typeName, true)
	if err != nil {
		return err
	}
	out, err := conv.Convert(lit, d.Type, rep, p)
	if err != nil {
		return err
	}
	if out == nil {
		fmt.Fprintln(w, "null")
		return nil
	}
	fmt.Fprintf(w, "%s (%T)\n", types.Format(out), out)
	return nil
}
