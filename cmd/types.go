package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bisegni/ossql/pkg/types"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the domain types the client understands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := types.NewRegistry()
		return writeTypes(os.Stdout, reg)
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <type>",
	Short: "Show a type descriptor and the representations it converts to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := types.NewRegistry()
		return writeDescribe(os.Stdout, reg, types.NewConverter(reg), args[0])
	},
}

func writeTypes(w io.Writer, reg *types.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tHOST\tPRECISION\tDISPLAY\tSIGNED")
	for _, d := range reg.Descriptors() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%t\n", d.Name, d.Host, d.Precision, d.DisplaySize, d.Signed)
	}
	return tw.Flush()
}

func writeDescribe(w io.Writer, reg *types.Registry, conv *types.Converter, name string) error {
	d, err := reg.Describe(name, true)
	if err != nil {
		return err
	}
	reps := conv.Allowed(d.Type)
	names := make([]string, len(reps))
	for i, r := range reps {
		names[i] = r.String()
	}
	fmt.Fprintf(w, "%s\n", d.Name)
	fmt.Fprintf(w, "  host type:    %s\n", d.Host)
	fmt.Fprintf(w, "  precision:    %d\n", d.Precision)
	fmt.Fprintf(w, "  display size: %d\n", d.DisplaySize)
	fmt.Fprintf(w, "  signed:       %t\n", d.Signed)
	fmt.Fprintf(w, "  converts to:  %s\n", strings.Join(names, ", "))
	return nil
}
