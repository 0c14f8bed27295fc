package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type ratesFlags struct {
	rates  string
	format string
}

func newRatesCmd() *cobra.Command {
	f := &ratesFlags{}

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Print the compensation rate table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRates(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.rates, "rates", "", "Rate table YAML file (default: built-in table)")
	flags.StringVar(&f.format, "format", "table", "Output format: table or json")

	return cmd
}

func runRates(cmd *cobra.Command, f *ratesFlags) error {
	rates, err := loadRates(f.rates)
	if err != nil {
		return err
	}

	switch f.format {
	case "json":
		return writeJSON(cmd.OutOrStdout(), "", map[string]any{"rates": rates.Rows()})
	case "table":
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tTYPE\tAMOUNT (PKR)\t")
		for _, r := range rates.Rows() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t\n", r.Category, r.Type, r.Amount)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q: want table or json", f.format)
	}
}
