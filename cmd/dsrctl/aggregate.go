package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/dsr-impact-service/internal/config"
	"github.com/couchcryptid/dsr-impact-service/internal/domain"
)

type aggregateFlags struct {
	report  string
	weights string
	out     string
}

func newAggregateCmd() *cobra.Command {
	f := &aggregateFlags{}

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Compute totals, rankings, severity and narratives for a situation report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAggregate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.report, "report", "", "Situation report JSON file")
	flags.StringVar(&f.weights, "weights", "", "Severity weight overrides, e.g. death=2,cattle=0")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

func runAggregate(cmd *cobra.Command, f *aggregateFlags) error {
	weights, err := config.ParseSeverityWeights(f.weights)
	if err != nil {
		return exitError(exitInput, "%v", err)
	}

	report, err := loadReport(f.report)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), f.out, domain.Aggregate(report, weights))
}
