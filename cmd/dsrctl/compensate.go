package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
)

type compensateFlags struct {
	report    string
	gis       string
	canonical string
	rates     string
	out       string
}

func newCompensateCmd() *cobra.Command {
	f := &compensateFlags{}

	cmd := &cobra.Command{
		Use:   "compensate",
		Short: "Estimate per-district and provincial compensation",
		Long: `Estimate compensation for every GIS district. Districts whose incidents in
the report carry itemized damage are priced from those incidents; the rest
are priced from their GIS totals. The provincial counts are copied from the
canonical totals file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompensate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.report, "report", "", "Situation report JSON file")
	flags.StringVar(&f.gis, "gis", "", "GIS district GeoJSON file")
	flags.StringVar(&f.canonical, "canonical", "", "Canonical cumulative totals JSON file")
	flags.StringVar(&f.rates, "rates", "", "Rate table YAML file (default: built-in table)")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	_ = cmd.MarkFlagRequired("report")
	_ = cmd.MarkFlagRequired("gis")
	_ = cmd.MarkFlagRequired("canonical")

	return cmd
}

func runCompensate(cmd *cobra.Command, f *compensateFlags) error {
	rates, err := loadRates(f.rates)
	if err != nil {
		return err
	}
	report, err := loadReport(f.report)
	if err != nil {
		return err
	}
	districts, err := loadGIS(f.gis)
	if err != nil {
		return err
	}
	canonical, err := loadCanonical(f.canonical)
	if err != nil {
		return err
	}

	sources := domain.DamageSourcesFor(report, districts)
	return writeJSON(cmd.OutOrStdout(), f.out, domain.EstimateCompensation(sources, canonical, rates))
}
