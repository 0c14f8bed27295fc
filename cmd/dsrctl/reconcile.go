package main

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
)

type reconcileFlags struct {
	report      string
	gis         string
	canonical   string
	failOnDrift bool
}

func newReconcileCmd() *cobra.Command {
	f := &reconcileFlags{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare report, GIS and canonical totals for one day",
		Long: `Print the report totals, the GIS district sums and the canonical totals side
by side, with the drift of the GIS sums from the canonical figures. The
compensation summary always uses the canonical figures; this command only
makes the gap visible.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd.OutOrStdout(), f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.report, "report", "", "Situation report JSON file")
	flags.StringVar(&f.gis, "gis", "", "GIS district GeoJSON file")
	flags.StringVar(&f.canonical, "canonical", "", "Canonical cumulative totals JSON file")
	flags.BoolVar(&f.failOnDrift, "fail-on-drift", false, "Exit non-zero when any check fails")
	_ = cmd.MarkFlagRequired("report")
	_ = cmd.MarkFlagRequired("gis")
	_ = cmd.MarkFlagRequired("canonical")

	return cmd
}

// metricRow is one reconciled metric across the three feeds.
type metricRow struct {
	name      string
	report    int
	gis       int
	canonical int
}

func (m metricRow) drift() int { return m.gis - m.canonical }

// phase tracks pass/fail for a reconciliation check.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func runReconcile(w io.Writer, f *reconcileFlags) error {
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

	rows := reconcileMetrics(domain.Aggregate(report, domain.DefaultSeverityWeights()).Totals, districts, canonical)
	phases := []*phase{
		checkDrift(rows),
		checkDistrictCoverage(report, districts),
	}

	fmt.Fprintf(w, "Reconciliation for %s\n\n", report.Date)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tREPORT\tGIS\tCANONICAL\tDRIFT\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%+d\t\n", r.name, r.report, r.gis, r.canonical, r.drift())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("DRIFT (%d)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-28s %s\n", p.name, status)
	}
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed && f.failOnDrift {
		return exitError(exitDrift, "reconciliation found drift for %s", report.Date)
	}
	return nil
}

func reconcileMetrics(totals domain.Totals, districts []domain.GISDistrict, canonical domain.CanonicalTotals) []metricRow {
	var deaths, injured, houses, livestock int
	for _, d := range districts {
		deaths += d.Deaths
		injured += d.Injured
		houses += d.HousesDamaged
		livestock += d.LivestockLost
	}
	return []metricRow{
		{name: "deaths", report: totals.Deaths, gis: deaths, canonical: canonical.Deaths.Int()},
		{name: "injured", report: totals.Injured, gis: injured, canonical: canonical.Injured.Int()},
		{name: "houses damaged", report: totals.HousesTotal, gis: houses, canonical: canonical.HousesDamaged.Int()},
		{name: "livestock lost", report: totals.Cattle, gis: livestock, canonical: canonical.LivestockLost.Int()},
	}
}

func checkDrift(rows []metricRow) *phase {
	p := &phase{name: "GIS sums vs canonical"}
	for _, r := range rows {
		if d := r.drift(); d != 0 {
			p.errorf("%s: GIS sum %d, canonical %d (%+d)", r.name, r.gis, r.canonical, d)
		}
	}
	return p
}

func checkDistrictCoverage(report domain.SituationReport, districts []domain.GISDistrict) *phase {
	p := &phase{name: "district coverage"}

	inReport := make(map[string]bool, len(report.Districts))
	for _, d := range report.Districts {
		inReport[d.DistrictName] = true
	}
	inGIS := make(map[string]bool, len(districts))
	for _, d := range districts {
		inGIS[d.District] = true
		// The GIS layer covers every district; a report only lists affected ones.
		if !inReport[d.District] && gisDamage(d) {
			p.errorf("GIS district %q has damage but is not in the report", d.District)
		}
	}

	var missing []string
	for _, d := range report.Districts {
		if d.DistrictName != "" && !inGIS[d.DistrictName] && reportedDamage(d) {
			missing = append(missing, d.DistrictName)
		}
	}
	slices.Sort(missing)
	for _, name := range missing {
		p.errorf("report district %q has damage but no GIS feature", name)
	}
	return p
}

func reportedDamage(d domain.DistrictSummary) bool {
	return d.TotalDeaths != 0 || d.TotalInjured != 0 || d.TotalHousesDamaged != 0 || d.CattlePerished != 0
}

func gisDamage(d domain.GISDistrict) bool {
	return d.Deaths != 0 || d.Injured != 0 || d.HousesDamaged != 0 || d.LivestockLost != 0
}
