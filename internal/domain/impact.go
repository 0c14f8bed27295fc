package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// reportNamespace scopes name-based report IDs.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:dsr-impact:report"))

// CompensationReport is the compensation section of an ImpactReport.
type CompensationReport struct {
	Districts []DistrictCompensation `json:"districts"`
	Summary   CompensationSummary    `json:"summary"`
}

// ImpactReport is the envelope published for each processed situation report.
type ImpactReport struct {
	ID           string              `json:"id"`
	Date         string              `json:"date"`
	Aggregates   DSRAggregates       `json:"aggregates"`
	Compensation *CompensationReport `json:"compensation,omitempty"`
	ProcessedAt  time.Time           `json:"processed_at"`
}

// ReportID derives a stable ID from the report date so replays of the same
// day overwrite instead of duplicating downstream.
func ReportID(date string) string {
	return uuid.NewSHA1(reportNamespace, []byte(date)).String()
}

// BuildImpactReport aggregates a situation report into an ImpactReport
// stamped with the current clock time. Compensation is left empty.
func BuildImpactReport(report SituationReport, weights SeverityWeights) ImpactReport {
	return ImpactReport{
		ID:          ReportID(report.Date),
		Date:        report.Date,
		Aggregates:  Aggregate(report, weights),
		ProcessedAt: clock.Now().UTC(),
	}
}

// DamageSourcesFor picks a damage source per GIS district. A district whose
// incidents in the report carry itemized damage is priced from those
// incidents; every other district falls back to its GIS totals. Deaths and
// injuries always come from the GIS feature.
func DamageSourcesFor(report SituationReport, districts []GISDistrict) []DamageSource {
	itemized := make(map[string][]IncidentDamage)
	for _, inc := range report.Incidents {
		if !inc.hasItemizedDamage() {
			continue
		}
		itemized[inc.DistrictName] = append(itemized[inc.DistrictName], IncidentDamage{
			HousesFullyDamaged:     int(inc.HousesFullyDamaged),
			HousesPartiallyDamaged: int(inc.HousesPartiallyDamaged),
			CattlePerished:         int(inc.CattlePerished),
			OtherDamaged:           int(inc.OtherDamaged),
		})
	}

	sources := make([]DamageSource, 0, len(districts))
	for _, g := range districts {
		if incidents, ok := itemized[g.District]; ok {
			sources = append(sources, DetailedDamage{
				District:  g.District,
				Deaths:    g.Deaths,
				Injured:   g.Injured,
				Incidents: incidents,
			})
			continue
		}
		sources = append(sources, AggregateDamage{
			District:      g.District,
			Deaths:        g.Deaths,
			Injured:       g.Injured,
			HousesDamaged: g.HousesDamaged,
			LivestockLost: g.LivestockLost,
		})
	}
	return sources
}

// EstimateCompensation prices every source and rolls the result up against
// the canonical totals.
func EstimateCompensation(sources []DamageSource, canonical CanonicalTotals, rates *RateTable) CompensationReport {
	districts := make([]DistrictCompensation, 0, len(sources))
	for _, src := range sources {
		districts = append(districts, EstimateDistrict(src, rates))
	}
	return CompensationReport{
		Districts: districts,
		Summary:   EstimateProvince(districts, canonical),
	}
}

// EnrichWithCompensation fetches the GIS districts and canonical totals for the
// report date and attaches a compensation estimate. A nil source leaves the
// report untouched. Collaborator errors are wrapped and returned.
func EnrichWithCompensation(ctx context.Context, out ImpactReport, report SituationReport, src ImpactSource, rates *RateTable) (ImpactReport, error) {
	if src == nil {
		return out, nil
	}

	districts, err := src.GISDistricts(ctx, report.Date)
	if err != nil {
		return out, fmt.Errorf("fetch gis districts for %s: %w", report.Date, err)
	}
	canonical, err := src.CanonicalTotals(ctx, report.Date)
	if err != nil {
		return out, fmt.Errorf("fetch canonical totals for %s: %w", report.Date, err)
	}

	comp := EstimateCompensation(DamageSourcesFor(report, districts), canonical, rates)
	out.Compensation = &comp
	return out, nil
}
