package domain

import (
	"cmp"
	"slices"
	"strings"
)

// topN bounds the TopDeaths and TopHouses rankings.
const topN = 5

// taxonomyDelimiters split the free-text Causes and NatureOfIncident fields.
const taxonomyDelimiters = "/,&"

// SeverityWeights are the coefficients of the per-district severity score.
type SeverityWeights struct {
	Death        float64 `json:"death"`
	Injury       float64 `json:"injury"`
	HouseFull    float64 `json:"houseFull"`
	HousePartial float64 `json:"housePartial"`
	School       float64 `json:"school"`
	Other        float64 `json:"other"`
	Cattle       float64 `json:"cattle"`
}

// DefaultSeverityWeights returns the dashboard's standard weighting.
func DefaultSeverityWeights() SeverityWeights {
	return SeverityWeights{
		Death:        1.0,
		Injury:       0.25,
		HouseFull:    0.6,
		HousePartial: 0.25,
		School:       0.5,
		Other:        0.1,
		Cattle:       0.05,
	}
}

// Score computes deaths*death + injured*injury + housesFull*houseFull +
// housesPartial*housePartial + schools*school + other*other + cattle*cattle.
// The terms are summed in that order and never rounded.
func (w SeverityWeights) Score(d DistrictSummary) float64 {
	return float64(d.TotalDeaths)*w.Death +
		float64(d.TotalInjured)*w.Injury +
		float64(d.HousesFullyDamaged)*w.HouseFull +
		float64(d.HousesPartiallyDamaged)*w.HousePartial +
		float64(d.TotalSchoolsDamaged)*w.School +
		float64(d.TotalOtherDamaged)*w.Other +
		float64(d.CattlePerished)*w.Cattle
}

// Totals are province-wide sums for one report.
type Totals struct {
	Deaths        int `json:"deaths"`
	Injured       int `json:"injured"`
	HousesFull    int `json:"housesFull"`
	HousesPartial int `json:"housesPartial"`
	HousesTotal   int `json:"housesTotal"`
	SchoolsTotal  int `json:"schoolsTotal"`
	OtherTotal    int `json:"otherTotal"`
	Cattle        int `json:"cattle"`
	Districts     int `json:"districts"`
	Incidents     int `json:"incidents"`
	RoadsBlocked  int `json:"roadsBlocked"`
}

// SeverityRecord is one district's raw counts plus its severity score.
type SeverityRecord struct {
	District      string  `json:"district"`
	Deaths        int     `json:"deaths"`
	Injured       int     `json:"injured"`
	HousesFull    int     `json:"housesFull"`
	HousesPartial int     `json:"housesPartial"`
	Schools       int     `json:"schools"`
	Other         int     `json:"other"`
	Cattle        int     `json:"cattle"`
	Severity      float64 `json:"severity"`
}

// DistrictNarrative bundles a district's incident narratives.
type DistrictNarrative struct {
	Incidents []IncidentDetail `json:"incidents"`
	Count     int              `json:"count"`
	Narrative string           `json:"narrative"`
	Sources   []string         `json:"sources"`
}

// DSRAggregates is everything the dashboard derives from one report.
type DSRAggregates struct {
	Totals     Totals                        `json:"totals"`
	TopDeaths  []DistrictSummary             `json:"topDeaths"`
	TopHouses  []DistrictSummary             `json:"topHouses"`
	Severity   []SeverityRecord              `json:"severity"`
	Causes     map[string]int                `json:"causes"`
	Natures    map[string]int                `json:"natures"`
	Roads      []RoadSituation               `json:"roads"`
	Narratives map[string]*DistrictNarrative `json:"narratives"`
}

// Aggregate derives totals, rankings, severity scores, cause/nature
// taxonomies and narrative bundles from a situation report. It is pure: the
// report is not modified and equal inputs produce equal outputs.
func Aggregate(report SituationReport, weights SeverityWeights) DSRAggregates {
	return DSRAggregates{
		Totals:     computeTotals(report),
		TopDeaths:  topDistricts(report.Districts, func(d DistrictSummary) int { return int(d.TotalDeaths) }),
		TopHouses:  topDistricts(report.Districts, func(d DistrictSummary) int { return int(d.TotalHousesDamaged) }),
		Severity:   severityRecords(report.Districts, weights),
		Causes:     countTaxonomy(report.Districts, func(d DistrictSummary) string { return d.Causes }),
		Natures:    countTaxonomy(report.Districts, func(d DistrictSummary) string { return d.NatureOfIncident }),
		Roads:      slices.Clone(report.Roads),
		Narratives: groupNarratives(report.Incidents),
	}
}

func computeTotals(report SituationReport) Totals {
	t := Totals{
		Districts:    len(report.Districts),
		Incidents:    int(report.Summary.TotalIncidents),
		RoadsBlocked: int(report.Summary.RoadsBlocked),
	}
	for _, d := range report.Districts {
		t.Deaths += int(d.TotalDeaths)
		t.Injured += int(d.TotalInjured)
		t.HousesFull += int(d.HousesFullyDamaged)
		t.HousesPartial += int(d.HousesPartiallyDamaged)
		t.HousesTotal += int(d.TotalHousesDamaged)
		t.SchoolsTotal += int(d.TotalSchoolsDamaged)
		t.OtherTotal += int(d.TotalOtherDamaged)
		t.Cattle += int(d.CattlePerished)
	}
	return t
}

// topDistricts keeps districts whose metric is positive, orders them by the
// metric descending (input order on ties) and truncates to topN.
func topDistricts(districts []DistrictSummary, metric func(DistrictSummary) int) []DistrictSummary {
	ranked := make([]DistrictSummary, 0, len(districts))
	for _, d := range districts {
		if metric(d) > 0 {
			ranked = append(ranked, d)
		}
	}
	slices.SortStableFunc(ranked, func(a, b DistrictSummary) int {
		return cmp.Compare(metric(b), metric(a))
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func severityRecords(districts []DistrictSummary, weights SeverityWeights) []SeverityRecord {
	records := make([]SeverityRecord, 0, len(districts))
	for _, d := range districts {
		records = append(records, SeverityRecord{
			District:      d.DistrictName,
			Deaths:        int(d.TotalDeaths),
			Injured:       int(d.TotalInjured),
			HousesFull:    int(d.HousesFullyDamaged),
			HousesPartial: int(d.HousesPartiallyDamaged),
			Schools:       int(d.TotalSchoolsDamaged),
			Other:         int(d.TotalOtherDamaged),
			Cattle:        int(d.CattlePerished),
			Severity:      weights.Score(d),
		})
	}
	slices.SortStableFunc(records, func(a, b SeverityRecord) int {
		return cmp.Compare(b.Severity, a.Severity)
	})
	return records
}

// countTaxonomy counts each delimited token once per district row.
func countTaxonomy(districts []DistrictSummary, field func(DistrictSummary) string) map[string]int {
	counts := make(map[string]int)
	for _, d := range districts {
		for _, token := range splitTaxonomy(field(d)) {
			counts[token]++
		}
	}
	return counts
}

// splitTaxonomy splits on any of '/', ',' or '&', trims each token and drops
// empties. "Flood/Landslide" yields ["Flood", "Landslide"].
func splitTaxonomy(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(taxonomyDelimiters, r)
	})
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// groupNarratives bundles incidents per district. Descriptions are joined by a
// blank line; incidents without one still count. Sources keep first-seen order
// without duplicates or blanks.
func groupNarratives(incidents []IncidentDetail) map[string]*DistrictNarrative {
	groups := make(map[string]*DistrictNarrative)
	for _, inc := range incidents {
		g, ok := groups[inc.DistrictName]
		if !ok {
			g = &DistrictNarrative{Incidents: []IncidentDetail{}, Sources: []string{}}
			groups[inc.DistrictName] = g
		}
		g.Incidents = append(g.Incidents, inc)
		g.Count++

		if inc.Description != "" {
			if g.Narrative != "" {
				g.Narrative += "\n\n"
			}
			g.Narrative += inc.Description
		}

		if src := strings.TrimSpace(inc.Source); src != "" && !slices.Contains(g.Sources, src) {
			g.Sources = append(g.Sources, src)
		}
	}
	return groups
}
