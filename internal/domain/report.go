package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SituationReport is one daily situation report (DSR) as published by the
// provincial reporting desk.
type SituationReport struct {
	Date      string            `json:"Date"`
	Districts []DistrictSummary `json:"Districts"`
	Incidents []IncidentDetail  `json:"Incidents"`
	Roads     []RoadSituation   `json:"Roads"`
	Summary   ReportSummary     `json:"Summary"`
}

// ReportSummary holds counters the desk computes itself. They are carried
// into the totals verbatim rather than recounted from the row lists.
type ReportSummary struct {
	TotalIncidents Count `json:"TotalIncidents"`
	RoadsBlocked   Count `json:"RoadsBlocked"`
	RoadsCleared   Count `json:"RoadsCleared"`
}

// DistrictSummary is one district's daily counts.
type DistrictSummary struct {
	DistrictName     string `json:"DistrictName"`
	Causes           string `json:"Causes"`
	NatureOfIncident string `json:"NatureOfIncident"`

	DeathsMale     Count `json:"DeathsMale"`
	DeathsFemale   Count `json:"DeathsFemale"`
	DeathsChildren Count `json:"DeathsChildren"`
	TotalDeaths    Count `json:"TotalDeaths"`

	InjuredMale     Count `json:"InjuredMale"`
	InjuredFemale   Count `json:"InjuredFemale"`
	InjuredChildren Count `json:"InjuredChildren"`
	TotalInjured    Count `json:"TotalInjured"`

	HousesFullyDamaged     Count `json:"HousesFullyDamaged"`
	HousesPartiallyDamaged Count `json:"HousesPartiallyDamaged"`
	TotalHousesDamaged     Count `json:"TotalHousesDamaged"`

	SchoolsFullyDamaged     Count `json:"SchoolsFullyDamaged"`
	SchoolsPartiallyDamaged Count `json:"SchoolsPartiallyDamaged"`
	TotalSchoolsDamaged     Count `json:"TotalSchoolsDamaged"`

	OtherFullyDamaged     Count `json:"OtherStructuresFullyDamaged"`
	OtherPartiallyDamaged Count `json:"OtherStructuresPartiallyDamaged"`
	TotalOtherDamaged     Count `json:"TotalOtherStructuresDamaged"`

	CattlePerished Count `json:"CattlePerished"`
}

// IncidentDetail is a free-text incident narrative tied to a district.
// The damage fields are optional; when a desk itemizes damage per incident
// they feed the detailed compensation path.
type IncidentDetail struct {
	DistrictName     string `json:"DistrictName"`
	Description      string `json:"Description"`
	Source           string `json:"Source"`
	ResponsibleParty string `json:"ResponsibleParty,omitempty"`

	HousesFullyDamaged     Count `json:"HousesFullyDamaged,omitempty"`
	HousesPartiallyDamaged Count `json:"HousesPartiallyDamaged,omitempty"`
	CattlePerished         Count `json:"CattlePerished,omitempty"`
	OtherDamaged           Count `json:"OtherDamaged,omitempty"`
}

// hasItemizedDamage reports whether the incident carries any per-incident
// damage count.
func (i IncidentDetail) hasItemizedDamage() bool {
	return i.HousesFullyDamaged != 0 || i.HousesPartiallyDamaged != 0 ||
		i.CattlePerished != 0 || i.OtherDamaged != 0
}

// RoadSituation is a road status line. It is passed through untouched.
type RoadSituation struct {
	DistrictName string `json:"DistrictName"`
	RoadName     string `json:"RoadName"`
	Status       string `json:"Status"`
	Details      string `json:"Details,omitempty"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ParseSituationReport deserializes a RawEvent's value into a SituationReport.
// When the payload has no date, the message timestamp supplies it.
func ParseSituationReport(raw RawEvent) (SituationReport, error) {
	var report SituationReport
	if err := json.Unmarshal(raw.Value, &report); err != nil {
		return SituationReport{}, fmt.Errorf("parse situation report: %w", err)
	}
	if report.Date == "" && !raw.Timestamp.IsZero() {
		report.Date = raw.Timestamp.UTC().Format(time.DateOnly)
	}
	return report, nil
}
