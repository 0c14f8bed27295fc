package domain

import (
	"encoding/json"
	"fmt"
)

// GISDistrict is the coarse damage picture of one district from the GIS layer.
type GISDistrict struct {
	District        string `json:"district"`
	Deaths          int    `json:"deaths"`
	Injured         int    `json:"injured"`
	HousesDamaged   int    `json:"houses_damaged"`
	LivestockLost   int    `json:"livestock_lost"`
	SchoolsDamaged  int    `json:"schools_damaged"`
	RoadsDamagedKm  int    `json:"roads_damaged_km"`
	BridgesDamaged  int    `json:"bridges_damaged"`
	CulvertsDamaged int    `json:"culverts_damaged"`
}

// gisFeatureCollection is the GeoJSON envelope served by the GIS layer.
// Geometry is ignored.
type gisFeatureCollection struct {
	Type     string       `json:"type"`
	Features []gisFeature `json:"features"`
}

type gisFeature struct {
	Properties gisProperties `json:"properties"`
}

type gisProperties struct {
	District        string `json:"district"`
	Name            string `json:"name"`
	Deaths          Count  `json:"deaths"`
	Injured         Count  `json:"injured"`
	HousesDamaged   Count  `json:"houses_damaged"`
	LivestockLost   Count  `json:"livestock_lost"`
	SchoolsDamaged  Count  `json:"schools_damaged"`
	RoadsDamagedKm  Count  `json:"roads_damaged_km"`
	BridgesDamaged  Count  `json:"bridges_damaged"`
	CulvertsDamaged Count  `json:"culverts_damaged"`
}

// ParseGISDistricts decodes a GeoJSON feature collection into one GISDistrict
// per feature. Numeric properties may be strings; unparseable values become 0.
func ParseGISDistricts(data []byte) ([]GISDistrict, error) {
	var fc gisFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse gis districts: %w", err)
	}
	districts := make([]GISDistrict, 0, len(fc.Features))
	for _, f := range fc.Features {
		p := f.Properties
		name := p.District
		if name == "" {
			name = p.Name
		}
		districts = append(districts, GISDistrict{
			District:        name,
			Deaths:          int(p.Deaths),
			Injured:         int(p.Injured),
			HousesDamaged:   int(p.HousesDamaged),
			LivestockLost:   int(p.LivestockLost),
			SchoolsDamaged:  int(p.SchoolsDamaged),
			RoadsDamagedKm:  int(p.RoadsDamagedKm),
			BridgesDamaged:  int(p.BridgesDamaged),
			CulvertsDamaged: int(p.CulvertsDamaged),
		})
	}
	return districts, nil
}

// CanonicalTotals are the authoritative cumulative counts for a reporting
// period, published by the aggregate dashboard.
type CanonicalTotals struct {
	Deaths        Count `json:"deaths"`
	Injured       Count `json:"injured"`
	HousesDamaged Count `json:"housesDamaged"`
	LivestockLost Count `json:"livestockLost"`
}

// ParseCanonicalTotals decodes the cumulative totals payload.
func ParseCanonicalTotals(data []byte) (CanonicalTotals, error) {
	var t CanonicalTotals
	if err := json.Unmarshal(data, &t); err != nil {
		return CanonicalTotals{}, fmt.Errorf("parse canonical totals: %w", err)
	}
	return t, nil
}
