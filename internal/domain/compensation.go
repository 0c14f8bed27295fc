package domain

import "math"

// Policy ratios for counts that are estimated rather than measured. They are
// rough approximations carried over from the provincial dashboard; change them
// only on a policy decision.
const (
	gisFullyDamagedRatio   = 0.2
	gisBusinessRatio       = 0.1
	gisVehicleRatio        = 0.05
	detailedBusinessRatio  = 0.3
	detailedVehicleRatio   = 0.2
	treesPerAffectedFamily = 10
)

// Damage source tags, also used on the wire by the HTTP API.
const (
	DamageSourceDetailed  = "detailed"
	DamageSourceAggregate = "aggregate"
)

// DamageCounts are the per-district counts the estimator prices.
type DamageCounts struct {
	District               string `json:"district"`
	Source                 string `json:"source"`
	Deaths                 int    `json:"deaths"`
	Injured                int    `json:"injured"`
	HousesFullyDamaged     int    `json:"housesFullyDamaged"`
	HousesPartiallyDamaged int    `json:"housesPartiallyDamaged"`
	CattleLost             int    `json:"cattleLost"`
	BusinessesDamaged      int    `json:"businessesDamaged"`
	VehiclesDamaged        int    `json:"vehiclesDamaged"`
}

// AffectedFamilies is the proxy used for agricultural and ration estimates:
// the largest of deaths, injured and fully damaged houses.
func (c DamageCounts) AffectedFamilies() int {
	return max(c.Deaths, c.Injured, c.HousesFullyDamaged)
}

// DamageSource yields a district's damage counts. It is implemented only by
// DetailedDamage and AggregateDamage.
type DamageSource interface {
	Counts() DamageCounts
	damageSource()
}

// IncidentDamage is the itemized damage of one incident.
type IncidentDamage struct {
	HousesFullyDamaged     int `json:"housesFullyDamaged"`
	HousesPartiallyDamaged int `json:"housesPartiallyDamaged"`
	CattlePerished         int `json:"cattlePerished"`
	OtherDamaged           int `json:"otherDamaged"`
}

// DetailedDamage is a district with itemized incident records.
type DetailedDamage struct {
	District  string           `json:"district"`
	Deaths    int              `json:"deaths"`
	Injured   int              `json:"injured"`
	Incidents []IncidentDamage `json:"incidents"`
}

func (DetailedDamage) damageSource() {}

// Counts sums the incident fields. Businesses and vehicles are estimated from
// the other-damaged total.
func (d DetailedDamage) Counts() DamageCounts {
	var full, partial, cattle, other int
	for _, inc := range d.Incidents {
		full += inc.HousesFullyDamaged
		partial += inc.HousesPartiallyDamaged
		cattle += inc.CattlePerished
		other += inc.OtherDamaged
	}
	return DamageCounts{
		District:               d.District,
		Source:                 DamageSourceDetailed,
		Deaths:                 d.Deaths,
		Injured:                d.Injured,
		HousesFullyDamaged:     full,
		HousesPartiallyDamaged: partial,
		CattleLost:             cattle,
		BusinessesDamaged:      floorRatio(other, detailedBusinessRatio),
		VehiclesDamaged:        floorRatio(other, detailedVehicleRatio),
	}
}

// AggregateDamage is a district known only through GIS-level totals.
type AggregateDamage struct {
	District      string `json:"district"`
	Deaths        int    `json:"deaths"`
	Injured       int    `json:"injured"`
	HousesDamaged int    `json:"housesDamaged"`
	LivestockLost int    `json:"livestockLost"`
}

func (AggregateDamage) damageSource() {}

// Counts splits the house total 20/80 into fully and partially damaged and
// estimates businesses and vehicles from it. Livestock is taken as is.
func (a AggregateDamage) Counts() DamageCounts {
	full := floorRatio(a.HousesDamaged, gisFullyDamagedRatio)
	return DamageCounts{
		District:               a.District,
		Source:                 DamageSourceAggregate,
		Deaths:                 a.Deaths,
		Injured:                a.Injured,
		HousesFullyDamaged:     full,
		HousesPartiallyDamaged: a.HousesDamaged - full,
		CattleLost:             a.LivestockLost,
		BusinessesDamaged:      floorRatio(a.HousesDamaged, gisBusinessRatio),
		VehiclesDamaged:        floorRatio(a.HousesDamaged, gisVehicleRatio),
	}
}

// floorRatio returns floor(n * ratio) evaluated in float64.
func floorRatio(n int, ratio float64) int {
	return int(math.Floor(float64(n) * ratio))
}

// CasualtyCompensation covers deaths and injuries.
type CasualtyCompensation struct {
	Deaths   int64 `json:"deaths"`
	Injuries int64 `json:"injuries"`
	Total    int64 `json:"total"`
}

// PropertyCompensation covers housing.
type PropertyCompensation struct {
	HousesFull    int64 `json:"housesFull"`
	HousesPartial int64 `json:"housesPartial"`
	Total         int64 `json:"total"`
}

// LivestockCompensation covers cattle.
type LivestockCompensation struct {
	Cattle int64 `json:"cattle"`
	Total  int64 `json:"total"`
}

// BusinessCompensation covers shops and kiosks.
type BusinessCompensation struct {
	Shops int64 `json:"shops"`
	Total int64 `json:"total"`
}

// VehicleCompensation covers cars and jeeps.
type VehicleCompensation struct {
	Cars  int64 `json:"cars"`
	Total int64 `json:"total"`
}

// AgriculturalCompensation covers crops, orchards and trees.
type AgriculturalCompensation struct {
	Crops    int64 `json:"crops"`
	Orchards int64 `json:"orchards"`
	Trees    int64 `json:"trees"`
	Total    int64 `json:"total"`
}

// SupportCompensation covers family ration support.
type SupportCompensation struct {
	Ration int64 `json:"ration"`
	Total  int64 `json:"total"`
}

// DistrictCompensation is one district's compensation breakdown in PKR.
type DistrictCompensation struct {
	District         string                   `json:"district"`
	Counts           DamageCounts             `json:"counts"`
	AffectedFamilies int                      `json:"affectedFamilies"`
	Casualties       CasualtyCompensation     `json:"casualties"`
	Property         PropertyCompensation     `json:"property"`
	Livestock        LivestockCompensation    `json:"livestock"`
	Business         BusinessCompensation     `json:"business"`
	Vehicle          VehicleCompensation      `json:"vehicle"`
	Agricultural     AgriculturalCompensation `json:"agricultural"`
	Support          SupportCompensation      `json:"support"`
	Total            int64                    `json:"total"`
}

// ByCategory returns the category subtotals.
func (d DistrictCompensation) ByCategory() map[Category]int64 {
	return map[Category]int64{
		CategoryCasualties:   d.Casualties.Total,
		CategoryProperty:     d.Property.Total,
		CategoryLivestock:    d.Livestock.Total,
		CategoryBusiness:     d.Business.Total,
		CategoryVehicle:      d.Vehicle.Total,
		CategoryAgricultural: d.Agricultural.Total,
		CategorySupport:      d.Support.Total,
	}
}

// EstimateDistrict prices a district's damage against rates.
func EstimateDistrict(src DamageSource, rates *RateTable) DistrictCompensation {
	return priceCounts(src.Counts(), rates)
}

func priceCounts(c DamageCounts, rates *RateTable) DistrictCompensation {
	families := int64(c.AffectedFamilies())

	out := DistrictCompensation{
		District:         c.District,
		Counts:           c,
		AffectedFamilies: int(families),
	}

	out.Casualties.Deaths = int64(c.Deaths) * rates.Amount(RateDeath)
	out.Casualties.Injuries = int64(c.Injured) * rates.Amount(RateInjury)
	out.Casualties.Total = out.Casualties.Deaths + out.Casualties.Injuries

	out.Property.HousesFull = int64(c.HousesFullyDamaged) * rates.Amount(RateHouseFull)
	out.Property.HousesPartial = int64(c.HousesPartiallyDamaged) * rates.Amount(RateHousePartial)
	out.Property.Total = out.Property.HousesFull + out.Property.HousesPartial

	out.Livestock.Cattle = int64(c.CattleLost) * rates.Amount(RateBigCattle)
	out.Livestock.Total = out.Livestock.Cattle

	out.Business.Shops = int64(c.BusinessesDamaged) * rates.Amount(RateShopFull)
	out.Business.Total = out.Business.Shops

	out.Vehicle.Cars = int64(c.VehiclesDamaged) * rates.Amount(RateCarFull)
	out.Vehicle.Total = out.Vehicle.Cars

	out.Agricultural.Crops = families * rates.Amount(RateCropsFamily)
	out.Agricultural.Orchards = families * rates.Amount(RateOrchardFamily)
	out.Agricultural.Trees = families * treesPerAffectedFamily * rates.Amount(RateTreeUnit)
	out.Agricultural.Total = out.Agricultural.Crops + out.Agricultural.Orchards + out.Agricultural.Trees

	out.Support.Ration = families * rates.Amount(RateRationFamily)
	out.Support.Total = out.Support.Ration

	out.Total = out.Casualties.Total + out.Property.Total + out.Livestock.Total +
		out.Business.Total + out.Vehicle.Total + out.Agricultural.Total + out.Support.Total
	return out
}

// CompensationSummary is the provincial roll-up. The four count fields come
// verbatim from the canonical totals; only the money is summed here.
type CompensationSummary struct {
	TotalCompensation  int64              `json:"totalCompensation"`
	DistrictCount      int                `json:"districtCount"`
	ByCategory         map[Category]int64 `json:"byCategory"`
	TotalDeaths        int                `json:"totalDeaths"`
	TotalInjured       int                `json:"totalInjured"`
	TotalHousesDamaged int                `json:"totalHousesDamaged"`
	TotalCattleLost    int                `json:"totalCattleLost"`
}

// EstimateProvince sums district compensation and attaches the canonical
// counts. The district breakdown and the canonical totals come from different
// feeds and are deliberately not reconciled against each other.
func EstimateProvince(districts []DistrictCompensation, canonical CanonicalTotals) CompensationSummary {
	s := CompensationSummary{
		DistrictCount:      len(districts),
		ByCategory:         make(map[Category]int64, len(Categories)),
		TotalDeaths:        int(canonical.Deaths),
		TotalInjured:       int(canonical.Injured),
		TotalHousesDamaged: int(canonical.HousesDamaged),
		TotalCattleLost:    int(canonical.LivestockLost),
	}
	for _, c := range Categories {
		s.ByCategory[c] = 0
	}
	for _, d := range districts {
		s.TotalCompensation += d.Total
		for c, amt := range d.ByCategory() {
			s.ByCategory[c] += amt
		}
	}
	return s
}
