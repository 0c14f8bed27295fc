package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Category groups compensation rates for reporting.
type Category string

const (
	CategoryCasualties   Category = "casualties"
	CategoryProperty     Category = "property"
	CategoryAgricultural Category = "agricultural"
	CategoryBusiness     Category = "business"
	CategoryVehicle      Category = "vehicle"
	CategoryLivestock    Category = "livestock"
	CategorySupport      Category = "support"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	CategoryCasualties,
	CategoryProperty,
	CategoryAgricultural,
	CategoryBusiness,
	CategoryVehicle,
	CategoryLivestock,
	CategorySupport,
}

func (c Category) valid() bool {
	switch c {
	case CategoryCasualties, CategoryProperty, CategoryAgricultural, CategoryBusiness,
		CategoryVehicle, CategoryLivestock, CategorySupport:
		return true
	default:
		return false
	}
}

// Rate types the estimator prices directly.
const (
	RateDeath         = "Death"
	RateInjury        = "Injury"
	RateHouseFull     = "House Fully Damaged"
	RateHousePartial  = "House Partially Damaged"
	RateBigCattle     = "Big Cattle"
	RateShopFull      = "Shops/Kiosk Fully Damaged"
	RateCarFull       = "Car/Jeep Fully Damaged"
	RateCropsFamily   = "Crops (per family)"
	RateOrchardFamily = "Orchard (per family)"
	RateTreeUnit      = "Tree (per unit)"
	RateRationFamily  = "Ration Support (per family)"
)

// requiredRates must all be present in any table handed to the estimator.
var requiredRates = []string{
	RateDeath, RateInjury, RateHouseFull, RateHousePartial, RateBigCattle,
	RateShopFull, RateCarFull, RateCropsFamily, RateOrchardFamily, RateTreeUnit,
	RateRationFamily,
}

//go:embed rates.yaml
var defaultRatesYAML []byte

// CompensationRate is one row of the policy rate table. Amount is in PKR.
type CompensationRate struct {
	Type     string   `json:"type" yaml:"type"`
	Amount   int64    `json:"amount" yaml:"amount"`
	Category Category `json:"category" yaml:"category"`
}

// RateTable is a validated, read-only compensation rate table.
type RateTable struct {
	rows   []CompensationRate
	byType map[string]CompensationRate
}

type rateFile struct {
	Rates []CompensationRate `yaml:"rates"`
}

// NewRateTable validates rows and indexes them by type. It fails when a row
// has an unknown category, a negative amount or a duplicate type, or when any
// rate the estimator prices is missing.
func NewRateTable(rows []CompensationRate) (*RateTable, error) {
	t := &RateTable{
		rows:   make([]CompensationRate, 0, len(rows)),
		byType: make(map[string]CompensationRate, len(rows)),
	}
	var errs []error
	for _, r := range rows {
		switch {
		case r.Type == "":
			errs = append(errs, errors.New("rate with empty type"))
			continue
		case !r.Category.valid():
			errs = append(errs, fmt.Errorf("rate %q: unknown category %q", r.Type, r.Category))
			continue
		case r.Amount < 0:
			errs = append(errs, fmt.Errorf("rate %q: negative amount %d", r.Type, r.Amount))
			continue
		}
		if _, dup := t.byType[r.Type]; dup {
			errs = append(errs, fmt.Errorf("rate %q: duplicate type", r.Type))
			continue
		}
		t.byType[r.Type] = r
		t.rows = append(t.rows, r)
	}
	for _, typ := range requiredRates {
		if _, ok := t.byType[typ]; !ok {
			errs = append(errs, fmt.Errorf("rate %q: required by estimator but missing", typ))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid rate table: %w", err)
	}
	return t, nil
}

// ParseRateTable decodes a YAML rate file and validates it.
func ParseRateTable(data []byte) (*RateTable, error) {
	var f rateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rate table: %w", err)
	}
	return NewRateTable(f.Rates)
}

// DefaultRateTable returns the embedded provincial policy table.
func DefaultRateTable() (*RateTable, error) {
	return ParseRateTable(defaultRatesYAML)
}

// LoadRateTable reads a rate table from path, or the embedded table when path
// is empty.
func LoadRateTable(path string) (*RateTable, error) {
	if path == "" {
		return DefaultRateTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate table: %w", err)
	}
	return ParseRateTable(data)
}

// Lookup returns the rate for typ.
func (t *RateTable) Lookup(typ string) (CompensationRate, bool) {
	r, ok := t.byType[typ]
	return r, ok
}

// Amount returns the PKR amount for typ. It panics on a miss: every type the
// estimator asks for is checked by NewRateTable, so a miss is a bug.
func (t *RateTable) Amount(typ string) int64 {
	r, ok := t.byType[typ]
	if !ok {
		panic(fmt.Sprintf("compensation rate %q not in table", typ))
	}
	return r.Amount
}

// Rows returns a copy of the table rows in file order.
func (t *RateTable) Rows() []CompensationRate {
	out := make([]CompensationRate, len(t.rows))
	copy(out, t.rows)
	return out
}
