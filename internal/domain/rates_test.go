package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRateTable(t *testing.T) {
	rates, err := DefaultRateTable()
	require.NoError(t, err)

	rows := rates.Rows()
	require.Len(t, rows, 21)

	perCategory := map[Category]int{}
	for _, r := range rows {
		perCategory[r.Category]++
		assert.Positive(t, r.Amount, r.Type)
	}
	for _, c := range Categories {
		assert.Positive(t, perCategory[c], "category %s has no rates", c)
	}

	death, ok := rates.Lookup(RateDeath)
	require.True(t, ok)
	assert.Equal(t, CompensationRate{Type: "Death", Amount: 2_000_000, Category: CategoryCasualties}, death)
	assert.Equal(t, int64(15_000), rates.Amount(RateRationFamily))
}

func TestRateTable_LookupMiss(t *testing.T) {
	rates, err := DefaultRateTable()
	require.NoError(t, err)

	_, ok := rates.Lookup("Helicopter Fully Damaged")
	assert.False(t, ok)
}

func TestRateTable_AmountPanicsOnMiss(t *testing.T) {
	rates, err := DefaultRateTable()
	require.NoError(t, err)

	assert.PanicsWithValue(t, `compensation rate "Helicopter Fully Damaged" not in table`, func() {
		rates.Amount("Helicopter Fully Damaged")
	})
}

func TestRateTable_RowsAreCopies(t *testing.T) {
	rates, err := DefaultRateTable()
	require.NoError(t, err)

	rows := rates.Rows()
	rows[0].Amount = 1

	again := rates.Rows()
	assert.NotEqual(t, int64(1), again[0].Amount)
}

func validRows() []CompensationRate {
	rows := make([]CompensationRate, 0, len(requiredRates))
	for _, typ := range requiredRates {
		rows = append(rows, CompensationRate{Type: typ, Amount: 1000, Category: CategoryProperty})
	}
	return rows
}

func TestNewRateTable_Validation(t *testing.T) {
	t.Run("minimal valid table", func(t *testing.T) {
		_, err := NewRateTable(validRows())
		require.NoError(t, err)
	})

	tests := []struct {
		name    string
		mutate  func([]CompensationRate) []CompensationRate
		wantErr string
	}{
		{
			name:    "missing required rate",
			mutate:  func(rows []CompensationRate) []CompensationRate { return rows[1:] },
			wantErr: `rate "Death": required by estimator but missing`,
		},
		{
			name: "unknown category",
			mutate: func(rows []CompensationRate) []CompensationRate {
				return append(rows, CompensationRate{Type: "Boat", Amount: 10, Category: "marine"})
			},
			wantErr: `unknown category "marine"`,
		},
		{
			name: "negative amount",
			mutate: func(rows []CompensationRate) []CompensationRate {
				return append(rows, CompensationRate{Type: "Boat", Amount: -10, Category: CategoryVehicle})
			},
			wantErr: "negative amount",
		},
		{
			name: "duplicate type",
			mutate: func(rows []CompensationRate) []CompensationRate {
				return append(rows, CompensationRate{Type: RateDeath, Amount: 10, Category: CategoryCasualties})
			},
			wantErr: "duplicate type",
		},
		{
			name: "empty type",
			mutate: func(rows []CompensationRate) []CompensationRate {
				return append(rows, CompensationRate{Amount: 10, Category: CategoryVehicle})
			},
			wantErr: "empty type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRateTable(tt.mutate(validRows()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid rate table")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRateTable_InvalidYAML(t *testing.T) {
	_, err := ParseRateTable([]byte("rates: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse rate table")
}

func TestLoadRateTable(t *testing.T) {
	t.Run("empty path uses embedded table", func(t *testing.T) {
		rates, err := LoadRateTable("")
		require.NoError(t, err)
		assert.Len(t, rates.Rows(), 21)
	})

	t.Run("override file", func(t *testing.T) {
		override := `rates:
  - {type: "Death", amount: 1500000, category: casualties}
  - {type: "Injury", amount: 250000, category: casualties}
  - {type: "House Fully Damaged", amount: 800000, category: property}
  - {type: "House Partially Damaged", amount: 200000, category: property}
  - {type: "Big Cattle", amount: 150000, category: livestock}
  - {type: "Shops/Kiosk Fully Damaged", amount: 250000, category: business}
  - {type: "Car/Jeep Fully Damaged", amount: 400000, category: vehicle}
  - {type: "Crops (per family)", amount: 40000, category: agricultural}
  - {type: "Orchard (per family)", amount: 80000, category: agricultural}
  - {type: "Tree (per unit)", amount: 1500, category: agricultural}
  - {type: "Ration Support (per family)", amount: 12000, category: support}
`
		path := filepath.Join(t.TempDir(), "rates.yaml")
		require.NoError(t, os.WriteFile(path, []byte(override), 0o600))

		rates, err := LoadRateTable(path)
		require.NoError(t, err)
		assert.Equal(t, int64(1_500_000), rates.Amount(RateDeath))
		assert.Len(t, rates.Rows(), 11)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRateTable(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read rate table")
	})
}
