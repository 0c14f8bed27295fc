package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
)

func loadReport(path string) (domain.SituationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SituationReport{}, exitError(exitInput, "failed to read report: %v", err)
	}
	report, err := domain.ParseSituationReport(domain.RawEvent{Value: data})
	if err != nil {
		return domain.SituationReport{}, exitError(exitInput, "failed to load report %s: %v", path, err)
	}
	return report, nil
}

func loadGIS(path string) ([]domain.GISDistrict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, exitError(exitInput, "failed to read gis districts: %v", err)
	}
	districts, err := domain.ParseGISDistricts(data)
	if err != nil {
		return nil, exitError(exitInput, "failed to load gis districts %s: %v", path, err)
	}
	return districts, nil
}

func loadCanonical(path string) (domain.CanonicalTotals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.CanonicalTotals{}, exitError(exitInput, "failed to read canonical totals: %v", err)
	}
	totals, err := domain.ParseCanonicalTotals(data)
	if err != nil {
		return domain.CanonicalTotals{}, exitError(exitInput, "failed to load canonical totals %s: %v", path, err)
	}
	return totals, nil
}

func loadRates(path string) (*domain.RateTable, error) {
	rates, err := domain.LoadRateTable(path)
	if err != nil {
		return nil, exitError(exitInput, "failed to load rate table: %v", err)
	}
	return rates, nil
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(stdout io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
