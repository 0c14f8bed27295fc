package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
	"github.com/couchcryptid/dsr-impact-service/internal/pipeline"
)

type fixtureSource struct {
	districts []domain.GISDistrict
	canonical domain.CanonicalTotals
	err       error
}

func (f *fixtureSource) GISDistricts(context.Context, string) ([]domain.GISDistrict, error) {
	return f.districts, f.err
}

func (f *fixtureSource) CanonicalTotals(context.Context, string) (domain.CanonicalTotals, error) {
	return f.canonical, f.err
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "domain", "testdata", name))
	require.NoError(t, err)
	return data
}

func loadFixtureSource(t *testing.T) *fixtureSource {
	t.Helper()
	districts, err := domain.ParseGISDistricts(readFixture(t, "gis_districts.json"))
	require.NoError(t, err)
	canonical, err := domain.ParseCanonicalTotals(readFixture(t, "canonical_totals.json"))
	require.NoError(t, err)
	return &fixtureSource{districts: districts, canonical: canonical}
}

func defaultRates(t *testing.T) *domain.RateTable {
	t.Helper()
	rates, err := domain.DefaultRateTable()
	require.NoError(t, err)
	return rates
}

func TestImpactTransformer_AggregatesOnly(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, time.August, 16, 20, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	tfm := pipeline.NewTransformer(nil, defaultRates(t), domain.DefaultSeverityWeights(), slog.Default())

	out, err := tfm.Transform(context.Background(), domain.RawEvent{Value: readFixture(t, "dsr_sample.json")})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportID("2025-08-16"), out.ID)
	assert.Equal(t, fakeClock.Now(), out.ProcessedAt)
	assert.Equal(t, 35, out.Aggregates.Totals.Deaths)
	assert.Equal(t, "Buner", out.Aggregates.Severity[0].District)
	assert.Nil(t, out.Compensation)
}

func TestImpactTransformer_WithCompensation(t *testing.T) {
	tfm := pipeline.NewTransformer(loadFixtureSource(t), defaultRates(t), domain.DefaultSeverityWeights(), slog.Default())

	out, err := tfm.Transform(context.Background(), domain.RawEvent{Value: readFixture(t, "dsr_sample.json")})
	require.NoError(t, err)
	require.NotNil(t, out.Compensation)

	assert.Len(t, out.Compensation.Districts, 4)
	assert.Equal(t, int64(207_660_000), out.Compensation.Summary.TotalCompensation)
	assert.Equal(t, 40, out.Compensation.Summary.TotalDeaths)
}

func TestImpactTransformer_SourceErrorDegrades(t *testing.T) {
	src := &fixtureSource{err: errors.New("dashboard unavailable")}
	tfm := pipeline.NewTransformer(src, defaultRates(t), domain.DefaultSeverityWeights(), slog.Default())

	out, err := tfm.Transform(context.Background(), domain.RawEvent{Value: readFixture(t, "dsr_sample.json")})
	require.NoError(t, err)
	assert.Nil(t, out.Compensation)
	assert.Equal(t, 8, out.Aggregates.Totals.Districts)
}

func TestImpactTransformer_CustomWeights(t *testing.T) {
	weights := domain.SeverityWeights{Cattle: 1}
	tfm := pipeline.NewTransformer(nil, defaultRates(t), weights, slog.Default())

	out, err := tfm.Transform(context.Background(), domain.RawEvent{Value: readFixture(t, "dsr_sample.json")})
	require.NoError(t, err)
	require.NotEmpty(t, out.Aggregates.Severity)
	assert.Equal(t, "Buner", out.Aggregates.Severity[0].District)
	assert.InDelta(t, 100.0, out.Aggregates.Severity[0].Severity, 0)
}

func TestImpactTransformer_InvalidPayload(t *testing.T) {
	tfm := pipeline.NewTransformer(nil, defaultRates(t), domain.DefaultSeverityWeights(), slog.Default())

	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse situation report")
}
