package dashboard

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
	"github.com/couchcryptid/dsr-impact-service/internal/observability"
)

const (
	testDate          = "2025-08-16"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "domain", "testdata", name))
	require.NoError(t, err)
	return data
}

func TestClient_GISDistricts_Success(t *testing.T) {
	body := fixture(t, "gis_districts.json")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/gis/districts", r.URL.Path)
		assert.Equal(t, testDate, r.URL.Query().Get("date"))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c := testClient(srv.URL + "/api")
	districts, err := c.GISDistricts(context.Background(), testDate)
	require.NoError(t, err)

	require.Len(t, districts, 4)
	assert.Equal(t, "Swat", districts[0].District)
	assert.Equal(t, 12, districts[1].Deaths)
	assert.Equal(t, "Mansehra", districts[3].District)
}

func TestClient_CanonicalTotals_Success(t *testing.T) {
	body := fixture(t, "canonical_totals.json")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cumulative-totals", r.URL.Path)
		assert.Equal(t, testDate, r.URL.Query().Get("date"))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	totals, err := c.CanonicalTotals(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, domain.CanonicalTotals{Deaths: 40, Injured: 31, HousesDamaged: 210, LivestockLost: 180}, totals)
}

func TestClient_NoDateOmitsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"deaths":1}`))
	}))
	defer srv.Close()

	totals, err := testClient(srv.URL).CanonicalTotals(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.Count(1), totals.Deaths)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream GIS layer unavailable"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GISDistricts(context.Background(), testDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream GIS layer unavailable")
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CanonicalTotals(context.Background(), testDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse canonical totals")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.GISDistricts(context.Background(), testDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gis request")
}

func TestClient_ImplementsImpactSource(t *testing.T) {
	var _ domain.ImpactSource = (*Client)(nil)
	var _ domain.ImpactSource = (*CachedSource)(nil)
}
