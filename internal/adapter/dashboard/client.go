package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
	"github.com/couchcryptid/dsr-impact-service/internal/observability"
)

// Resource labels used for metrics and cache keys.
const (
	resourceGIS    = "gis"
	resourceTotals = "totals"
)

const maxErrorBody = 512

// Client implements domain.ImpactSource against the dashboard's HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a dashboard client. baseURL is the API root without a
// trailing slash, e.g. "http://dashboard:3000/api".
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// GISDistricts fetches the per-district GIS feature collection for a date.
func (c *Client) GISDistricts(ctx context.Context, date string) ([]domain.GISDistrict, error) {
	body, err := c.get(ctx, "/gis/districts", date, resourceGIS)
	if err != nil {
		return nil, err
	}
	districts, err := domain.ParseGISDistricts(body)
	if err != nil {
		c.metrics.DashboardRequests.WithLabelValues(resourceGIS, "error").Inc()
		return nil, err
	}
	c.metrics.DashboardRequests.WithLabelValues(resourceGIS, "success").Inc()
	return districts, nil
}

// CanonicalTotals fetches the province-wide cumulative totals for a date.
func (c *Client) CanonicalTotals(ctx context.Context, date string) (domain.CanonicalTotals, error) {
	body, err := c.get(ctx, "/cumulative-totals", date, resourceTotals)
	if err != nil {
		return domain.CanonicalTotals{}, err
	}
	totals, err := domain.ParseCanonicalTotals(body)
	if err != nil {
		c.metrics.DashboardRequests.WithLabelValues(resourceTotals, "error").Inc()
		return domain.CanonicalTotals{}, err
	}
	c.metrics.DashboardRequests.WithLabelValues(resourceTotals, "success").Inc()
	return totals, nil
}

func (c *Client) get(ctx context.Context, path, date, resource string) ([]byte, error) {
	u := c.baseURL + path
	if date != "" {
		u += "?" + url.Values{"date": {date}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.DashboardAPIDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.DashboardRequests.WithLabelValues(resource, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.DashboardRequests.WithLabelValues(resource, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("dashboard API error: %s: status %d: %s", path, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.DashboardRequests.WithLabelValues(resource, "error").Inc()
		return nil, fmt.Errorf("read %s response: %w", resource, err)
	}

	c.logger.Debug("dashboard request", "resource", resource, "date", date, "duration", time.Since(start))
	return body, nil
}
