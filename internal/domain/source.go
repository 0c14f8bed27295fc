package domain

import "context"

// ImpactSource serves the collaborator data the compensation estimate needs.
// Both calls are keyed by report date (YYYY-MM-DD).
type ImpactSource interface {
	// GISDistricts returns the per-district GIS damage features.
	GISDistricts(ctx context.Context, date string) ([]GISDistrict, error)

	// CanonicalTotals returns the authoritative cumulative counts.
	CanonicalTotals(ctx context.Context, date string) (CanonicalTotals, error)
}
