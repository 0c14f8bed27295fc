package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
)

// ImpactTransformer implements Transformer by aggregating each situation
// report and, when an impact source is configured, attaching a compensation
// estimate.
type ImpactTransformer struct {
	source  domain.ImpactSource
	rates   *domain.RateTable
	weights domain.SeverityWeights
	logger  *slog.Logger
}

// NewTransformer creates an ImpactTransformer. Pass a nil source to publish
// aggregates only.
func NewTransformer(source domain.ImpactSource, rates *domain.RateTable, weights domain.SeverityWeights, logger *slog.Logger) *ImpactTransformer {
	return &ImpactTransformer{
		source:  source,
		rates:   rates,
		weights: weights,
		logger:  logger,
	}
}

// Transform parses and aggregates one situation report. A failed
// compensation lookup is logged and the report is published without it.
func (t *ImpactTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.ImpactReport, error) {
	report, err := domain.ParseSituationReport(raw)
	if err != nil {
		return domain.ImpactReport{}, err
	}

	out := domain.BuildImpactReport(report, t.weights)

	enriched, err := domain.EnrichWithCompensation(ctx, out, report, t.source, t.rates)
	if err != nil {
		t.logger.Warn("compensation estimate failed, publishing aggregates only",
			"error", err,
			"date", report.Date,
		)
		return out, nil
	}
	return enriched, nil
}
