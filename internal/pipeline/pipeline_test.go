package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
	"github.com/couchcryptid/dsr-impact-service/internal/observability"
	"github.com/couchcryptid/dsr-impact-service/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	events  []domain.RawEvent
	served  atomic.Bool
	failFor int
	calls   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	if int(m.calls.Add(1)) <= m.failFor {
		return nil, errors.New("broker unavailable")
	}
	if !m.served.Swap(true) && len(m.events) > 0 {
		n := min(batchSize, len(m.events))
		return m.events[:n], nil
	}
	// block until context cancelled to simulate waiting for messages
	<-ctx.Done()
	return nil, ctx.Err()
}

type mockTransformer struct {
	failDates map[string]bool
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.ImpactReport, error) {
	date := string(raw.Key)
	if m.failDates[date] {
		return domain.ImpactReport{}, errors.New("bad data")
	}
	return domain.ImpactReport{ID: domain.ReportID(date), Date: date}, nil
}

type mockLoader struct {
	loaded []domain.ImpactReport
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, reports []domain.ImpactReport) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, reports...)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use unregistered metrics to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func rawReport(date string, committed *atomic.Int64) domain.RawEvent {
	raw := domain.RawEvent{
		Key:   []byte(date),
		Value: []byte(`{"Date":"` + date + `"}`),
		Topic: "raw-situation-reports",
	}
	if committed != nil {
		raw.Commit = func(_ context.Context) error {
			committed.Add(1)
			return nil
		}
	}
	return raw
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	var committed atomic.Int64
	ext := &mockExtractor{events: []domain.RawEvent{
		rawReport("2025-08-15", &committed),
		rawReport("2025-08-16", &committed),
	}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)
	runFor(t, p, 300*time.Millisecond)

	require.Len(t, ldr.loaded, 2)
	assert.Equal(t, "2025-08-15", ldr.loaded[0].Date)
	assert.Equal(t, "2025-08-16", ldr.loaded[1].Date)
	assert.Equal(t, int64(2), committed.Load())
	assert.True(t, p.Ready())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no events, will block
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_TransformErrorCommitsAndSkips(t *testing.T) {
	var committed atomic.Int64
	ext := &mockExtractor{events: []domain.RawEvent{
		rawReport("bad", &committed),
		rawReport("2025-08-16", &committed),
	}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{failDates: map[string]bool{"bad": true}}, ldr, slog.Default(), newTestMetrics(), 10)
	runFor(t, p, 300*time.Millisecond)

	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, "2025-08-16", ldr.loaded[0].Date)
	assert.Equal(t, int64(2), committed.Load(), "poison pill is committed too")
}

func TestPipeline_Run_AllTransformsFail(t *testing.T) {
	ext := &mockExtractor{events: []domain.RawEvent{rawReport("bad", nil)}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{failDates: map[string]bool{"bad": true}}, ldr, slog.Default(), newTestMetrics(), 10)
	runFor(t, p, 300*time.Millisecond)

	assert.Empty(t, ldr.loaded)
	assert.False(t, p.Ready())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_LoadFailureDoesNotCommit(t *testing.T) {
	var committed atomic.Int64
	ext := &mockExtractor{events: []domain.RawEvent{rawReport("2025-08-16", &committed)}}
	ldr := &mockLoader{err: errors.New("sink unavailable")}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)
	runFor(t, p, 300*time.Millisecond)

	assert.Zero(t, committed.Load())
	assert.False(t, p.Ready())
}

func TestPipeline_Run_RecoversAfterExtractError(t *testing.T) {
	ext := &mockExtractor{events: []domain.RawEvent{rawReport("2025-08-16", nil)}, failFor: 1}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)
	runFor(t, p, time.Second)

	require.Len(t, ldr.loaded, 1)
	assert.GreaterOrEqual(t, ext.calls.Load(), int64(2))
}

func TestPipeline_Run_RespectsBatchSize(t *testing.T) {
	ext := &mockExtractor{events: []domain.RawEvent{
		rawReport("2025-08-14", nil),
		rawReport("2025-08-15", nil),
		rawReport("2025-08-16", nil),
	}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 2)
	runFor(t, p, 300*time.Millisecond)

	assert.Len(t, ldr.loaded, 2)
}
