package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/dsr-impact-service/internal/config"
	"github.com/couchcryptid/dsr-impact-service/internal/domain"
)

// Writer produces impact reports to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes impact reports to the sink topic in a
// single WriteMessages call. Reports are keyed by ID so replays of the same
// date land on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, reports []domain.ImpactReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write impact reports: %w", err)
	}
	w.logger.Debug("published impact reports", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an ImpactReport into a Kafka message.
func serializeToMessage(report domain.ImpactReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize impact report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_date", Value: []byte(report.Date)},
			{Key: "processed_at", Value: []byte(report.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
