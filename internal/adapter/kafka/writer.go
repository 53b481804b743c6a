package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/firemap-service/internal/domain"
)

// SummaryKey is the message key of the per-snapshot summary record.
const SummaryKey = "snapshot"

// Message kinds carried in the "kind" header.
const (
	KindArea    = "fire_area"
	KindSummary = "snapshot_summary"
)

// Writer publishes snapshots to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the fire area topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Summary describes one snapshot without its points or boundaries.
type Summary struct {
	RunID       string    `json:"run_id"`
	FetchedAt   time.Time `json:"fetched_at"`
	ProcessedAt time.Time `json:"processed_at"`
	FirePoints  int       `json:"fire_points"`
	FireAreas   int       `json:"fire_areas"`
	NoisePoints int       `json:"noise_points"`
}

// Publish writes one message per fire area followed by a summary message, in
// a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, snap domain.Snapshot) error {
	msgs := make([]kafkago.Message, 0, len(snap.Result.FireAreas)+1)
	for i := range snap.Result.FireAreas {
		msg, err := serializeArea(snap, snap.Result.FireAreas[i])
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	summary, err := serializeSummary(snap)
	if err != nil {
		return err
	}
	msgs = append(msgs, summary)

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.RunID, err)
	}
	w.logger.Debug("snapshot published", "run_id", snap.RunID, "messages", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeArea marshals a FireArea into a Kafka message keyed by area id.
func serializeArea(snap domain.Snapshot, area domain.FireArea) (kafkago.Message, error) {
	data, err := json.Marshal(area)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize fire area %s: %w", area.ID, err)
	}
	return kafkago.Message{
		Key:     []byte(area.ID),
		Value:   data,
		Headers: headers(snap, KindArea),
	}, nil
}

// serializeSummary marshals the snapshot summary into a Kafka message.
func serializeSummary(snap domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(Summary{
		RunID:       snap.RunID,
		FetchedAt:   snap.FetchedAt,
		ProcessedAt: snap.ProcessedAt,
		FirePoints:  len(snap.Result.FirePoints),
		FireAreas:   len(snap.Result.FireAreas),
		NoisePoints: snap.Result.NoiseCount(),
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot summary: %w", err)
	}
	return kafkago.Message{
		Key:     []byte(SummaryKey),
		Value:   data,
		Headers: headers(snap, KindSummary),
	}, nil
}

func headers(snap domain.Snapshot, kind string) []kafkago.Header {
	return []kafkago.Header{
		{Key: "run_id", Value: []byte(snap.RunID)},
		{Key: "fetched_at", Value: []byte(snap.FetchedAt.Format(time.RFC3339))},
		{Key: "kind", Value: []byte(kind)},
	}
}
