package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/charging-need-service/internal/config"
	"github.com/couchcryptid/charging-need-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes layer points to a Kafka topic, one message per point.
// It implements pipeline.LayerPublisher.
type Writer struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.PublishBatchSize,
	}
	return &Writer{writer: w, batchSize: cfg.PublishBatchSize, logger: logger}
}

// PublishLayers writes every point of the snapshot's four layers, in chunks
// of at most batchSize messages per WriteMessages call.
func (w *Writer) PublishLayers(ctx context.Context, snap *domain.Snapshot) error {
	for _, layer := range []domain.HeatLayer{snap.EV, snap.Traffic, snap.Congestion} {
		if err := publishLayer(ctx, w, layer.Kind, layer.GeneratedAt, layer.Points); err != nil {
			return err
		}
	}
	return publishLayer(ctx, w, snap.Need.Kind, snap.Need.GeneratedAt, snap.Need.Points)
}

func publishLayer[P any](ctx context.Context, w *Writer, kind domain.LayerKind, generatedAt time.Time, points []P) error {
	msgs, err := layerMessages(kind, generatedAt, points)
	if err != nil {
		return err
	}
	if err := w.writeChunks(ctx, msgs); err != nil {
		return fmt.Errorf("publish %s layer: %w", kind, err)
	}
	w.logger.Debug("layer published", "layer", kind, "points", len(msgs))
	return nil
}

func (w *Writer) writeChunks(ctx context.Context, msgs []kafkago.Message) error {
	size := max(w.batchSize, 1)
	for start := 0; start < len(msgs); start += size {
		end := min(start+size, len(msgs))
		if err := w.writer.WriteMessages(ctx, msgs[start:end]...); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// layerMessages serializes each point of a layer into a Kafka message keyed
// by "<layer>-<index>".
func layerMessages[P any](kind domain.LayerKind, generatedAt time.Time, points []P) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, len(points))
	for i := range points {
		msg, err := serializeToMessage(kind, generatedAt, i, points[i])
		if err != nil {
			return nil, err
		}
		msgs[i] = msg
	}
	return msgs, nil
}

// serializeToMessage marshals one layer point into a Kafka message.
func serializeToMessage[P any](kind domain.LayerKind, generatedAt time.Time, index int, point P) (kafkago.Message, error) {
	data, err := json.Marshal(point)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s point %d: %w", kind, index, err)
	}
	return kafkago.Message{
		Key:   []byte(string(kind) + "-" + strconv.Itoa(index)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "layer", Value: []byte(kind)},
			{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
