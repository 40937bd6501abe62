// Package kafka publishes profile lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// Writer publishes keyed messages to a single topic.
type Writer struct {
	w *kafka.Writer
}

// NewWriter returns a Writer for topic on brokers. Messages with the same key
// land on the same partition so per-profile ordering holds.
func NewWriter(brokers []string, topic string) (*Writer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	return &Writer{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
		WriteTimeout:           2 * time.Second,
		AllowAutoTopicCreation: true,
	}}, nil
}

// Publish writes one message and waits for the broker acknowledgement.
func (w *Writer) Publish(ctx context.Context, key string, value []byte) error {
	return w.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

// Topic returns the destination topic.
func (w *Writer) Topic() string {
	return w.w.Topic
}

// Close flushes pending messages and releases connections.
func (w *Writer) Close() error {
	return w.w.Close()
}
