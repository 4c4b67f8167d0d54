package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"barometer/pkg/logger"
)

// Producer publishes JSON payloads to a single topic. The pipeline itself
// only consumes; the producer exists for tooling that feeds the ingestion
// topic, such as the development seeder.
type Producer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// ProducerConfig holds producer configuration
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// NewProducer creates a producer bound to one topic.
func NewProducer(cfg ProducerConfig) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
			Async:    false, // Synchronous so the caller sees broker errors
		},
		log: logger.Get().With("component", "kafka_producer", "topic", cfg.Topic),
	}
}

// Publish marshals the payload and sends it under the given key.
func (p *Producer) Publish(ctx context.Context, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Errorf("Failed to publish %s: %v", key, err)
		return err
	}

	p.log.Debugf("Published %s", key)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
