package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"barometer/pkg/logger"
)

// Batch sizing for the group reader. Scraper output arrives in bursts,
// so a 10KB floor lets the broker hand over whole bursts at once.
const (
	readerMinBytes = 10e3
	readerMaxBytes = 10e6
)

// Consumer wraps a kafka-go group reader.
//
// Offsets are NOT auto-committed: callers fetch, process, then commit, so a
// crash between insert and commit replays the batch instead of losing it.
type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topic   string
}

// NewConsumer creates a consumer joined to the given group. A group with no
// committed offset starts from the earliest message so history is not skipped.
func NewConsumer(cfg ConsumerConfig) *Consumer {
	log := logger.Get().With("component", "kafka_consumer", "topic", cfg.Topic)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		MinBytes:    readerMinBytes,
		MaxBytes:    readerMaxBytes,
		StartOffset: kafka.FirstOffset,
	})

	log.Infow("Kafka consumer created",
		"brokers", cfg.Brokers,
		"group_id", cfg.GroupID,
	)

	return &Consumer{reader: reader, log: log}
}

// FetchMessage reads the next message without committing its offset.
// Checks for shutdown before blocking so a cancelled context never
// leaves the caller stuck on broker I/O.
func (c *Consumer) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	default:
	}

	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return kafka.Message{}, ctx.Err()
		}
		return kafka.Message{}, err
	}

	return msg, nil
}

// CommitMessages marks messages as processed
func (c *Consumer) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return c.reader.CommitMessages(ctx, msgs...)
}

// Close closes the consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
