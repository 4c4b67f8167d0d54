package consumers

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/civil"
	"github.com/segmentio/kafka-go"

	kafkaadapter "barometer/internal/adapters/kafka"
	"barometer/internal/domain/cluster"
	"barometer/internal/domain/quote"
	"barometer/internal/metrics"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

// ClassifiedBatch is the day-batch payload published by the upstream
// classifier: one message per scrape run, carrying the day's quotes and
// thematic clusters together.
type ClassifiedBatch struct {
	Date     civil.Date                `json:"date"`
	Quotes   []quote.Quote             `json:"quotes"`
	Clusters []cluster.ThematicCluster `json:"clusters"`
}

const (
	insertRetries = 3
	handleTimeout = 30 * time.Second
)

var insertRetryDelay = 2 * time.Second

// QuoteConsumer reads classified-quote batches from Kafka and writes them to
// ClickHouse. Offsets are committed only after a successful insert, so the
// corpus never silently loses a batch.
type QuoteConsumer struct {
	consumer *kafkaadapter.Consumer
	quotes   quote.Repository
	clusters cluster.Repository
	log      *logger.Logger
}

// NewQuoteConsumer creates a new classified-quote consumer
func NewQuoteConsumer(
	consumer *kafkaadapter.Consumer,
	quotes quote.Repository,
	clusters cluster.Repository,
	log *logger.Logger,
) *QuoteConsumer {
	return &QuoteConsumer{
		consumer: consumer,
		quotes:   quotes,
		clusters: clusters,
		log:      log,
	}
}

// Start begins consuming classified-quote batches.
// Returns nil on graceful shutdown. A storage failure that survives retries
// terminates the loop without committing, so the batch replays on restart.
func (c *QuoteConsumer) Start(ctx context.Context) error {
	c.log.Info("Starting classified-quote consumer...")

	defer func() {
		if err := c.consumer.Close(); err != nil {
			c.log.Error("Failed to close quote consumer", "error", err)
		}
	}()

	for {
		msg, err := c.consumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Quote consumer stopping (context cancelled)")
				return nil
			}
			c.log.Error("Failed to fetch message", "error", err)
			continue
		}

		handleCtx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		err = c.handleBatch(handleCtx, msg)
		cancel()

		if err != nil {
			if errors.Is(err, errors.ErrMalformedPayload) {
				// Poison message: committing is the only way past it.
				c.log.Error("Skipping malformed batch",
					"offset", msg.Offset,
					"error", err,
				)
				metrics.IngestBatches.WithLabelValues("malformed").Inc()
				if err := c.commit(ctx, msg); err != nil {
					return err
				}
				continue
			}

			metrics.IngestBatches.WithLabelValues("error").Inc()
			return errors.Wrap(err, "failed to ingest batch")
		}

		metrics.IngestBatches.WithLabelValues("success").Inc()
		if err := c.commit(ctx, msg); err != nil {
			return err
		}

		if ctx.Err() != nil {
			c.log.Info("Quote consumer stopping after processing current message")
			return nil
		}
	}
}

func (c *QuoteConsumer) handleBatch(ctx context.Context, msg kafka.Message) error {
	var batch ClassifiedBatch
	if err := json.Unmarshal(msg.Value, &batch); err != nil {
		return errors.Wrapf(errors.ErrMalformedPayload, "invalid JSON: %v", err)
	}
	if !batch.Date.IsValid() && len(batch.Quotes) == 0 && len(batch.Clusters) == 0 {
		return errors.Wrap(errors.ErrMalformedPayload, "batch carries no date and no data")
	}

	accepted := make([]quote.Quote, 0, len(batch.Quotes))
	for _, q := range batch.Quotes {
		if !q.Date.IsValid() {
			q.Date = batch.Date
		}
		if err := q.Validate(); err != nil {
			c.log.Warn("Rejecting quote from batch",
				"post_id", q.PostID,
				"error", err,
			)
			metrics.IngestQuotes.WithLabelValues("rejected").Inc()
			continue
		}
		accepted = append(accepted, q)
	}

	clusters := make([]cluster.ThematicCluster, 0, len(batch.Clusters))
	for _, cl := range batch.Clusters {
		if !cl.Date.IsValid() {
			cl.Date = batch.Date
		}
		clusters = append(clusters, cl)
	}

	if err := c.insertWithRetry(ctx, accepted, clusters); err != nil {
		return err
	}

	metrics.IngestQuotes.WithLabelValues("inserted").Add(float64(len(accepted)))
	metrics.IngestClusters.Add(float64(len(clusters)))

	c.log.Info("Ingested classified batch",
		"date", batch.Date.String(),
		"quotes", len(accepted),
		"rejected", len(batch.Quotes)-len(accepted),
		"clusters", len(clusters),
	)
	return nil
}

// insertWithRetry retries transient storage failures a few times before
// giving up so a ClickHouse hiccup does not kill the consumer.
func (c *QuoteConsumer) insertWithRetry(ctx context.Context, quotes []quote.Quote, clusters []cluster.ThematicCluster) error {
	var lastErr error

	for attempt := 1; attempt <= insertRetries; attempt++ {
		if lastErr != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(insertRetryDelay):
			}
		}

		if err := c.quotes.InsertBatch(ctx, quotes); err != nil {
			lastErr = errors.Wrap(err, "insert quotes")
			c.log.Warn("Quote insert failed, retrying", "attempt", attempt, "error", err)
			continue
		}
		if err := c.clusters.InsertBatch(ctx, clusters); err != nil {
			lastErr = errors.Wrap(err, "insert clusters")
			c.log.Warn("Cluster insert failed, retrying", "attempt", attempt, "error", err)
			continue
		}
		return nil
	}

	return lastErr
}

func (c *QuoteConsumer) commit(ctx context.Context, msg kafka.Message) error {
	// Use a fresh context so a shutdown signal cannot drop the commit of a
	// batch that was already inserted.
	commitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.consumer.CommitMessages(commitCtx, msg); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "failed to commit offset")
	}
	return nil
}
