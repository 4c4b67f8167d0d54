// Command seeder loads a synthetic classified-quote corpus for development.
//
// Direct mode (default) creates the ClickHouse tables when missing and
// inserts day batches through the repositories, so a fresh stack can render
// a report without the upstream classifier. Publish mode (-publish) emits
// the same batches as JSON to the ingestion topic instead, exercising the
// full Kafka consumer path.
package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"cloud.google.com/go/civil"

	chclient "barometer/internal/adapters/clickhouse"
	"barometer/internal/adapters/config"
	kafkaadapter "barometer/internal/adapters/kafka"
	"barometer/internal/consumers"
	"barometer/internal/repository/clickhouse"
	"barometer/internal/testsupport"
	"barometer/pkg/logger"
)

func main() {
	// Parse flags
	days := flag.Int("days", 30, "Number of days to generate, ending today")
	perDay := flag.Int("per-day", 40, "Quotes per day")
	publish := flag.Bool("publish", false, "Publish batches to Kafka instead of inserting directly")
	seed := flag.Int64("rng", 1, "Random seed (same seed, same corpus)")
	flag.Parse()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()

	end := civil.DateOf(time.Now().UTC())
	rng := rand.New(rand.NewSource(*seed))
	batches := generateCorpus(end, *days, *perDay, rng)

	log.Infow("Generated synthetic corpus",
		"corpus", describeCorpus(batches),
		"mode", mode(*publish),
	)

	ctx := context.Background()

	if *publish {
		if err := publishBatches(ctx, cfg, batches, log); err != nil {
			log.Fatalf("Failed to publish corpus: %v", err)
		}
	} else {
		if err := insertBatches(ctx, cfg, batches, log); err != nil {
			log.Fatalf("Failed to insert corpus: %v", err)
		}
	}

	log.Info("✅ Corpus seeded successfully")
}

func mode(publish bool) string {
	if publish {
		return "kafka"
	}
	return "direct"
}

// insertBatches writes the corpus straight into ClickHouse.
func insertBatches(ctx context.Context, cfg *config.Config, batches []dayBatch, log *logger.Logger) error {
	ch, err := chclient.NewClient(cfg.ClickHouse)
	if err != nil {
		return err
	}
	defer ch.Close()

	// Fresh environments have no tables yet
	for _, ddl := range []string{
		testsupport.ClassifiedQuotesDDL,
		testsupport.ThematicClustersDDL,
		testsupport.AnalyticsReportsDDL,
	} {
		if err := ch.Exec(ctx, ddl); err != nil {
			return err
		}
	}

	quotes := clickhouse.NewQuoteRepository(ch.Conn())
	clusters := clickhouse.NewClusterRepository(ch.Conn())

	for _, b := range batches {
		if err := quotes.InsertBatch(ctx, b.Quotes); err != nil {
			return err
		}
		if err := clusters.InsertBatch(ctx, b.Clusters); err != nil {
			return err
		}
		log.Infow("Inserted day batch",
			"date", b.Date.String(),
			"quotes", len(b.Quotes),
			"clusters", len(b.Clusters),
		)
	}

	return nil
}

// publishBatches emits one classified batch per day to the ingestion topic,
// the same shape the upstream classifier produces.
func publishBatches(ctx context.Context, cfg *config.Config, batches []dayBatch, log *logger.Logger) error {
	producer := kafkaadapter.NewProducer(kafkaadapter.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.QuotesTopic,
	})
	defer producer.Close()

	for _, b := range batches {
		payload := consumers.ClassifiedBatch{
			Date:     b.Date,
			Quotes:   b.Quotes,
			Clusters: b.Clusters,
		}

		if err := producer.Publish(ctx, b.Date.String(), payload); err != nil {
			return err
		}
		log.Infow("Published day batch",
			"date", b.Date.String(),
			"quotes", len(b.Quotes),
			"clusters", len(b.Clusters),
		)
	}

	return nil
}
