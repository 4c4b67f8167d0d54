package main

// Script to backfill historical classified quotes into ClickHouse from JSON
// exports. Each file holds one day batch in the same shape the classifier
// publishes to Kafka, so corpus history that predates the ingestion topic
// can still feed calibration and reports.
//
// Usage:
//   go run scripts/backfill_quotes.go --dir ./exports
//   go run scripts/backfill_quotes.go --dir ./exports --dry-run

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	chclient "barometer/internal/adapters/clickhouse"
	"barometer/internal/adapters/config"
	"barometer/internal/consumers"
	"barometer/internal/domain/quote"
	"barometer/internal/repository/clickhouse"
)

func main() {
	dir := flag.String("dir", "", "Directory of day-batch JSON files")
	dryRun := flag.Bool("dry-run", false, "Parse and validate without inserting")
	flag.Parse()

	fmt.Println("Classified Quote Backfill Tool")
	fmt.Println("==============================")

	if *dir == "" {
		fmt.Println("Error: --dir is required")
		os.Exit(1)
	}

	files, err := listBatchFiles(*dir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No .json files found in %s\n", *dir)
		return
	}
	fmt.Printf("Found %d batch files in %s\n\n", len(files), *dir)

	ctx := context.Background()

	var quotesRepo *clickhouse.QuoteRepository
	var clustersRepo *clickhouse.ClusterRepository
	if !*dryRun {
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Error: failed to load config: %v\n", err)
			os.Exit(1)
		}

		ch, err := chclient.NewClient(cfg.ClickHouse)
		if err != nil {
			fmt.Printf("Error: failed to connect to ClickHouse: %v\n", err)
			os.Exit(1)
		}
		defer ch.Close()

		quotesRepo = clickhouse.NewQuoteRepository(ch.Conn())
		clustersRepo = clickhouse.NewClusterRepository(ch.Conn())
	}

	totalQuotes, totalClusters, totalRejected := 0, 0, 0
	for _, path := range files {
		batch, rejected, err := loadBatch(path)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", filepath.Base(path), err)
			os.Exit(1)
		}

		if !*dryRun {
			if err := quotesRepo.InsertBatch(ctx, batch.Quotes); err != nil {
				fmt.Printf("✗ %s: insert quotes: %v\n", filepath.Base(path), err)
				os.Exit(1)
			}
			if err := clustersRepo.InsertBatch(ctx, batch.Clusters); err != nil {
				fmt.Printf("✗ %s: insert clusters: %v\n", filepath.Base(path), err)
				os.Exit(1)
			}
		}

		fmt.Printf("✓ %s: %s, %d quotes, %d clusters, %d rejected\n",
			filepath.Base(path), batch.Date.String(), len(batch.Quotes), len(batch.Clusters), rejected)

		totalQuotes += len(batch.Quotes)
		totalClusters += len(batch.Clusters)
		totalRejected += rejected
	}

	fmt.Println("")
	if *dryRun {
		fmt.Printf("Dry run: %d quotes and %d clusters validated, %d rejected\n",
			totalQuotes, totalClusters, totalRejected)
	} else {
		fmt.Printf("Backfilled %d quotes and %d clusters (%d rejected)\n",
			totalQuotes, totalClusters, totalRejected)
	}
}

// listBatchFiles returns the .json files in dir sorted by name, so exports
// named by date load in chronological order.
func listBatchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// loadBatch parses one day-batch file, dropping quotes that fail validation.
func loadBatch(path string) (*consumers.ClassifiedBatch, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	var batch consumers.ClassifiedBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, 0, fmt.Errorf("invalid JSON: %w", err)
	}
	if !batch.Date.IsValid() && len(batch.Quotes) == 0 {
		return nil, 0, fmt.Errorf("batch carries no date and no quotes")
	}

	accepted := make([]quote.Quote, 0, len(batch.Quotes))
	rejected := 0
	for _, q := range batch.Quotes {
		if !q.Date.IsValid() {
			q.Date = batch.Date
		}
		if err := q.Validate(); err != nil {
			rejected++
			continue
		}
		accepted = append(accepted, q)
	}
	batch.Quotes = accepted

	for i := range batch.Clusters {
		if !batch.Clusters[i].Date.IsValid() {
			batch.Clusters[i].Date = batch.Date
		}
	}

	return &batch, rejected, nil
}
