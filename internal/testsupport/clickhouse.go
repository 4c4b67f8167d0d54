package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"barometer/internal/adapters/clickhouse"
	"barometer/internal/adapters/config"
	"barometer/internal/domain/quote"
)

// ClickHouseTestHelper manages cleanup for ClickHouse integration tests.
type ClickHouseTestHelper struct {
	client *clickhouse.Client
}

// NewClickHouseTestHelper creates a ClickHouse client for tests.
func NewClickHouseTestHelper(t *testing.T, cfg config.ClickHouseConfig) *ClickHouseTestHelper {
	t.Helper()

	client, err := clickhouse.NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to connect to clickhouse: %v", err)
	}

	helper := &ClickHouseTestHelper{client: client}
	t.Cleanup(func() { _ = client.Close() })
	return helper
}

// Client exposes the raw ClickHouse client for queries.
func (h *ClickHouseTestHelper) Client() *clickhouse.Client {
	return h.client
}

// Table DDL shared by integration tests and the dev seeder.
const (
	ClassifiedQuotesDDL = `
		CREATE TABLE IF NOT EXISTS classified_quotes (
			date        Date,
			category    LowCardinality(String),
			intensity   LowCardinality(String),
			engagement  Int32,
			text        String,
			post_id     String,
			subreddit   LowCardinality(String)
		) ENGINE = MergeTree()
		ORDER BY (date, category)`

	ThematicClustersDDL = `
		CREATE TABLE IF NOT EXISTS thematic_clusters (
			date             Date,
			theme            String,
			entities         Array(String),
			engagement_score Int32,
			dominant_emotion LowCardinality(String),
			quote_count      Int32
		) ENGINE = MergeTree()
		ORDER BY date`

	AnalyticsReportsDDL = `
		CREATE TABLE IF NOT EXISTS analytics_reports (
			generated_at     DateTime64(3, 'UTC'),
			schema_version   LowCardinality(String),
			data_range_start Date,
			data_range_end   Date,
			days_analyzed    Int32,
			alert_count      Int32,
			headline         String,
			payload          String
		) ENGINE = MergeTree()
		ORDER BY generated_at`
)

// EnsureAnalyticsTables creates the corpus and archive tables when absent.
func (h *ClickHouseTestHelper) EnsureAnalyticsTables(t *testing.T) {
	t.Helper()

	for _, ddl := range []string{ClassifiedQuotesDDL, ThematicClustersDDL, AnalyticsReportsDDL} {
		if err := h.client.Exec(context.Background(), ddl); err != nil {
			t.Fatalf("failed to create clickhouse table: %v", err)
		}
	}
}

// RegisterTableCleanup schedules cleanup of specific table data after test completes
// This is useful when working with shared tables that shouldn't be dropped
func (h *ClickHouseTestHelper) RegisterTableCleanup(t *testing.T, table, condition string) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Use DELETE for immediate cleanup (ALTER TABLE DELETE is async)
		query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, condition)
		_ = h.client.Exec(ctx, query)
	})
}

// CleanupTableData deletes data matching a filter condition
// Example: CleanupTableData(ctx, "classified_quotes", "subreddit = 'test_sub'")
func (h *ClickHouseTestHelper) CleanupTableData(ctx context.Context, table, condition string) error {
	query := fmt.Sprintf("ALTER TABLE %s DELETE WHERE %s", table, condition)
	return h.client.Exec(ctx, query)
}

// QuoteFixture provides builder pattern for creating test quotes
type QuoteFixture struct {
	q quote.Quote
}

// NewQuoteFixture creates a default classified quote for testing.
// Default: a moderate fears quote with modest engagement, tagged with a
// unique post id so cleanup conditions can target fixture rows.
func NewQuoteFixture() *QuoteFixture {
	return &QuoteFixture{
		q: quote.Quote{
			Text:       "worried about rent going up again",
			Category:   quote.CategoryFears,
			Intensity:  quote.IntensityModerate,
			Engagement: 40,
			Date:       civil.DateOf(time.Now().UTC()),
			PostID:     UniqueName("test_post"),
			Subreddit:  "test_sub",
		},
	}
}

// WithText sets the quote text
func (f *QuoteFixture) WithText(text string) *QuoteFixture {
	f.q.Text = text
	return f
}

// WithCategory sets the category
func (f *QuoteFixture) WithCategory(c quote.Category) *QuoteFixture {
	f.q.Category = c
	return f
}

// WithIntensity sets the intensity
func (f *QuoteFixture) WithIntensity(i quote.Intensity) *QuoteFixture {
	f.q.Intensity = i
	return f
}

// WithEngagement sets the engagement score
func (f *QuoteFixture) WithEngagement(engagement int) *QuoteFixture {
	f.q.Engagement = engagement
	return f
}

// WithDate sets the quote date
func (f *QuoteFixture) WithDate(d civil.Date) *QuoteFixture {
	f.q.Date = d
	return f
}

// WithSubreddit sets the source subreddit
func (f *QuoteFixture) WithSubreddit(sub string) *QuoteFixture {
	f.q.Subreddit = sub
	return f
}

// Build returns the configured quote
func (f *QuoteFixture) Build() quote.Quote {
	return f.q
}

// BuildMany returns count copies on consecutive dates starting at the
// fixture date, each with a unique post id.
func (f *QuoteFixture) BuildMany(count int) []quote.Quote {
	quotes := make([]quote.Quote, 0, count)
	for i := 0; i < count; i++ {
		q := f.q
		q.Date = f.q.Date.AddDays(i)
		q.PostID = UniqueName("test_post")
		quotes = append(quotes, q)
	}
	return quotes
}
