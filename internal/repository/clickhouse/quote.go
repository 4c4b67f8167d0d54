package clickhouse

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"barometer/internal/domain/quote"
	"barometer/pkg/errors"
)

// Compile-time check
var _ quote.Repository = (*QuoteRepository)(nil)

// QuoteRepository implements quote.Repository using ClickHouse
type QuoteRepository struct {
	conn driver.Conn
}

// NewQuoteRepository creates a new quote corpus repository
func NewQuoteRepository(conn driver.Conn) *QuoteRepository {
	return &QuoteRepository{conn: conn}
}

// quoteRow mirrors the classified_quotes table. Domain quotes carry
// civil.Date; the driver wants time.Time, so rows convert at the boundary.
type quoteRow struct {
	Date       time.Time `ch:"date"`
	Category   string    `ch:"category"`
	Intensity  string    `ch:"intensity"`
	Engagement int32     `ch:"engagement"`
	Text       string    `ch:"text"`
	PostID     string    `ch:"post_id"`
	Subreddit  string    `ch:"subreddit"`
}

func (r quoteRow) toDomain() quote.Quote {
	return quote.Quote{
		Date:       timeToDate(r.Date),
		Category:   quote.Category(r.Category),
		Intensity:  quote.Intensity(r.Intensity),
		Engagement: int(r.Engagement),
		Text:       r.Text,
		PostID:     r.PostID,
		Subreddit:  r.Subreddit,
	}
}

// InsertBatch stores a batch of classified quotes
func (r *QuoteRepository) InsertBatch(ctx context.Context, quotes []quote.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO classified_quotes (
			date, category, intensity, engagement, text, post_id, subreddit
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, q := range quotes {
		err := batch.Append(
			dateToTime(q.Date), string(q.Category), string(q.Intensity),
			int32(q.Engagement), q.Text, q.PostID, q.Subreddit,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append quote")
		}
	}

	return batch.Send()
}

// GetByDateRange returns all quotes with from <= date <= to, oldest first
func (r *QuoteRepository) GetByDateRange(ctx context.Context, from, to civil.Date) ([]quote.Quote, error) {
	var rows []quoteRow

	query := `
		SELECT date, category, intensity, engagement, text, post_id, subreddit
		FROM classified_quotes
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC`

	if err := r.conn.Select(ctx, &rows, query, dateToTime(from), dateToTime(to)); err != nil {
		return nil, errors.Wrap(err, "failed to select quotes")
	}

	quotes := make([]quote.Quote, 0, len(rows))
	for _, row := range rows {
		quotes = append(quotes, row.toDomain())
	}
	return quotes, nil
}

// GetDateBounds returns the earliest and latest quote dates in the corpus
func (r *QuoteRepository) GetDateBounds(ctx context.Context) (civil.Date, civil.Date, error) {
	var (
		count            uint64
		earliest, latest time.Time
	)

	query := `SELECT count() AS n, min(date) AS min_date, max(date) AS max_date FROM classified_quotes`

	if err := r.conn.QueryRow(ctx, query).Scan(&count, &earliest, &latest); err != nil {
		return civil.Date{}, civil.Date{}, errors.Wrap(err, "failed to select date bounds")
	}
	if count == 0 {
		return civil.Date{}, civil.Date{}, errors.ErrEmptyCorpus
	}

	return timeToDate(earliest), timeToDate(latest), nil
}
