package clickhouse

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"barometer/internal/domain/report"
	"barometer/pkg/errors"
)

// Compile-time check
var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository implements report.Repository using ClickHouse.
//
// Reports are archived as JSON payloads next to a few indexed columns
// (generation time, date range, alert count) so dashboards can scan the
// archive without parsing every document.
type ReportRepository struct {
	conn driver.Conn
}

// NewReportRepository creates a new report archive repository
func NewReportRepository(conn driver.Conn) *ReportRepository {
	return &ReportRepository{conn: conn}
}

type reportRow struct {
	GeneratedAt   time.Time `ch:"generated_at"`
	SchemaVersion string    `ch:"schema_version"`
	RangeStart    time.Time `ch:"data_range_start"`
	RangeEnd      time.Time `ch:"data_range_end"`
	DaysAnalyzed  int32     `ch:"days_analyzed"`
	AlertCount    int32     `ch:"alert_count"`
	Headline      string    `ch:"headline"`
	Payload       string    `ch:"payload"`
}

// Store archives a generated report
func (r *ReportRepository) Store(ctx context.Context, rep *report.AnalyticsReport) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}

	var alertCount int32
	if rep.Velocity != nil {
		alertCount = int32(rep.Velocity.TotalAlerts)
	}

	query := `
		INSERT INTO analytics_reports (
			generated_at, schema_version, data_range_start, data_range_end,
			days_analyzed, alert_count, headline, payload
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	return r.conn.Exec(ctx, query,
		rep.GeneratedAt, rep.SchemaVersion,
		dateToTime(rep.DataRangeStart), dateToTime(rep.DataRangeEnd),
		int32(rep.DaysAnalyzed), alertCount, rep.Headline, string(payload),
	)
}

// Latest returns the most recently generated report
func (r *ReportRepository) Latest(ctx context.Context) (*report.AnalyticsReport, error) {
	var rows []reportRow

	query := `
		SELECT generated_at, schema_version, data_range_start, data_range_end,
		       days_analyzed, alert_count, headline, payload
		FROM analytics_reports
		ORDER BY generated_at DESC
		LIMIT 1`

	if err := r.conn.Select(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to select latest report")
	}
	if len(rows) == 0 {
		return nil, errors.ErrNotFound
	}

	var rep report.AnalyticsReport
	if err := json.Unmarshal([]byte(rows[0].Payload), &rep); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal report payload")
	}
	return &rep, nil
}

// ListGenerated returns generation timestamps of archived reports, newest first
func (r *ReportRepository) ListGenerated(ctx context.Context, limit int) ([]time.Time, error) {
	var rows []struct {
		GeneratedAt time.Time `ch:"generated_at"`
	}

	query := `
		SELECT generated_at
		FROM analytics_reports
		ORDER BY generated_at DESC
		LIMIT $1`

	if err := r.conn.Select(ctx, &rows, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list reports")
	}

	times := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		times = append(times, row.GeneratedAt)
	}
	return times, nil
}
