package metrics

import (
	"context"
	"time"

	"barometer/pkg/logger"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

// CorpusCollector exposes storage-level gauges scraped on demand:
// corpus size, archive depth, and the active calibration version.
type CorpusCollector struct {
	log        *logger.Logger
	postgres   *sqlx.DB
	clickhouse driver.Conn

	corpusQuotes       *prometheus.Desc
	archivedReports    *prometheus.Desc
	calibrationVersion *prometheus.Desc
}

// NewCorpusCollector creates a collector backed by the live databases
func NewCorpusCollector(log *logger.Logger, postgres *sqlx.DB, clickhouse driver.Conn) *CorpusCollector {
	return &CorpusCollector{
		log:        log,
		postgres:   postgres,
		clickhouse: clickhouse,

		corpusQuotes: prometheus.NewDesc(
			"barometer_corpus_quotes",
			"Total classified quotes in the corpus",
			nil, nil,
		),
		archivedReports: prometheus.NewDesc(
			"barometer_archived_reports",
			"Total reports in the archive",
			nil, nil,
		),
		calibrationVersion: prometheus.NewDesc(
			"barometer_calibration_version",
			"Version of the newest calibration artifact",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CorpusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.corpusQuotes
	ch <- c.archivedReports
	ch <- c.calibrationVersion
}

// Collect implements prometheus.Collector
func (c *CorpusCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectCorpusSize(ctx, ch)
	c.collectArchiveDepth(ctx, ch)
	c.collectCalibrationVersion(ctx, ch)
}

func (c *CorpusCollector) collectCorpusSize(ctx context.Context, ch chan<- prometheus.Metric) {
	var count uint64
	if err := c.clickhouse.QueryRow(ctx, "SELECT count() FROM classified_quotes").Scan(&count); err != nil {
		c.log.Error("Failed to collect corpus size metric", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.corpusQuotes, prometheus.GaugeValue, float64(count))
}

func (c *CorpusCollector) collectArchiveDepth(ctx context.Context, ch chan<- prometheus.Metric) {
	var count uint64
	if err := c.clickhouse.QueryRow(ctx, "SELECT count() FROM analytics_reports").Scan(&count); err != nil {
		c.log.Error("Failed to collect archive depth metric", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.archivedReports, prometheus.GaugeValue, float64(count))
}

func (c *CorpusCollector) collectCalibrationVersion(ctx context.Context, ch chan<- prometheus.Metric) {
	var version int64
	err := c.postgres.GetContext(ctx, &version,
		"SELECT COALESCE(MAX(version), 0) FROM calibration_artifacts")
	if err != nil {
		c.log.Error("Failed to collect calibration version metric", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.calibrationVersion, prometheus.GaugeValue, float64(version))
}
