package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barometer_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barometer_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "barometer_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Pipeline metrics
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barometer_pipeline_runs_total",
			Help: "Total number of report pipeline runs",
		},
		[]string{"status"}, // status: success|partial|error
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barometer_pipeline_stage_duration_seconds",
			Help:    "Report pipeline stage duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"stage"}, // stage: load|compute|commentary|archive|cache|notify
	)

	QuotesScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "barometer_quotes_scored_total",
			Help: "Total number of quotes scored by the pipeline",
		},
	)

	ReportDaysAnalyzed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "barometer_report_days_analyzed",
			Help: "Days of data covered by the most recent report",
		},
	)

	VelocityAlerts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barometer_velocity_alerts_total",
			Help: "Total velocity alerts materialized, by severity",
		},
		[]string{"severity"}, // severity: notable|warning|alert
	)

	// Ingest metrics
	IngestBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barometer_ingest_batches_total",
			Help: "Total classified-quote batches consumed",
		},
		[]string{"status"}, // status: success|malformed|error
	)

	IngestQuotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barometer_ingest_quotes_total",
			Help: "Total quotes ingested, by outcome",
		},
		[]string{"status"}, // status: inserted|rejected
	)

	IngestClusters = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "barometer_ingest_clusters_total",
			Help: "Total thematic clusters ingested",
		},
	)

	// Delivery metrics
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barometer_llm_requests_total",
			Help: "Total commentary requests to LLM providers",
		},
		[]string{"provider", "status"}, // status: success|error|skipped
	)

	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barometer_cache_operations_total",
			Help: "Latest-report cache operations",
		},
		[]string{"operation", "status"}, // operation: get|set, status: hit|miss|success|error
	)

	NotifierSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barometer_notifier_sends_total",
			Help: "Total alert digests pushed to Telegram",
		},
		[]string{"status"}, // status: success|error|skipped
	)

	// Calibration metrics
	CalibrationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barometer_calibration_runs_total",
			Help: "Total calibration runs",
		},
		[]string{"status"}, // status: success|degraded|error
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barometer_http_requests_total",
			Help: "Total HTTP requests served, by route and status code",
		},
		[]string{"route", "status"},
	)
)

// Init registers all metrics with the default registry.
// Call once at startup.
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(PipelineRuns)
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(QuotesScored)
	prometheus.MustRegister(ReportDaysAnalyzed)
	prometheus.MustRegister(VelocityAlerts)

	prometheus.MustRegister(IngestBatches)
	prometheus.MustRegister(IngestQuotes)
	prometheus.MustRegister(IngestClusters)

	prometheus.MustRegister(LLMRequests)
	prometheus.MustRegister(CacheOperations)
	prometheus.MustRegister(NotifierSends)

	prometheus.MustRegister(CalibrationRuns)

	prometheus.MustRegister(HTTPRequests)
}

// RegisterCustomCollector registers a scrape-time collector with the
// default registry
func RegisterCustomCollector(c prometheus.Collector) {
	prometheus.MustRegister(c)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordPipelineStage records the duration of one report pipeline stage
func RecordPipelineStage(stage string, start time.Time) {
	PipelineDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
