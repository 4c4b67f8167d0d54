package report

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barometer/internal/adapters/config"
	"barometer/internal/analytics"
	"barometer/internal/domain/calibration"
	"barometer/internal/domain/cluster"
	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

type stubQuoteRepo struct {
	quotes    []quote.Quote
	boundsErr error
}

func (s *stubQuoteRepo) InsertBatch(ctx context.Context, quotes []quote.Quote) error { return nil }

func (s *stubQuoteRepo) GetByDateRange(ctx context.Context, from, to civil.Date) ([]quote.Quote, error) {
	out := make([]quote.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		if !q.Date.Before(from) && !to.Before(q.Date) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *stubQuoteRepo) GetDateBounds(ctx context.Context) (civil.Date, civil.Date, error) {
	if s.boundsErr != nil {
		return civil.Date{}, civil.Date{}, s.boundsErr
	}
	min, max := s.quotes[0].Date, s.quotes[0].Date
	for _, q := range s.quotes[1:] {
		if q.Date.Before(min) {
			min = q.Date
		}
		if max.Before(q.Date) {
			max = q.Date
		}
	}
	return min, max, nil
}

type stubClusterRepo struct {
	clusters []cluster.ThematicCluster
	err      error
}

func (s *stubClusterRepo) InsertBatch(ctx context.Context, clusters []cluster.ThematicCluster) error {
	return nil
}

func (s *stubClusterRepo) GetByDateRange(ctx context.Context, from, to civil.Date) ([]cluster.ThematicCluster, error) {
	return s.clusters, s.err
}

type stubCalibrationRepo struct {
	artifact *calibration.Artifact
	err      error
}

func (s *stubCalibrationRepo) Store(ctx context.Context, artifact *calibration.Artifact) error {
	return nil
}

func (s *stubCalibrationRepo) Latest(ctx context.Context) (*calibration.Artifact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.artifact, nil
}

type stubArchive struct {
	stored []*report.AnalyticsReport
	latest *report.AnalyticsReport
	err    error
}

func (s *stubArchive) Store(ctx context.Context, rep *report.AnalyticsReport) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, rep)
	return nil
}

func (s *stubArchive) Latest(ctx context.Context) (*report.AnalyticsReport, error) {
	if s.latest == nil {
		return nil, errors.ErrNotFound
	}
	return s.latest, nil
}

func (s *stubArchive) ListGenerated(ctx context.Context, limit int) ([]time.Time, error) {
	return nil, nil
}

type stubCache struct {
	stored *report.AnalyticsReport
	getErr error
	setErr error
}

func (s *stubCache) Get(ctx context.Context) (*report.AnalyticsReport, error) {
	return s.stored, s.getErr
}

func (s *stubCache) Set(ctx context.Context, rep *report.AnalyticsReport) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.stored = rep
	return nil
}

type stubProvider struct {
	reply string
	err   error
	calls int
}

func (s *stubProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubProvider) Name() string { return "stub" }

type stubNotifier struct {
	sent []string
	err  error
}

func (s *stubNotifier) Send(ctx context.Context, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}

func serviceCorpus() []quote.Quote {
	base := civil.Date{Year: 2025, Month: 6, Day: 1}
	var quotes []quote.Quote
	for day := 0; day < 5; day++ {
		date := base.AddDays(day)
		quotes = append(quotes,
			quote.Quote{Text: "rent is brutal", Category: quote.CategoryFears, Intensity: quote.IntensityStrong, Engagement: 40 + day*3, Date: date},
			quote.Quote{Text: "wages flat again", Category: quote.CategoryFrustrations, Intensity: quote.IntensityModerate, Engagement: 25 + day, Date: date},
			quote.Quote{Text: "got a raise", Category: quote.CategoryOptimism, Intensity: quote.IntensityMild, Engagement: 10 + day*2, Date: date},
		)
	}
	return quotes
}

func newTestService(quotes *stubQuoteRepo, clusters *stubClusterRepo, calibrations *stubCalibrationRepo, archive *stubArchive, cache Cacher, provider *stubProvider, notifier *stubNotifier) *Service {
	cfg := config.ReportConfig{
		WindowDays:        30,
		CacheTTL:          24 * time.Hour,
		CalibrationMaxAge: 90 * 24 * time.Hour,
	}

	svc := NewService(cfg, analytics.DefaultConfig(), quotes, clusters, calibrations, archive, cache, nil, nil)
	if provider != nil {
		svc.provider = provider
	}
	if notifier != nil {
		svc.notifier = notifier
	}
	return svc
}

func TestGenerate_ArchivesAndCaches(t *testing.T) {
	archive := &stubArchive{}
	cache := &stubCache{}
	provider := &stubProvider{reply: `"Discussion cooled slightly."`}

	svc := newTestService(
		&stubQuoteRepo{quotes: serviceCorpus()},
		&stubClusterRepo{},
		&stubCalibrationRepo{artifact: &calibration.Artifact{
			Version:      3,
			Weights:      calibration.Weights{Mild: -0.4, Moderate: 0.1, Strong: 0.9},
			CalibratedAt: time.Now().Add(-24 * time.Hour),
		}},
		archive,
		cache,
		provider,
		nil,
	)

	rep, err := svc.Generate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Equal(t, report.SchemaVersion, rep.SchemaVersion)
	assert.Equal(t, 5, rep.DaysAnalyzed)
	assert.Equal(t, "Discussion cooled slightly.", rep.SentimentCommentary, "wrapping quotes should be stripped")

	require.Len(t, archive.stored, 1)
	assert.Same(t, rep, archive.stored[0])
	assert.Same(t, rep, cache.stored)
	assert.Equal(t, 1, provider.calls)
}

func TestGenerate_CommentaryErrorDegrades(t *testing.T) {
	archive := &stubArchive{}
	provider := &stubProvider{err: errors.New("quota exhausted")}

	svc := newTestService(
		&stubQuoteRepo{quotes: serviceCorpus()},
		&stubClusterRepo{},
		&stubCalibrationRepo{err: errors.ErrNoCalibration},
		archive,
		&stubCache{},
		provider,
		nil,
	)

	rep, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rep.SentimentCommentary)
	require.Len(t, archive.stored, 1)
}

func TestGenerate_ClusterFailureSkipsEntityTrends(t *testing.T) {
	svc := newTestService(
		&stubQuoteRepo{quotes: serviceCorpus()},
		&stubClusterRepo{err: errors.New("clickhouse timeout")},
		&stubCalibrationRepo{err: errors.ErrNoCalibration},
		&stubArchive{},
		&stubCache{},
		nil,
		nil,
	)

	rep, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rep.EntityTrends)
}

func TestGenerate_BoundsErrorFails(t *testing.T) {
	svc := newTestService(
		&stubQuoteRepo{quotes: serviceCorpus(), boundsErr: errors.New("corpus empty")},
		&stubClusterRepo{},
		&stubCalibrationRepo{},
		&stubArchive{},
		&stubCache{},
		nil,
		nil,
	)

	_, err := svc.Generate(context.Background())
	require.Error(t, err)
}

func TestGenerate_ArchiveErrorFails(t *testing.T) {
	svc := newTestService(
		&stubQuoteRepo{quotes: serviceCorpus()},
		&stubClusterRepo{},
		&stubCalibrationRepo{err: errors.ErrNoCalibration},
		&stubArchive{err: errors.New("insert failed")},
		&stubCache{},
		nil,
		nil,
	)

	_, err := svc.Generate(context.Background())
	require.Error(t, err)
}

func TestResolveWeights(t *testing.T) {
	t.Run("no artifact falls back to priors", func(t *testing.T) {
		svc := newTestService(&stubQuoteRepo{}, &stubClusterRepo{}, &stubCalibrationRepo{err: errors.ErrNoCalibration}, &stubArchive{}, nil, nil, nil)

		weights, meta := svc.resolveWeights(context.Background())
		assert.Equal(t, "priors", meta.Source)
		assert.Equal(t, analytics.DefaultConfig().Calibration.Priors(), weights)
	})

	t.Run("repository error falls back to priors", func(t *testing.T) {
		svc := newTestService(&stubQuoteRepo{}, &stubClusterRepo{}, &stubCalibrationRepo{err: errors.New("connection refused")}, &stubArchive{}, nil, nil, nil)

		_, meta := svc.resolveWeights(context.Background())
		assert.Equal(t, "priors", meta.Source)
	})

	t.Run("fresh artifact wins", func(t *testing.T) {
		art := &calibration.Artifact{
			Version:      7,
			Weights:      calibration.Weights{Mild: -0.6, Moderate: 0.05, Strong: 1.1},
			CalibratedAt: time.Now().Add(-time.Hour),
		}
		svc := newTestService(&stubQuoteRepo{}, &stubClusterRepo{}, &stubCalibrationRepo{artifact: art}, &stubArchive{}, nil, nil, nil)

		weights, meta := svc.resolveWeights(context.Background())
		assert.Equal(t, art.Weights, weights)
		assert.Equal(t, "artifact", meta.Source)
		assert.Equal(t, int64(7), meta.Version)
		assert.False(t, meta.Stale)
	})

	t.Run("stale artifact still used but flagged", func(t *testing.T) {
		art := &calibration.Artifact{
			Version:      2,
			Weights:      calibration.Weights{Mild: -0.5, Moderate: 0.0, Strong: 1.0},
			CalibratedAt: time.Now().Add(-200 * 24 * time.Hour),
		}
		svc := newTestService(&stubQuoteRepo{}, &stubClusterRepo{}, &stubCalibrationRepo{artifact: art}, &stubArchive{}, nil, nil, nil)

		weights, meta := svc.resolveWeights(context.Background())
		assert.Equal(t, art.Weights, weights)
		assert.True(t, meta.Stale)
	})
}

func TestNotify(t *testing.T) {
	day := civil.Date{Year: 2025, Month: 6, Day: 5}
	alerting := &report.AnalyticsReport{
		Headline: "Fear spike",
		SentimentTimeseries: report.SentimentTimeSeries{
			DataPoints: []report.DailySentimentScore{{Date: day, TotalQuotes: 12}},
		},
		Velocity: &report.VelocityReport{
			ReportDate: day,
			Alerts: []report.TrendVelocityAlert{
				{Severity: report.SeverityAlert, Description: "fears surged", TriggeredAt: day},
			},
			TotalAlerts: 1,
			AlertCount:  1,
		},
	}

	t.Run("sends digest when alerts present", func(t *testing.T) {
		notifier := &stubNotifier{}
		svc := newTestService(&stubQuoteRepo{}, &stubClusterRepo{}, &stubCalibrationRepo{}, &stubArchive{}, nil, nil, notifier)

		ok := svc.notify(context.Background(), alerting)
		assert.True(t, ok)
		require.Len(t, notifier.sent, 1)
		assert.Contains(t, notifier.sent[0], "fears surged")
	})

	t.Run("skips quiet reports", func(t *testing.T) {
		notifier := &stubNotifier{}
		svc := newTestService(&stubQuoteRepo{}, &stubClusterRepo{}, &stubCalibrationRepo{}, &stubArchive{}, nil, nil, notifier)

		ok := svc.notify(context.Background(), &report.AnalyticsReport{Velocity: &report.VelocityReport{}})
		assert.True(t, ok)
		assert.Empty(t, notifier.sent)
	})

	t.Run("send failure reported", func(t *testing.T) {
		notifier := &stubNotifier{err: errors.New("telegram down")}
		svc := newTestService(&stubQuoteRepo{}, &stubClusterRepo{}, &stubCalibrationRepo{}, &stubArchive{}, nil, nil, notifier)

		ok := svc.notify(context.Background(), alerting)
		assert.False(t, ok)
	})
}

func TestLatest(t *testing.T) {
	stored := &report.AnalyticsReport{SchemaVersion: report.SchemaVersion, DaysAnalyzed: 9}

	t.Run("cache hit", func(t *testing.T) {
		archive := &stubArchive{}
		svc := newTestService(&stubQuoteRepo{}, &stubClusterRepo{}, &stubCalibrationRepo{}, archive, &stubCache{stored: stored}, nil, nil)

		rep, err := svc.Latest(context.Background())
		require.NoError(t, err)
		assert.Same(t, stored, rep)
	})

	t.Run("miss falls through to archive and refills", func(t *testing.T) {
		cache := &stubCache{}
		svc := newTestService(&stubQuoteRepo{}, &stubClusterRepo{}, &stubCalibrationRepo{}, &stubArchive{latest: stored}, cache, nil, nil)

		rep, err := svc.Latest(context.Background())
		require.NoError(t, err)
		assert.Same(t, stored, rep)
		assert.Same(t, stored, cache.stored)
	})

	t.Run("empty archive errors", func(t *testing.T) {
		svc := newTestService(&stubQuoteRepo{}, &stubClusterRepo{}, &stubCalibrationRepo{}, &stubArchive{}, &stubCache{}, nil, nil)

		_, err := svc.Latest(context.Background())
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}

func init() {
	_ = logger.Init("error", "test")
}
