package entities

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barometer/internal/analytics"
	"barometer/internal/domain/cluster"
	"barometer/internal/domain/report"
)

func day(n int) civil.Date {
	return civil.Date{Year: 2025, Month: time.June, Day: n}
}

func mkCluster(d civil.Date, engagement int, emotion string, entities ...string) cluster.ThematicCluster {
	return cluster.ThematicCluster{
		Date:            d,
		Theme:           "housing costs",
		Entities:        entities,
		EngagementScore: engagement,
		DominantEmotion: emotion,
		QuoteCount:      3,
	}
}

func defaultCalculator() *Calculator {
	return NewCalculator(analytics.DefaultConfig().Entities)
}

func TestCalculate_NormalizesAndAggregates(t *testing.T) {
	clusters := []cluster.ThematicCluster{
		mkCluster(day(1), 100, "fears", "rent", " Rent "),
		mkCluster(day(2), 50, "frustrations", "RENT"),
	}

	rep := defaultCalculator().Calculate(clusters)
	require.NotNil(t, rep)
	require.Len(t, rep.TopEntities, 1)

	rent := rep.TopEntities[0]
	assert.Equal(t, "RENT", rent.Entity)
	// Both mentions on day 1 come from the same cluster, so its engagement
	// counts twice for the entity.
	assert.Equal(t, 250, rent.TotalEngagement)
	assert.Equal(t, 3, rent.TotalMentions)
	assert.Equal(t, 2, rent.DaysPresent)

	require.Len(t, rent.DailyData, 2)
	assert.Equal(t, day(1), rent.DailyData[0].Date)
	assert.Equal(t, 200, rent.DailyData[0].Engagement)
	assert.Equal(t, 2, rent.DailyData[0].MentionCount)
	assert.Equal(t, []string{"fears"}, rent.DailyData[0].Categories)

	assert.Equal(t, 2, rep.DaysAnalyzed)
	assert.Equal(t, day(2), rep.GeneratedAt)
}

func TestCalculate_RanksByEngagementAndCapsTopN(t *testing.T) {
	cfg := analytics.DefaultConfig().Entities
	cfg.TopN = 2
	calc := NewCalculator(cfg)

	clusters := []cluster.ThematicCluster{
		mkCluster(day(1), 10, "fears", "jobs"),
		mkCluster(day(1), 500, "fears", "rent"),
		mkCluster(day(1), 90, "optimism", "wages"),
	}

	rep := calc.Calculate(clusters)
	require.NotNil(t, rep)
	require.Len(t, rep.TopEntities, 2)
	assert.Equal(t, "RENT", rep.TopEntities[0].Entity)
	assert.Equal(t, "WAGES", rep.TopEntities[1].Entity)
}

func TestCalculate_TrendDirection(t *testing.T) {
	calc := defaultCalculator()

	rising := []cluster.ThematicCluster{
		mkCluster(day(1), 10, "fears", "rent"),
		mkCluster(day(2), 10, "fears", "rent"),
		mkCluster(day(3), 40, "fears", "rent"),
		mkCluster(day(4), 40, "fears", "rent"),
	}
	rep := calc.Calculate(rising)
	require.NotNil(t, rep)
	assert.Equal(t, report.TrendRising, rep.TopEntities[0].TrendDirection)

	falling := []cluster.ThematicCluster{
		mkCluster(day(1), 40, "fears", "rent"),
		mkCluster(day(2), 40, "fears", "rent"),
		mkCluster(day(3), 10, "fears", "rent"),
		mkCluster(day(4), 10, "fears", "rent"),
	}
	rep = calc.Calculate(falling)
	assert.Equal(t, report.TrendFalling, rep.TopEntities[0].TrendDirection)

	// Three days of presence cannot support a split.
	short := []cluster.ThematicCluster{
		mkCluster(day(1), 10, "fears", "rent"),
		mkCluster(day(2), 100, "fears", "rent"),
		mkCluster(day(3), 400, "fears", "rent"),
	}
	rep = calc.Calculate(short)
	assert.Equal(t, report.TrendStable, rep.TopEntities[0].TrendDirection)
}

func TestCalculate_DominantCategory(t *testing.T) {
	clusters := []cluster.ThematicCluster{
		mkCluster(day(1), 10, "fears", "rent"),
		mkCluster(day(2), 10, "frustrations", "rent"),
		mkCluster(day(3), 10, "frustrations", "rent"),
	}

	rep := defaultCalculator().Calculate(clusters)
	require.NotNil(t, rep)
	assert.Equal(t, "frustrations", rep.TopEntities[0].DominantCategory)
}

func TestCalculate_NoEntities(t *testing.T) {
	assert.Nil(t, defaultCalculator().Calculate(nil))

	noNames := []cluster.ThematicCluster{mkCluster(day(1), 10, "fears", "", "   ")}
	assert.Nil(t, defaultCalculator().Calculate(noNames))
}
