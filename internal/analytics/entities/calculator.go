// Package entities ranks the most-discussed named entities across thematic
// clusters and classifies each one's engagement trend over the window.
package entities

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"

	"barometer/internal/analytics"
	"barometer/internal/domain/cluster"
	"barometer/internal/domain/report"
)

// Calculator aggregates entity activity from clusters.
type Calculator struct {
	cfg analytics.EntitiesConfig
}

// NewCalculator creates an entity trend calculator.
func NewCalculator(cfg analytics.EntitiesConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

type dayAccumulator struct {
	engagement int
	mentions   int
	categories map[string]struct{}
}

type entityAccumulator struct {
	days       map[civil.Date]*dayAccumulator
	categories map[string]int
}

// Calculate builds the ranked entity trend report. Entity names are
// normalized to trimmed upper case so casing variants collapse into one
// entry. Nil is returned when no clusters name any entity.
func (c *Calculator) Calculate(clusters []cluster.ThematicCluster) *report.EntityTrendsReport {
	byEntity := make(map[string]*entityAccumulator)
	daysSeen := make(map[civil.Date]struct{})
	var latest civil.Date

	for i := range clusters {
		cl := &clusters[i]
		if !cl.Date.IsValid() {
			continue
		}
		daysSeen[cl.Date] = struct{}{}
		if cl.Date.After(latest) {
			latest = cl.Date
		}

		for _, raw := range cl.Entities {
			name := strings.ToUpper(strings.TrimSpace(raw))
			if name == "" {
				continue
			}

			acc := byEntity[name]
			if acc == nil {
				acc = &entityAccumulator{
					days:       make(map[civil.Date]*dayAccumulator),
					categories: make(map[string]int),
				}
				byEntity[name] = acc
			}

			day := acc.days[cl.Date]
			if day == nil {
				day = &dayAccumulator{categories: make(map[string]struct{})}
				acc.days[cl.Date] = day
			}
			day.engagement += cl.EngagementScore
			day.mentions++
			if cl.DominantEmotion != "" {
				day.categories[cl.DominantEmotion] = struct{}{}
				acc.categories[cl.DominantEmotion]++
			}
		}
	}

	if len(byEntity) == 0 {
		return nil
	}

	trends := make([]report.EntityTrend, 0, len(byEntity))
	for name, acc := range byEntity {
		trends = append(trends, c.buildTrend(name, acc))
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].TotalEngagement != trends[j].TotalEngagement {
			return trends[i].TotalEngagement > trends[j].TotalEngagement
		}
		return trends[i].Entity < trends[j].Entity
	})
	if len(trends) > c.cfg.TopN {
		trends = trends[:c.cfg.TopN]
	}

	return &report.EntityTrendsReport{
		GeneratedAt:  latest,
		DaysAnalyzed: len(daysSeen),
		TopEntities:  trends,
	}
}

func (c *Calculator) buildTrend(name string, acc *entityAccumulator) report.EntityTrend {
	dates := make([]civil.Date, 0, len(acc.days))
	for d := range acc.days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	trend := report.EntityTrend{
		Entity:      name,
		DaysPresent: len(dates),
		DailyData:   make([]report.EntityDayData, 0, len(dates)),
	}

	engagements := make([]int, 0, len(dates))
	for _, d := range dates {
		day := acc.days[d]
		trend.TotalEngagement += day.engagement
		trend.TotalMentions += day.mentions
		engagements = append(engagements, day.engagement)

		cats := make([]string, 0, len(day.categories))
		for cat := range day.categories {
			cats = append(cats, cat)
		}
		sort.Strings(cats)

		trend.DailyData = append(trend.DailyData, report.EntityDayData{
			Date:         d,
			Engagement:   day.engagement,
			MentionCount: day.mentions,
			Categories:   cats,
		})
	}

	trend.DominantCategory = dominantOf(acc.categories)
	trend.TrendDirection = c.direction(engagements)
	return trend
}

// dominantOf picks the most frequent category; ties resolve alphabetically.
func dominantOf(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var dominant string
	best := -1
	for _, name := range names {
		if counts[name] > best {
			dominant = name
			best = counts[name]
		}
	}
	return dominant
}

// direction compares engagement between the two halves of the entity's
// presence. Short series have no meaningful halves and read as stable.
func (c *Calculator) direction(engagements []int) report.TrendDirection {
	if len(engagements) < c.cfg.MinDaysForTrend {
		return report.TrendStable
	}

	half := len(engagements) / 2
	var first, second float64
	for i, e := range engagements {
		if i < half {
			first += float64(e)
		} else {
			second += float64(e)
		}
	}

	switch {
	case second > first*c.cfg.RisingFactor:
		return report.TrendRising
	case second < first*c.cfg.FallingFactor:
		return report.TrendFalling
	default:
		return report.TrendStable
	}
}
