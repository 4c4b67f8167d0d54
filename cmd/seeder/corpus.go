package main

import (
	"fmt"
	"math/rand"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"barometer/internal/domain/cluster"
	"barometer/internal/domain/quote"
)

// Synthetic corpus shapes. Category shares drift toward fears over the final
// days so a seeded stack produces visible momentum and velocity alerts, not
// just a flat timeseries.

var subreddits = []string{
	"povertyfinance",
	"antiwork",
	"personalfinance",
	"jobs",
	"economy",
	"middleclassfinance",
}

var phrases = map[quote.Category][]string{
	quote.CategoryFears: {
		"Worried my whole department gets cut next quarter",
		"Rent renewal came in 18% higher, no idea how to cover it",
		"One medical bill away from losing everything",
		"Savings would last maybe six weeks if I lost this job",
		"Grocery bill keeps climbing and my pay does not",
	},
	quote.CategoryFrustrations: {
		"Applied to 200 jobs and got two automated rejections",
		"Third year in a row with no raise while execs get bonuses",
		"Landlord ignored repairs all winter then raised the rent",
		"Spent four hours on hold with the insurance company again",
		"Every posting wants five years experience for entry level pay",
	},
	quote.CategoryOptimism: {
		"Finally paid off the last credit card this month",
		"New certification landed me a job with a real salary bump",
		"Side business covered rent for the first time ever",
		"Emergency fund hit three months of expenses today",
		"Moved somewhere cheaper and life is actually affordable now",
	},
}

var clusterThemes = []struct {
	theme    string
	entities []string
}{
	{"rent increases", []string{"landlords", "housing market", "leases"}},
	{"grocery prices", []string{"supermarkets", "inflation", "food budgets"}},
	{"tech layoffs", []string{"big tech", "severance", "hiring freezes"}},
	{"side hustles", []string{"gig work", "freelancing", "delivery apps"}},
	{"student loans", []string{"repayment plans", "interest", "forgiveness"}},
	{"childcare costs", []string{"daycare", "waitlists", "dual income"}},
}

// dayBatch is one day of synthetic corpus.
type dayBatch struct {
	Date     civil.Date
	Quotes   []quote.Quote
	Clusters []cluster.ThematicCluster
}

// generateCorpus builds days of classified quotes ending at the given date.
// The same seed always yields the same corpus.
func generateCorpus(end civil.Date, days, perDay int, rng *rand.Rand) []dayBatch {
	batches := make([]dayBatch, 0, days)

	for i := days - 1; i >= 0; i-- {
		date := end.AddDays(-i)

		// Fear share ramps up over the last five days
		fearShare := 0.35
		if i < 5 {
			fearShare += 0.03 * float64(5-i)
		}

		batch := dayBatch{Date: date}
		for q := 0; q < perDay; q++ {
			batch.Quotes = append(batch.Quotes, randomQuote(date, fearShare, rng))
		}
		batch.Clusters = dayClusters(date, perDay, rng)
		batches = append(batches, batch)
	}

	return batches
}

func randomQuote(date civil.Date, fearShare float64, rng *rand.Rand) quote.Quote {
	category := pickCategory(fearShare, rng)

	texts := phrases[category]
	text := texts[rng.Intn(len(texts))]

	// Mostly modest engagement with the occasional viral thread
	engagement := rng.Intn(220) - 5
	if rng.Float64() < 0.05 {
		engagement = 1000 + rng.Intn(4000)
	}

	return quote.Quote{
		Text:       text,
		Category:   category,
		Intensity:  pickIntensity(rng),
		Engagement: engagement,
		Date:       date,
		PostID:     uuid.NewString(),
		Subreddit:  subreddits[rng.Intn(len(subreddits))],
	}
}

func pickCategory(fearShare float64, rng *rand.Rand) quote.Category {
	r := rng.Float64()
	switch {
	case r < fearShare:
		return quote.CategoryFears
	case r < fearShare+0.35:
		return quote.CategoryFrustrations
	default:
		return quote.CategoryOptimism
	}
}

func pickIntensity(rng *rand.Rand) quote.Intensity {
	r := rng.Float64()
	switch {
	case r < 0.50:
		return quote.IntensityMild
	case r < 0.85:
		return quote.IntensityModerate
	default:
		return quote.IntensityStrong
	}
}

func dayClusters(date civil.Date, perDay int, rng *rand.Rand) []cluster.ThematicCluster {
	n := 2 + rng.Intn(2)
	clusters := make([]cluster.ThematicCluster, 0, n)

	start := rng.Intn(len(clusterThemes))
	for j := 0; j < n; j++ {
		t := clusterThemes[(start+j)%len(clusterThemes)]
		emotion := pickCategory(0.35, rng)

		clusters = append(clusters, cluster.ThematicCluster{
			Date:            date,
			Theme:           t.theme,
			Entities:        t.entities,
			EngagementScore: 200 + rng.Intn(2000),
			DominantEmotion: string(emotion),
			QuoteCount:      2 + rng.Intn(perDay/3+1),
		})
	}

	return clusters
}

// describeCorpus summarizes a generated corpus for logging.
func describeCorpus(batches []dayBatch) string {
	quotes, clusters := 0, 0
	for _, b := range batches {
		quotes += len(b.Quotes)
		clusters += len(b.Clusters)
	}
	if len(batches) == 0 {
		return "empty corpus"
	}
	return fmt.Sprintf("%d quotes and %d clusters across %d days (%s to %s)",
		quotes, clusters, len(batches),
		batches[0].Date.String(), batches[len(batches)-1].Date.String(),
	)
}
