package cluster

import (
	"cloud.google.com/go/civil"
)

// ThematicCluster is a group of same-day quotes around one topic, produced by
// the upstream classifier. Clusters feed the entity trend report only; the
// sentiment scoring pipeline never reads them.
type ThematicCluster struct {
	Date            civil.Date `json:"date"`
	Theme           string     `json:"theme"`
	Entities        []string   `json:"entities"`
	EngagementScore int        `json:"engagement_score"`
	DominantEmotion string     `json:"dominant_emotion"`
	QuoteCount      int        `json:"quote_count"`
}
