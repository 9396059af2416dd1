package analytics

import (
	"sort"
	"time"

	"github.com/chatflowhq/chatflow/internal/chat"
)

// SentimentDistribution counts scored messages per category. Unscored
// messages (system events, empty bodies) are excluded.
func SentimentDistribution(t *chat.Transcript, user string) map[string]int {
	counts := make(map[string]int)
	for _, m := range filtered(t, user) {
		if !m.Scored {
			continue
		}
		counts[string(m.Category)]++
	}
	return counts
}

// SentimentPoint is the mean polarity of one calendar day.
type SentimentPoint struct {
	Date time.Time `json:"date"`
	Mean float64   `json:"mean"`
}

// SentimentTimeline averages sentiment per day over scored messages, in
// chronological order.
func SentimentTimeline(t *chat.Transcript, user string) []SentimentPoint {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, m := range filtered(t, user) {
		if !m.Scored {
			continue
		}
		sums[m.Date] += m.Sentiment
		counts[m.Date]++
	}

	points := make([]SentimentPoint, 0, len(sums))
	for d, sum := range sums {
		points = append(points, SentimentPoint{Date: d, Mean: sum / float64(counts[d])})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

// ScoredMessage is one entry of the top positive/negative message lists.
type ScoredMessage struct {
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// TopPositive returns the highest-scoring messages above the top-message
// threshold, strongest first. The threshold is deliberately stricter than
// the category split, so a Positive-category message near zero does not
// qualify.
func TopPositive(t *chat.Transcript, user string) []ScoredMessage {
	return topScored(t, user, false)
}

// TopNegative returns the lowest-scoring messages below the negated
// threshold, strongest (most negative) first.
func TopNegative(t *chat.Transcript, user string) []ScoredMessage {
	return topScored(t, user, true)
}

func topScored(t *chat.Transcript, user string, negative bool) []ScoredMessage {
	var picked []ScoredMessage
	for _, m := range filtered(t, user) {
		if !m.Scored {
			continue
		}
		if negative && m.Sentiment >= -topMessageThreshold {
			continue
		}
		if !negative && m.Sentiment <= topMessageThreshold {
			continue
		}
		picked = append(picked, ScoredMessage{
			Sender:    m.Sender,
			Body:      m.Body,
			Score:     m.Sentiment,
			Timestamp: m.Timestamp,
		})
	}

	sort.SliceStable(picked, func(i, j int) bool {
		if negative {
			return picked[i].Score < picked[j].Score
		}
		return picked[i].Score > picked[j].Score
	})
	if len(picked) > topMessages {
		picked = picked[:topMessages]
	}
	return picked
}
