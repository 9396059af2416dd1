package analytics

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/chatflowhq/chatflow/internal/chat"
)

// Report bundles every aggregate for one (transcript, user) scope. It is
// the structured payload handed to the presentation and export layers.
type Report struct {
	User string `json:"user"`

	Stats           Stats            `json:"stats"`
	MonthlyTimeline []TimelinePoint  `json:"monthly_timeline"`
	DailyTimeline   []DayCount       `json:"daily_timeline"`
	WeekActivity    map[string]int   `json:"week_activity"`
	MonthActivity   map[string]int   `json:"month_activity"`
	Heatmap         *Heatmap         `json:"heatmap"`
	BusiestUsers    []UserCount      `json:"busiest_users,omitempty"`
	UserShares      []UserShare      `json:"user_shares,omitempty"`
	Wordcloud       map[string]int   `json:"wordcloud"`
	CommonWords     []WordCount      `json:"common_words"`
	TopEmojis       []EmojiCount     `json:"top_emojis"`
	Sentiment       map[string]int   `json:"sentiment_distribution"`
	SentimentByDay  []SentimentPoint `json:"sentiment_timeline"`
	TopPositive     []ScoredMessage  `json:"top_positive"`
	TopNegative     []ScoredMessage  `json:"top_negative"`
}

// BuildReport computes every aggregate for the given scope. Aggregates are
// independent, so they run concurrently; a failure in one leaves its zero
// value in the report and never suppresses the others. The transcript is
// immutable, so the concurrent reads need no locking.
func BuildReport(ctx context.Context, t *chat.Transcript, user string) *Report {
	rep := &Report{User: user}

	g, _ := errgroup.WithContext(ctx)
	run := func(name string, fn func()) {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("aggregate computation failed", "aggregate", name, "panic", r)
				}
			}()
			fn()
			return nil
		})
	}

	run("stats", func() { rep.Stats = FetchStats(t, user) })
	run("monthly_timeline", func() { rep.MonthlyTimeline = MonthlyTimeline(t, user) })
	run("daily_timeline", func() { rep.DailyTimeline = DailyTimeline(t, user) })
	run("week_activity", func() { rep.WeekActivity = WeekActivity(t, user) })
	run("month_activity", func() { rep.MonthActivity = MonthActivity(t, user) })
	run("heatmap", func() { rep.Heatmap = ActivityHeatmap(t, user) })
	run("wordcloud", func() { rep.Wordcloud = WordFrequencies(t, user) })
	run("common_words", func() { rep.CommonWords = CommonWords(t, user) })
	run("top_emojis", func() { rep.TopEmojis = TopEmojis(t, user) })
	run("sentiment_distribution", func() { rep.Sentiment = SentimentDistribution(t, user) })
	run("sentiment_timeline", func() { rep.SentimentByDay = SentimentTimeline(t, user) })
	run("top_positive", func() { rep.TopPositive = TopPositive(t, user) })
	run("top_negative", func() { rep.TopNegative = TopNegative(t, user) })
	if user == Overall {
		run("busiest_users", func() { rep.BusiestUsers, rep.UserShares = BusiestUsers(t) })
	}

	g.Wait() //nolint:errcheck // every goroutine recovers and returns nil
	return rep
}
