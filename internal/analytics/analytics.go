// Package analytics computes aggregates over a parsed chat transcript.
// Every function is a stateless read over the transcript, optionally scoped
// to one participant, and returns empty/zero results for empty input rather
// than failing.
package analytics

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/chatflowhq/chatflow/internal/chat"
)

// Overall is the sentinel user meaning "no participant filter".
const Overall = "Overall"

// topMessageThreshold is the absolute score cut for top positive/negative
// message selection. It is intentionally stricter than the category split
// used at annotation time.
const topMessageThreshold = 0.5

const (
	topUsers    = 5
	topWords    = 20
	topMessages = 5
)

// filtered returns the messages in scope for user. System events are
// excluded from every aggregate; a user other than Overall further narrows
// to that sender.
func filtered(t *chat.Transcript, user string) []chat.Message {
	var out []chat.Message
	for i := range t.Messages {
		m := &t.Messages[i]
		if m.IsSystem() {
			continue
		}
		if user != Overall && m.Sender != user {
			continue
		}
		out = append(out, *m)
	}
	return out
}

// Stats is the headline volume summary for one participant scope.
type Stats struct {
	Messages int `json:"messages"`
	Words    int `json:"words"`
	Media    int `json:"media"`
	Links    int `json:"links"`
}

// FetchStats counts messages, words, shared media, and shared links.
func FetchStats(t *chat.Transcript, user string) Stats {
	var s Stats
	for _, m := range filtered(t, user) {
		s.Messages++
		s.Words += m.WordCount
		s.Links += m.LinkCount
		if m.IsMedia {
			s.Media++
		}
	}
	return s
}

// TimelinePoint is one (year, month) group of the monthly timeline.
type TimelinePoint struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MonthlyTimeline groups messages by calendar month, in chronological
// order. The label is display-ready ("January-2023"); Year and Month carry
// the sortable key.
func MonthlyTimeline(t *chat.Transcript, user string) []TimelinePoint {
	type key struct{ year, month int }
	counts := make(map[key]int)
	for _, m := range filtered(t, user) {
		counts[key{m.Year, m.MonthNum}]++
	}

	points := make([]TimelinePoint, 0, len(counts))
	for k, n := range counts {
		points = append(points, TimelinePoint{
			Year:  k.year,
			Month: k.month,
			Label: time.Month(k.month).String() + "-" + strconv.Itoa(k.year),
			Count: n,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Month < points[j].Month
	})
	return points
}

// DayCount is one date of the daily timeline.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// DailyTimeline counts messages per calendar day, in chronological order.
func DailyTimeline(t *chat.Transcript, user string) []DayCount {
	counts := make(map[time.Time]int)
	for _, m := range filtered(t, user) {
		counts[m.Date]++
	}

	days := make([]DayCount, 0, len(counts))
	for d, n := range counts {
		days = append(days, DayCount{Date: d, Count: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// WeekActivity counts messages per weekday name. Days with no messages are
// absent from the map; consumers must treat missing keys as zero.
func WeekActivity(t *chat.Transcript, user string) map[string]int {
	counts := make(map[string]int)
	for _, m := range filtered(t, user) {
		counts[m.DayName]++
	}
	return counts
}

// MonthActivity counts messages per month name, same semantics as
// WeekActivity.
func MonthActivity(t *chat.Transcript, user string) map[string]int {
	counts := make(map[string]int)
	for _, m := range filtered(t, user) {
		counts[m.Month]++
	}
	return counts
}

// weekdayOrder fixes heatmap row order, Monday first.
var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Heatmap is a weekday x hour-bucket activity grid. Counts[i][j] is the
// message count for Days[i] during Buckets[j].
type Heatmap struct {
	Days    []string `json:"days"`
	Buckets []string `json:"buckets"`
	Counts  [][]int  `json:"counts"`
}

// ActivityHeatmap builds the 7x24 activity grid. It returns nil when the
// filtered transcript is empty, signaling "no data" as distinct from a grid
// of zeros.
func ActivityHeatmap(t *chat.Transcript, user string) *Heatmap {
	msgs := filtered(t, user)
	if len(msgs) == 0 {
		return nil
	}

	buckets := chat.HourBuckets()
	bucketIdx := make(map[string]int, len(buckets))
	for i, b := range buckets {
		bucketIdx[b] = i
	}
	dayIdx := make(map[string]int, len(weekdayOrder))
	for i, d := range weekdayOrder {
		dayIdx[d] = i
	}

	counts := make([][]int, len(weekdayOrder))
	for i := range counts {
		counts[i] = make([]int, len(buckets))
	}
	for _, m := range msgs {
		counts[dayIdx[m.DayName]][bucketIdx[m.HourBucket]]++
	}
	return &Heatmap{Days: weekdayOrder, Buckets: buckets, Counts: counts}
}

// UserCount ranks one sender by message volume.
type UserCount struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

// UserShare is one sender's percentage of total message volume.
type UserShare struct {
	User    string  `json:"user"`
	Percent float64 `json:"percent"`
}

// BusiestUsers ranks senders by message count for the whole transcript
// (Overall scope only; system events excluded). Ties keep first-appearance
// order. It returns the top senders and a percentage table covering all of
// them.
func BusiestUsers(t *chat.Transcript) ([]UserCount, []UserShare) {
	counts := make(map[string]int)
	var order []string
	total := 0
	for i := range t.Messages {
		m := &t.Messages[i]
		if m.IsSystem() {
			continue
		}
		if _, seen := counts[m.Sender]; !seen {
			order = append(order, m.Sender)
		}
		counts[m.Sender]++
		total++
	}

	ranked := make([]UserCount, 0, len(order))
	for _, u := range order {
		ranked = append(ranked, UserCount{User: u, Count: counts[u]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	shares := make([]UserShare, 0, len(ranked))
	for _, r := range ranked {
		pct := float64(r.Count) / float64(total) * 100
		shares = append(shares, UserShare{User: r.User, Percent: math.Round(pct*100) / 100})
	}

	if len(ranked) > topUsers {
		ranked = ranked[:topUsers]
	}
	return ranked, shares
}
