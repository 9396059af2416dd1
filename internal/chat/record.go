// Package chat parses exported chat transcripts into structured,
// enriched message records.
package chat

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chatflowhq/chatflow/internal/sentiment"
)

// GroupNotification is the sender assigned to transcript entries that have
// no human author, such as membership change notices and export preambles.
const GroupNotification = "group_notification"

var linkRegex = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

// mediaPlaceholders are the bodies the export substitutes for attachments.
var mediaPlaceholders = map[string]struct{}{
	"<Media omitted>":  {},
	"image omitted":    {},
	"video omitted":    {},
	"audio omitted":    {},
	"sticker omitted":  {},
	"GIF omitted":      {},
	"document omitted": {},
}

// Message is one parsed transcript entry. All derived fields are computed
// once at construction; nothing downstream recomputes or mutates them.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`

	IsMedia   bool `json:"is_media"`
	WordCount int  `json:"word_count"`
	LinkCount int  `json:"link_count"`

	// Sentiment is only meaningful when Scored is true. System events and
	// empty bodies are never scored.
	Sentiment float64            `json:"sentiment"`
	Scored    bool               `json:"scored"`
	Category  sentiment.Category `json:"category,omitempty"`

	Year       int    `json:"year"`
	Month      string `json:"month"`
	MonthNum   int    `json:"month_num"`
	Day        int    `json:"day"`
	DayName    string `json:"day_name"`
	Hour       int    `json:"hour"`
	HourBucket string `json:"hour_bucket"`

	// Date is Timestamp truncated to midnight, for per-day grouping.
	Date time.Time `json:"only_date"`
}

// IsSystem reports whether the message is a system event rather than a
// user message.
func (m *Message) IsSystem() bool {
	return m.Sender == GroupNotification
}

// Transcript is the ordered sequence of messages from one uploaded export.
// Messages appear in encounter order; the parser never re-sorts. A
// Transcript is immutable once Parse returns it.
type Transcript struct {
	Messages []Message `json:"messages"`

	// Dropped counts header lines whose timestamp could not be parsed
	// under any supported layout. They are excluded from Messages.
	Dropped int `json:"dropped"`
}

// Len returns the number of parsed messages, system events included.
func (t *Transcript) Len() int {
	return len(t.Messages)
}

// Participants returns the sorted set of human senders in the transcript.
func (t *Transcript) Participants() []string {
	seen := make(map[string]struct{})
	var users []string
	for i := range t.Messages {
		s := t.Messages[i].Sender
		if s == GroupNotification {
			continue
		}
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			users = append(users, s)
		}
	}
	sort.Strings(users)
	return users
}

// enrich fills in every derived field from Timestamp, Sender and Body.
func (m *Message) enrich() {
	_, m.IsMedia = mediaPlaceholders[m.Body]
	m.WordCount = len(strings.Fields(m.Body))
	m.LinkCount = len(linkRegex.FindAllString(m.Body, -1))

	ts := m.Timestamp
	m.Year = ts.Year()
	m.Month = ts.Month().String()
	m.MonthNum = int(ts.Month())
	m.Day = ts.Day()
	m.DayName = ts.Weekday().String()
	m.Hour = ts.Hour()
	m.HourBucket = hourBucket(ts.Hour())
	m.Date = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())

	if !m.IsSystem() {
		if score, ok := sentiment.Score(m.Body); ok {
			m.Sentiment = score
			m.Scored = true
			m.Category = sentiment.Categorize(score)
		}
	}
}

// hourBucket labels an hour of day for heatmap grouping, e.g. "14-15".
// The wrap-around hours keep their historical labels "23-00" and "00-1".
func hourBucket(hour int) string {
	switch hour {
	case 23:
		return "23-00"
	case 0:
		return "00-1"
	default:
		return strconv.Itoa(hour) + "-" + strconv.Itoa(hour+1)
	}
}

// HourBuckets returns all 24 bucket labels in chronological order.
func HourBuckets() []string {
	buckets := make([]string, 24)
	for h := 0; h < 24; h++ {
		buckets[h] = hourBucket(h)
	}
	return buckets
}
