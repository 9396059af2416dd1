package analytics

import (
	"sort"

	"github.com/forPelevin/gomoji"

	"github.com/chatflowhq/chatflow/internal/chat"
)

// EmojiCount is one ranked emoji of the frequency table.
type EmojiCount struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// TopEmojis counts every emoji occurrence in the messages in scope and
// ranks them by descending count, ties kept in first-occurrence order. An
// empty result means no emoji were found; callers must not treat that as an
// error.
func TopEmojis(t *chat.Transcript, user string) []EmojiCount {
	counts := make(map[string]int)
	var order []string
	for _, m := range filtered(t, user) {
		for _, e := range gomoji.CollectAll(m.Body) {
			if _, seen := counts[e.Character]; !seen {
				order = append(order, e.Character)
			}
			counts[e.Character]++
		}
	}

	ranked := make([]EmojiCount, 0, len(order))
	for _, ch := range order {
		ranked = append(ranked, EmojiCount{Emoji: ch, Count: counts[ch]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	return ranked
}
