package chat

import (
	"log/slog"
	"strings"
)

// pending is the message currently being accumulated while scanning lines.
type pending struct {
	cls  classification
	body []string
}

// Parse converts the raw text of one exported transcript into a Transcript.
// It is a pure function of its input: lines are classified one at a time,
// continuations are folded into the preceding message, and each finalized
// message is enriched and sentiment-annotated exactly once.
//
// Malformed lines never abort ingestion. Headers without a sender and stray
// preamble text become system events; headers with unparseable timestamps
// are dropped and counted.
func Parse(data string) *Transcript {
	t := &Transcript{}
	var cur *pending

	flush := func() {
		if cur == nil {
			return
		}
		// Trailing blank continuations (usually the file's final newline)
		// are not part of the body.
		for len(cur.body) > 1 && cur.body[len(cur.body)-1] == "" {
			cur.body = cur.body[:len(cur.body)-1]
		}
		msg := Message{
			Timestamp: cur.cls.timestamp,
			Sender:    cur.cls.sender,
			Body:      strings.Join(cur.body, "\n"),
		}
		if msg.Sender == "" {
			msg.Sender = GroupNotification
		}
		msg.enrich()
		t.Messages = append(t.Messages, msg)
		cur = nil
	}

	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" && cur == nil {
			continue
		}

		cls := classifyLine(line, cur != nil)
		switch cls.kind {
		case kindContinuation:
			cur.body = append(cur.body, cls.body)
		case kindInvalid:
			t.Dropped++
			slog.Debug("dropping line with unparseable timestamp", "line", line)
		default:
			flush()
			cur = &pending{cls: cls, body: []string{cls.body}}
		}
	}
	flush()

	if t.Dropped > 0 {
		slog.Warn("transcript lines dropped during parse",
			"dropped", t.Dropped, "parsed", len(t.Messages))
	}
	return t
}
