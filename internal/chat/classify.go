package chat

import (
	"regexp"
	"strings"
	"time"
)

// lineKind is the outcome of classifying one raw line.
type lineKind int

const (
	// kindMessage opens a new user message with a parsed header.
	kindMessage lineKind = iota
	// kindSystem opens a new system event (header without a sender, or a
	// stray line with no accumulation in progress).
	kindSystem
	// kindContinuation extends the body of the message being accumulated.
	kindContinuation
	// kindInvalid is a header-shaped line whose timestamp failed to parse
	// under every supported layout. The builder drops and counts it.
	kindInvalid
)

// headerRegex matches the export's fixed message header prefix,
// e.g. "12/1/23, 10:00 - ". The remainder holds sender and body.
var headerRegex = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}(?:[\x{202f} ]?[AaPp][Mm])?) - (.*)$`)

// timestampLayouts are tried in order. The export uses one convention per
// file; later entries cover the 4-digit-year and 12-hour locale variants.
var timestampLayouts = []string{
	"1/2/06, 15:04",
	"1/2/2006, 15:04",
	"1/2/06, 3:04 PM",
	"1/2/06, 3:04 pm",
	"1/2/2006, 3:04 PM",
	"1/2/2006, 3:04 pm",
}

// classification is the pure result of examining one line. It carries no
// state; the builder owns all accumulation.
type classification struct {
	kind      lineKind
	timestamp time.Time
	sender    string
	body      string
}

// classifyLine decides whether line opens a new message, opens a system
// event, or continues the message currently being accumulated. inProgress
// reports whether the builder has an open accumulation.
func classifyLine(line string, inProgress bool) classification {
	m := headerRegex.FindStringSubmatch(line)
	if m == nil {
		if inProgress {
			return classification{kind: kindContinuation, body: line}
		}
		// Stray preamble before the first header opens a system event.
		return classification{kind: kindSystem, body: line}
	}

	ts, ok := parseTimestamp(m[1])
	if !ok {
		return classification{kind: kindInvalid}
	}

	rest := m[2]
	sender, body, found := strings.Cut(rest, ": ")
	if !found {
		// Headers without a sender colon are membership and other group
		// notices.
		return classification{kind: kindSystem, timestamp: ts, body: rest}
	}
	return classification{kind: kindMessage, timestamp: ts, sender: sender, body: body}
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.ReplaceAll(s, "\u202f", " ")
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
