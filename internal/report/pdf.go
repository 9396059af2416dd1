package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/chatflowhq/chatflow/internal/analytics"
	"github.com/chatflowhq/chatflow/internal/chat"
)

// WritePDF writes the report as a PDF document: headline stats, rankings,
// sentiment summary, and the top messages.
func WritePDF(w io.Writer, t *chat.Transcript, rep *analytics.Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	// The core fonts are latin-1; transliterate what they cannot encode.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Chat Analysis Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, tr("Scope: "+rep.User))
	pdf.Ln(10)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 10)
	}
	line := func(label string, value string) {
		pdf.CellFormat(70, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
	}

	section("Key Statistics")
	line("Total Messages", strconv.Itoa(rep.Stats.Messages))
	line("Total Words", strconv.Itoa(rep.Stats.Words))
	line("Media Shared", strconv.Itoa(rep.Stats.Media))
	line("Links Shared", strconv.Itoa(rep.Stats.Links))
	pdf.Ln(4)

	if len(rep.BusiestUsers) > 0 {
		section("Most Active Users")
		for _, u := range rep.BusiestUsers {
			line(u.User, strconv.Itoa(u.Count))
		}
		pdf.Ln(4)
	}

	if len(rep.CommonWords) > 0 {
		section("Most Common Words")
		for _, wc := range rep.CommonWords {
			line(wc.Word, strconv.Itoa(wc.Count))
		}
		pdf.Ln(4)
	}

	if len(rep.Sentiment) > 0 {
		section("Sentiment Distribution")
		for _, cat := range []string{"Positive", "Neutral", "Negative"} {
			if n, ok := rep.Sentiment[cat]; ok {
				line(cat, strconv.Itoa(n))
			}
		}
		pdf.Ln(4)
	}

	writeQuotes := func(title string, msgs []analytics.ScoredMessage) {
		if len(msgs) == 0 {
			return
		}
		section(title)
		for _, m := range msgs {
			text := fmt.Sprintf("%s: %s (%.2f)", m.Sender, m.Body, m.Score)
			pdf.MultiCell(0, 6, tr(text), "", "L", false)
		}
		pdf.Ln(4)
	}
	writeQuotes("Top Positive Messages", rep.TopPositive)
	writeQuotes("Top Negative Messages", rep.TopNegative)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 8, fmt.Sprintf("Transcript: %d messages, %d dropped lines", t.Len(), t.Dropped))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
