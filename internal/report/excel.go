// Package report serializes a transcript and its precomputed aggregates
// into downloadable document formats. It consumes structured data only;
// all numbers come from the analytics package.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/chatflowhq/chatflow/internal/analytics"
	"github.com/chatflowhq/chatflow/internal/chat"
)

// WriteExcel writes an .xlsx workbook with a Summary sheet of aggregates
// and a Messages sheet listing the full enriched transcript.
func WriteExcel(w io.Writer, t *chat.Transcript, rep *analytics.Report) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := writeSummarySheet(f, rep); err != nil {
		return err
	}
	if err := writeMessagesSheet(f, t); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, rep *analytics.Report) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	row := 1
	setRow := func(values ...any) {
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				continue
			}
			f.SetCellValue(sheet, cell, v) //nolint:errcheck
		}
		row++
	}

	setRow("Scope", rep.User)
	setRow()
	setRow("Total Messages", rep.Stats.Messages)
	setRow("Total Words", rep.Stats.Words)
	setRow("Media Shared", rep.Stats.Media)
	setRow("Links Shared", rep.Stats.Links)

	if len(rep.BusiestUsers) > 0 {
		setRow()
		setRow("Most Active Users", "Messages")
		for _, u := range rep.BusiestUsers {
			setRow(u.User, u.Count)
		}
	}

	if len(rep.CommonWords) > 0 {
		setRow()
		setRow("Most Common Words", "Count")
		for _, wc := range rep.CommonWords {
			setRow(wc.Word, wc.Count)
		}
	}

	if len(rep.TopEmojis) > 0 {
		setRow()
		setRow("Top Emojis", "Count")
		for _, e := range rep.TopEmojis {
			setRow(e.Emoji, e.Count)
		}
	}

	if len(rep.Sentiment) > 0 {
		setRow()
		setRow("Sentiment", "Count")
		for _, cat := range []string{"Positive", "Neutral", "Negative"} {
			if n, ok := rep.Sentiment[cat]; ok {
				setRow(cat, n)
			}
		}
	}
	return nil
}

func writeMessagesSheet(f *excelize.File, t *chat.Transcript) error {
	const sheet = "Messages"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create messages sheet: %w", err)
	}

	header := []any{"Timestamp", "Sender", "Message", "Words", "Links", "Media", "Sentiment", "Category"}
	for col, v := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			continue
		}
		f.SetCellValue(sheet, cell, v) //nolint:errcheck
	}

	for i := range t.Messages {
		m := &t.Messages[i]
		values := []any{
			m.Timestamp.Format("2006-01-02 15:04"),
			m.Sender,
			m.Body,
			m.WordCount,
			m.LinkCount,
			m.IsMedia,
			m.Sentiment,
			string(m.Category),
		}
		if !m.Scored {
			values[6] = ""
			values[7] = ""
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				continue
			}
			f.SetCellValue(sheet, cell, v) //nolint:errcheck
		}
	}
	return nil
}
