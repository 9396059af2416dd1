package server

import (
	"net/http"

	"github.com/chatflowhq/chatflow/internal/analytics"
	"github.com/chatflowhq/chatflow/internal/report"
)

// handleExportExcel streams the full report as an .xlsx workbook.
func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	transcript := s.sessions.Transcript(requestToken(r))
	if transcript == nil {
		s.writeError(w, http.StatusConflict, "no transcript uploaded")
		return
	}

	user := selectedUser(r, transcript)
	rep := analytics.BuildReport(r.Context(), transcript, user)

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		`attachment; filename="chat_analysis_report.xlsx"`)
	if err := report.WriteExcel(w, transcript, rep); err != nil {
		s.logger.Error("excel export failed", "error", err)
	}
}

// handleExportPDF streams the full report as a PDF document.
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	transcript := s.sessions.Transcript(requestToken(r))
	if transcript == nil {
		s.writeError(w, http.StatusConflict, "no transcript uploaded")
		return
	}

	user := selectedUser(r, transcript)
	rep := analytics.BuildReport(r.Context(), transcript, user)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		`attachment; filename="chat_analysis_report.pdf"`)
	if err := report.WritePDF(w, transcript, rep); err != nil {
		s.logger.Error("pdf export failed", "error", err)
	}
}
