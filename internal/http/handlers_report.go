package http

import (
	"errors"
	"net/http"
	"strconv"

	"cashbook/internal/app"
	"cashbook/internal/log"
	"cashbook/internal/report"
)

type reportData struct {
	Doc         app.Document
	DownloadURL string
	FileName    string
}

// handleReport builds the PDF for the current filter and sort and renders
// its preview. When the preview fails the partial still offers a download.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ctrl.Report(r.Context(), s.ctrl.State().Query())
	notice := app.NoticeFor(app.OpReport, err)

	switch {
	case errors.Is(err, app.ErrEmptyReport):
		NewHTMXResponse().TriggerNotice(notice).Write(w)
		return
	case err != nil:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Report build failed",
			log.FieldError, err,
			log.FieldOperation, log.OpReport)
		InternalServerError("Could not build report.").TriggerNotice(notice).Write(w)
		return
	}

	body, err := s.render("report_preview", reportData{
		Doc:         doc,
		DownloadURL: "/report/" + doc.Token + "/" + report.FileName,
		FileName:    report.FileName,
	})
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Report preview template failed", log.FieldError, err)
		InternalServerError("Could not render report preview.").Write(w)
		return
	}
	NewHTMXResponse().TriggerNotice(notice).BodyHTML(body).Write(w)
}

// handleDownload serves a built report as transactions.pdf.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	data, ok := s.ctrl.Document(r.PathValue("token"))
	if !ok {
		NotFoundError("Report expired. Generate it again.").Write(w)
		return
	}
	NewHTMXResponse().
		Header("Content-Type", "application/pdf").
		Header("Content-Disposition", `attachment; filename="`+report.FileName+`"`).
		Header("Content-Length", strconv.Itoa(len(data))).
		Body(data).
		Write(w)
}
