package http

import (
	"net/http"
	"time"

	"cashbook/internal/app"
	"cashbook/internal/core"
	"cashbook/internal/log"
)

type indexData struct {
	View   app.View
	Status statusData
	Notice app.Notice
	Today  string
}

type statusData struct {
	Online      bool
	LastRefresh time.Time
}

// handleIndex fetches the full set and renders the dashboard. A failed
// fetch still renders the page from the last cached set.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var notice app.Notice
	if err := s.ctrl.Refresh(ctx); err != nil {
		notice = app.NoticeFor(app.OpRefresh, err)
	}

	view := s.ctrl.View(s.ctrl.State().Query())
	data := indexData{
		View:   view,
		Status: statusData{Online: view.Online, LastRefresh: view.LastRefresh},
		Notice: notice,
		Today:  time.Now().Format(core.DateLayout),
	}
	s.writePage(w, r, "index.html", data)
}

// handleTable renders the transaction table for the current query.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	s.writePartial(w, r, "transactions_table", s.ctrl.View(s.ctrl.State().Query()))
}

// handleSummary renders credit, debit and balance over the full set.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.writePartial(w, r, "summary", s.ctrl.View(s.ctrl.State().Query()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state := s.ctrl.State()
	s.writePartial(w, r, "status_badge", statusData{
		Online:      state.Online(),
		LastRefresh: state.LastRefresh(),
	})
}

// handleChart renders the monthly chart of the filtered rows as a
// standalone page, embedded by the dashboard in an iframe.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	view := s.ctrl.View(s.ctrl.State().Query())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.chart.Render(w, view.Series); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Chart render failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
	}
}

// handlePreferences stores the sort, filter and search controls and makes
// the dashboard reload. The new query applies even if saving failed.
func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format.").Write(w)
		return
	}

	_, err := s.ctrl.SavePreferences(r.Context(), parseQuery(p.Get))
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Saving preferences failed", log.FieldError, err)
	}
	NewHTMXResponse().
		TriggerNotice(app.NoticeFor(app.OpPreferences, err)).
		TriggerTransactionsChanged().
		Write(w)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, name string, data any) {
	body, err := s.render(name, data)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name)
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

func (s *Server) writePartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	body, err := s.render(name, data)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Partial execution failed",
			log.FieldError, err,
			"template", name)
		InternalServerError("Could not render view.").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}
