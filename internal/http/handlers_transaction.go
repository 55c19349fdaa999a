package http

import (
	"errors"
	"net/http"

	"cashbook/internal/app"
	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/log"
)

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.respondWrite(w, r, app.OpCreate, &app.ValidationError{Err: errors.New("unreadable form")})
		return
	}
	t, err := parseTransaction(p.Get)
	if err == nil {
		_, err = s.ctrl.Create(r.Context(), t)
	}
	s.respondWrite(w, r, app.OpCreate, err)
}

// handleEditForm renders the edit modal for a cached transaction.
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, ok := s.cached(id)
	if !ok {
		NotFoundError("Transaction not found.").
			TriggerNotice(app.Notice{Level: app.LevelWarning, Message: "Transaction not found. Refreshing."}).
			TriggerTransactionsChanged().
			Write(w)
		return
	}
	s.writePartial(w, r, "edit_modal", t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.respondWrite(w, r, app.OpUpdate, &app.ValidationError{Err: errors.New("unreadable form")})
		return
	}
	t, err := parseTransaction(p.Get)
	if err == nil {
		_, err = s.ctrl.Update(r.Context(), r.PathValue("id"), t)
	}
	s.respondWrite(w, r, app.OpUpdate, err)
}

// handleDelete removes a transaction. The request must carry
// confirmed=true, which the delete button only sends after hx-confirm.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	_ = p.Parse()
	err := s.ctrl.Delete(r.Context(), r.PathValue("id"), parseConfirmed(p.Get))
	s.respondWrite(w, r, app.OpDelete, err)
}

// respondWrite answers a write with its notice and, on success, the events
// that reload the dashboard.
func (s *Server) respondWrite(w http.ResponseWriter, r *http.Request, op app.Op, err error) {
	b := NewHTMXResponse().TriggerNotice(app.NoticeFor(op, err))

	var verr *app.ValidationError
	switch {
	case err == nil:
		b.TriggerTransactionsChanged()
		switch op {
		case app.OpCreate:
			b.TriggerFormReset()
		case app.OpUpdate:
			b.TriggerModalClose()
		}
	case errors.Is(err, app.ErrNotConfirmed):
		b.Status(http.StatusOK)
	case errors.As(err, &verr):
		b.Status(http.StatusUnprocessableEntity)
	case errors.Is(err, ledger.ErrNotFound):
		b.Status(http.StatusNotFound).TriggerTransactionsChanged()
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Store write failed",
			log.FieldError, err,
			log.FieldOperation, string(op))
		b.Status(http.StatusBadGateway)
	}
	b.Write(w)
}

func (s *Server) cached(id string) (core.Transaction, bool) {
	for _, t := range s.ctrl.State().Transactions() {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}
