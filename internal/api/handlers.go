package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/log"
	"cashbook/internal/report"
)

const maxBody = 1 << 20

// summaryResponse mirrors the totals endpoint of the original backend.
type summaryResponse struct {
	TotalIncome   json.Number `json:"totalIncome"`
	TotalExpenses json.Number `json:"totalExpenses"`
	Balance       json.Number `json:"balance"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	txs, err := s.service.List(r.Context())
	if err != nil {
		s.fail(w, r, "List transactions failed", err, log.OpList)
		return
	}
	records := make([]ledger.Record, len(txs))
	for i, t := range txs {
		records[i] = ledger.FromTransaction(t)
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.decode(w, r)
	if !ok {
		return
	}
	saved, err := s.service.Create(r.Context(), t)
	if err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}
	s.logWrite(r, log.OpCreate, saved)
	writeJSON(w, http.StatusOK, ledger.FromTransaction(saved))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, ok := s.decode(w, r)
	if !ok {
		return
	}
	saved, err := s.service.Update(r.Context(), id, t)
	if errors.Is(err, ledger.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	s.logWrite(r, log.OpUpdate, saved)
	writeJSON(w, http.StatusOK, ledger.FromTransaction(saved))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.service.Delete(r.Context(), id)
	if errors.Is(err, ledger.ErrNotFound) {
		writeText(w, http.StatusNotFound, "Transaction with id "+id+" not found.")
		return
	}
	if err != nil {
		s.fail(w, r, "Delete transaction failed", err, log.OpDelete)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted", log.FieldTransactionID, id)
	writeText(w, http.StatusOK, "Transaction deleted successfully.")
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.service.Summary(r.Context())
	if err != nil {
		s.fail(w, r, "Summary failed", err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncome:   json.Number(sum.Credit.StringFixed(2)),
		TotalExpenses: json.Number(sum.Debit.StringFixed(2)),
		Balance:       json.Number(sum.Balance.StringFixed(2)),
	})
}

// handlePDF exports the full set, most recent first.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	txs, err := s.service.List(r.Context())
	if err != nil {
		s.fail(w, r, "List transactions failed", err, log.OpReport)
		return
	}
	q := core.DefaultQuery()
	doc, err := s.builder.Build(core.Apply(txs, q), report.Meta{Category: q.Category, Sort: q.Sort})
	if errors.Is(err, report.ErrEmpty) {
		writeText(w, http.StatusNotFound, "No transactions to include in PDF.")
		return
	}
	if err != nil {
		s.fail(w, r, "Build report failed", err, log.OpReport)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+report.FileName)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.service.Ping(r.Context()); err != nil {
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (core.Transaction, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeText(w, http.StatusBadRequest, "Could not read request body.")
		return core.Transaction{}, false
	}
	var rec ledger.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		writeText(w, http.StatusBadRequest, "Malformed transaction JSON.")
		return core.Transaction{}, false
	}
	t, err := rec.Transaction()
	if err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("Invalid transaction: %v.", err))
		return core.Transaction{}, false
	}
	return t, true
}

// writeError answers validation failures with 400 and anything else with 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if isValidation(err) {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("Invalid transaction: %v.", err))
		return
	}
	s.fail(w, r, "Store write failed", err, op)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error, op string) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), msg,
		log.FieldError, err,
		log.FieldOperation, op)
	writeText(w, http.StatusInternalServerError, "Internal server error.")
}

func (s *Server) logWrite(r *http.Request, op string, t core.Transaction) {
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogTransactionWrite(r.Context(), op, t.ID, string(t.Type), t.Category, t.Amount.String())
}

var validationErrors = []error{
	core.ErrEmptyDescription,
	core.ErrDescriptionTooLong,
	core.ErrInvalidAmount,
	core.ErrNegativeAmount,
	core.ErrInvalidType,
	core.ErrUnknownCategory,
	core.ErrInvalidDate,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, msg)
}
