package app

import (
	"errors"
	"time"

	"cashbook/internal/ledger"
	"cashbook/internal/ledger/rest"
)

// Level is the visual severity of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// NoticeDuration is how long a notice stays on screen.
const NoticeDuration = 4 * time.Second

// Notice is a transient message shown to the user after an operation.
type Notice struct {
	Level   Level
	Message string
}

func (n Notice) IsZero() bool {
	return n.Message == ""
}

// Op names a controller operation for notice lookup.
type Op string

const (
	OpRefresh     Op = "refresh"
	OpCreate      Op = "create"
	OpUpdate      Op = "update"
	OpDelete      Op = "delete"
	OpReport      Op = "report"
	OpPreferences Op = "preferences"
)

var (
	ErrNotConfirmed = errors.New("delete not confirmed")
	ErrEmptyReport  = errors.New("no transactions to include in report")
)

// ValidationError marks input rejected before reaching the store.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

type messages struct {
	ok, failed, unreachable string
}

var writeMessages = map[Op]messages{
	OpCreate: {"Transaction added!", "Failed to add transaction.", "Server error adding transaction."},
	OpUpdate: {"Transaction updated!", "Failed to update transaction.", "Server error updating transaction."},
	OpDelete: {"Transaction deleted!", "Failed to delete transaction.", "Server error deleting transaction."},
}

// NoticeFor maps the outcome of op to the notice shown to the user. A zero
// Notice means nothing should be shown.
func NoticeFor(op Op, err error) Notice {
	switch op {
	case OpRefresh:
		if err != nil {
			return Notice{LevelWarning, "Could not fetch transactions. Working in offline mode."}
		}
		return Notice{}
	case OpReport:
		switch {
		case err == nil:
			return Notice{LevelSuccess, "Report ready."}
		case errors.Is(err, ErrEmptyReport):
			return Notice{LevelWarning, "No transactions to include in PDF."}
		default:
			return Notice{LevelDanger, "Failed to generate PDF."}
		}
	case OpPreferences:
		if err != nil {
			return Notice{LevelWarning, "Could not save preferences."}
		}
		return Notice{}
	}

	m, ok := writeMessages[op]
	if !ok {
		return Notice{}
	}
	var verr *ValidationError
	switch {
	case err == nil:
		return Notice{LevelSuccess, m.ok}
	case errors.Is(err, ErrNotConfirmed):
		return Notice{}
	case errors.As(err, &verr):
		return Notice{LevelDanger, "Invalid transaction: " + verr.Error() + "."}
	case errors.Is(err, ledger.ErrNotFound):
		return Notice{LevelDanger, m.failed}
	case rest.IsUnavailable(err):
		return Notice{LevelDanger, m.unreachable}
	default:
		return Notice{LevelDanger, m.failed}
	}
}
