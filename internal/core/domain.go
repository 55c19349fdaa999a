package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Credit TxType = "credit"
	Debit  TxType = "debit"
)

// maxDescriptionRunes matches the maxlength of the description inputs,
// which counts characters rather than bytes.
const maxDescriptionRunes = 200

// DateLayout is the wire and form layout of a Date.
const DateLayout = "2006-01-02"

type (
	TxType string

	Date struct {
		time.Time
	}

	// Transaction is a single income or expense line. Amount is always a
	// magnitude; the sign is derived from Type.
	Transaction struct {
		ID          string
		Description string
		Amount      decimal.Decimal
		Type        TxType
		Category    string
		Date        Date
	}
)

var (
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeAmount     = errors.New("negative amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrInvalidDate        = errors.New("invalid date")
)

var categories = []string{
	"Salary",
	"Food",
	"Transport",
	"Shopping",
	"Bills",
	"Entertainment",
	"Health",
	"Education",
	"Other",
}

// Categories returns the fixed category set in display order.
func Categories() []string {
	return append([]string(nil), categories...)
}

// IsCategory reports whether name belongs to the fixed category set.
func IsCategory(name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

func (t TxType) Valid() bool {
	return t == Credit || t == Debit
}

// ParseTxType normalizes user input such as "Credit " into a TxType.
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the "YYYY-MM" bucket key of the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// Signed returns the amount with the sign implied by the type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Validate checks a transaction before it is sent to the store.
func (t Transaction) Validate() error {
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(desc) > maxDescriptionRunes {
		return ErrDescriptionTooLong
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !IsCategory(t.Category) {
		return ErrUnknownCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// CheckStored is the lenient check applied to records read back from the
// store: categories and descriptions written by other clients are accepted,
// but a record whose amount or type cannot be displayed correctly is not.
func (t Transaction) CheckStored() error {
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
