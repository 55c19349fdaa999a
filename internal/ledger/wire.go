package ledger

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"cashbook/internal/core"
)

// Record is the JSON shape of a transaction on the REST surface.
type Record struct {
	ID          RecordID    `json:"id,omitempty"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
}

// RecordID is an opaque identifier. Stores may send it as a JSON number or
// a JSON string; numeric ids are written back as numbers.
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = RecordID(s)
		return nil
	}
	*id = RecordID(b)
	return nil
}

func (id RecordID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return []byte(s), nil
	}
	return []byte(strconv.Quote(s)), nil
}

// FromTransaction converts a domain transaction to its wire shape.
func FromTransaction(t core.Transaction) Record {
	return Record{
		ID:          RecordID(t.ID),
		Description: t.Description,
		Amount:      json.Number(t.Amount.String()),
		Type:        string(t.Type),
		Category:    t.Category,
		Date:        t.Date.String(),
	}
}

// Transaction decodes the record. It only fails on fields that cannot be
// represented; semantic checks are left to core.
func (r Record) Transaction() (core.Transaction, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount.String()))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record %s: %w", r.ID, core.ErrInvalidAmount)
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return core.Transaction{
		ID:          string(r.ID),
		Description: r.Description,
		Amount:      amount,
		Type:        core.TxType(strings.ToLower(strings.TrimSpace(r.Type))),
		Category:    r.Category,
		Date:        date,
	}, nil
}

// DecodeRecords decodes a JSON array of records.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}
