package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.February || d.Day() != 29 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.String() != "2024-02-29" || d.MonthKey() != "2024-02" {
		t.Fatalf("unexpected formatting %q %q", d.String(), d.MonthKey())
	}
	for _, bad := range []string{"", "2024-13-01", "01/02/2024"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestParseTxType(t *testing.T) {
	if got, err := ParseTxType(" Credit "); err != nil || got != Credit {
		t.Fatalf("expected credit, got %q (err=%v)", got, err)
	}
	if _, err := ParseTxType("refund"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Description: "ok",
		Amount:      decimal.RequireFromString("10.50"),
		Type:        Debit,
		Category:    "Food",
		Date:        NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("a", 201) }, ErrDescriptionTooLong},
		{"long multi-byte description", func(tx *Transaction) { tx.Description = strings.Repeat("é", 201) }, ErrDescriptionTooLong},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrNegativeAmount},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, ErrInvalidAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "refund" }, ErrInvalidType},
		{"unknown category", func(tx *Transaction) { tx.Category = "Crypto" }, ErrUnknownCategory},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateCountsCharactersNotBytes(t *testing.T) {
	tx := Transaction{
		Amount:   decimal.NewFromInt(1),
		Type:     Debit,
		Category: "Food",
		Date:     NewDate(2025, 1, 1),
	}
	for _, desc := range []string{
		strings.Repeat("क", 100),
		strings.Repeat("क", 200),
		strings.Repeat("é", 200),
	} {
		tx.Description = desc
		if err := tx.Validate(); err != nil {
			t.Errorf("%d-character description (%d bytes) rejected: %v", len([]rune(desc)), len(desc), err)
		}
	}
}

func TestCheckStoredIsLenientOnCategory(t *testing.T) {
	tx := Transaction{
		Amount:   decimal.Zero,
		Type:     Credit,
		Category: "Legacy",
		Date:     NewDate(2024, 5, 1),
	}
	if err := tx.CheckStored(); err != nil {
		t.Fatalf("expected stored record to pass, got %v", err)
	}
	tx.Amount = decimal.NewFromInt(-5)
	if err := tx.CheckStored(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestSigned(t *testing.T) {
	tx := Transaction{Amount: decimal.NewFromInt(40), Type: Debit}
	if !tx.Signed().Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("expected -40, got %s", tx.Signed())
	}
	tx.Type = Credit
	if !tx.Signed().Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected 40, got %s", tx.Signed())
	}
}
