package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"cashbook/internal/core"
)

func rows(n int) []core.Transaction {
	out := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		typ := core.Debit
		if i%3 == 0 {
			typ = core.Credit
		}
		out = append(out, core.Transaction{
			ID:          fmt.Sprint(i + 1),
			Description: fmt.Sprintf("Entry %d", i+1),
			Amount:      decimal.NewFromInt(int64(10 + i)),
			Type:        typ,
			Category:    "Food",
			Date:        core.NewDate(2024, 1+i%12, 1+i%28),
		})
	}
	return out
}

func TestBuildEmpty(t *testing.T) {
	if _, err := NewBuilder("").Build(nil, Meta{}); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestBuildProducesPDF(t *testing.T) {
	doc, err := NewBuilder("INR").Build(rows(3), Meta{Category: "Food", Sort: core.SortAmountDesc})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		t.Fatalf("expected a PDF document, got %q", doc[:8])
	}
}

func TestPreviewRoundTrip(t *testing.T) {
	doc, err := NewBuilder("INR").Build(rows(120), Meta{Sort: core.SortDateAsc})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	preview, err := NewPreviewer().Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(preview.Pages) < 2 {
		t.Fatalf("expected the table to span pages, got %d", len(preview.Pages))
	}
	if !strings.Contains(preview.Pages[0], "Transaction Report") {
		t.Fatalf("title missing from first page: %q", preview.Pages[0])
	}
}

func TestToCP1252(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rent", "Rent"},
		{"Café", "Caf\xe9"},
		{"5 €", "5 \x80"},
		{"Café ☕ किराना", "Caf\xe9 ? ??????"},
	}
	for _, tt := range tests {
		if got := toCP1252(tt.in); got != tt.want {
			t.Errorf("toCP1252(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildWithTextOutsideCodePage(t *testing.T) {
	in := rows(2)
	in[0].Description = "Café ☕ किराना"
	in[1].Description = strings.Repeat("क", 200)
	doc, err := NewBuilder("INR").Build(in, Meta{Category: "Food"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		t.Fatalf("expected a PDF document, got %q", doc[:8])
	}
}

func TestPreviewRejectsGarbage(t *testing.T) {
	if _, err := NewPreviewer().Render([]byte("not a pdf")); !errors.Is(err, ErrPreview) {
		t.Fatalf("expected ErrPreview, got %v", err)
	}
}

func TestFiltersLine(t *testing.T) {
	tests := []struct {
		meta Meta
		want string
	}{
		{Meta{Category: "all", Sort: core.SortDateDesc}, "Sort=date-desc"},
		{Meta{Category: "Bills", Sort: core.SortAmountAsc}, "Category=Bills, Sort=amount-asc"},
		{Meta{Sort: "bogus"}, "Sort=date-desc"},
	}
	for _, tt := range tests {
		if got := filtersLine(tt.meta); got != tt.want {
			t.Errorf("filtersLine(%+v) = %q, want %q", tt.meta, got, tt.want)
		}
	}
}

func TestDateRange(t *testing.T) {
	first, last := dateRange([]core.Transaction{
		{Date: core.NewDate(2024, 3, 1)},
		{Date: core.NewDate(2023, 12, 20)},
		{Date: core.NewDate(2024, 1, 5)},
	})
	if first.Year() != 2023 || last.Month() != 3 {
		t.Fatalf("unexpected range %v - %v", first, last)
	}
}
