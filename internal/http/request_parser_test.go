package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"cashbook/internal/app"
	"cashbook/internal/core"
)

func getter(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		key         string
		want        string
		wantJSON    bool
	}{
		{
			name:        "form body",
			target:      "/transactions",
			contentType: "application/x-www-form-urlencoded",
			body:        "description=Rent&amount=500",
			key:         "description",
			want:        "Rent",
		},
		{
			name:        "json body",
			target:      "/transactions",
			contentType: "application/json",
			body:        `{"description":"Rent","amount":500}`,
			key:         "amount",
			want:        "500",
			wantJSON:    true,
		},
		{
			name:   "query parameter",
			target: "/transactions/abc?confirmed=true",
			key:    "confirmed",
			want:   "true",
		},
		{
			name:        "control characters stripped",
			target:      "/transactions",
			contentType: "application/x-www-form-urlencoded",
			body:        "description=" + url.QueryEscape("  Rent\x00\x07 "),
			key:         "description",
			want:        "Rent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
		})
	}
}

func TestRequestBodyParserInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(`{"description":`))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if err := p.Parse(); err == nil {
		t.Fatal("second Parse should return the same error")
	}
}

func TestParseTransaction(t *testing.T) {
	base := map[string]string{
		"description": "Dinner",
		"amount":      "25,555",
		"type":        "Debit",
		"category":    "Food",
		"date":        "2024-05-01",
	}

	got, err := parseTransaction(getter(base))
	if err != nil {
		t.Fatalf("parseTransaction() error = %v", err)
	}
	if got.Amount.StringFixed(2) != "25.56" {
		t.Errorf("Amount = %s, want 25.56", got.Amount.StringFixed(2))
	}
	if got.Type != core.Debit {
		t.Errorf("Type = %q, want debit", got.Type)
	}
	if got.Date.String() != "2024-05-01" {
		t.Errorf("Date = %s", got.Date)
	}

	tests := []struct {
		field, value string
		want         error
	}{
		{"amount", "0", core.ErrInvalidAmount},
		{"amount", "", core.ErrInvalidAmount},
		{"type", "", core.ErrInvalidType},
		{"date", "", core.ErrInvalidDate},
		{"category", "Unknown", core.ErrUnknownCategory},
		{"description", "", core.ErrEmptyDescription},
		{"description", strings.Repeat("x", 201), core.ErrDescriptionTooLong},
		{"description", strings.Repeat("क", 201), core.ErrDescriptionTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			values := make(map[string]string, len(base))
			for k, v := range base {
				values[k] = v
			}
			values[tt.field] = tt.value

			_, err := parseTransaction(getter(values))
			var verr *app.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *app.ValidationError, got %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseTransactionMultiByteDescription(t *testing.T) {
	desc := strings.Repeat("क", 200)
	got, err := parseTransaction(getter(map[string]string{
		"description": desc,
		"amount":      "10",
		"type":        "debit",
		"category":    "Food",
		"date":        "2024-05-01",
	}))
	if err != nil {
		t.Fatalf("200-character description rejected: %v", err)
	}
	if got.Description != desc {
		t.Errorf("Description changed by parsing")
	}
}

func TestParseQuery(t *testing.T) {
	q := parseQuery(getter(map[string]string{"filter": "Food", "search": "rice", "sort": "bogus"}))
	if q.Category != "Food" || q.Search != "rice" {
		t.Errorf("unexpected query %+v", q)
	}
	if q.Sort != core.DefaultSort {
		t.Errorf("Sort = %q, want default", q.Sort)
	}
}

func TestParseConfirmed(t *testing.T) {
	tests := map[string]bool{"true": true, "1": true, "false": false, "": false, "yes": false}
	for in, want := range tests {
		if got := parseConfirmed(getter(map[string]string{"confirmed": in})); got != want {
			t.Errorf("parseConfirmed(%q) = %v, want %v", in, got, want)
		}
	}
}
