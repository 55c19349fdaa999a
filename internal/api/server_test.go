package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/ledger/memory"
	"cashbook/internal/ledger/rest"
	"cashbook/internal/log"
	"cashbook/internal/services"
)

func newTestServer(t *testing.T, seed ...core.Transaction) (*httptest.Server, *rest.Client) {
	t.Helper()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	srv := NewServer(":0", services.NewTransactionService(memory.New(seed...), nil), logger)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts, rest.NewClient(ts.URL+BasePath, 5*time.Second)
}

func groceries() core.Transaction {
	return core.Transaction{
		Description: "Groceries",
		Amount:      decimal.RequireFromString("40"),
		Type:        core.Debit,
		Category:    "Food",
		Date:        core.NewDate(2024, 1, 20),
	}
}

func TestRESTRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	saved, err := client.Create(ctx, groceries())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if saved.ID == "" || saved.Description != "Groceries" {
		t.Fatalf("unexpected created record %+v", saved)
	}

	upd := groceries()
	upd.Amount = decimal.RequireFromString("42.50")
	if _, err := client.Update(ctx, saved.ID, upd); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := client.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].Amount.Equal(decimal.RequireFromString("42.5")) {
		t.Fatalf("unexpected list %+v", list)
	}
	if ok, _ := client.Exists(ctx, saved.ID); !ok {
		t.Fatalf("expected %s to exist", saved.ID)
	}

	if err := client.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = client.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)

	err := client.Delete(ctx, "99")
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var se *rest.StatusError
	if !errors.As(err, &se) || se.Body != "Transaction with id 99 not found." {
		t.Fatalf("unexpected delete error %v", err)
	}

	if _, err := client.Update(ctx, "99", groceries()); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestDeleteMessage(t *testing.T) {
	ts, _ := newTestServer(t, groceries())
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+BasePath+"/1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "Transaction deleted successfully." {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, body)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	ts, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed", `{"description":`},
		{"negative amount", `{"description":"x","amount":-5,"type":"debit","category":"Food","date":"2024-01-01"}`},
		{"unknown category", `{"description":"x","amount":5,"type":"debit","category":"Pets","date":"2024-01-01"}`},
		{"bad date", `{"description":"x","amount":5,"type":"debit","category":"Food","date":"01/01/2024"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+BasePath, "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	salary := groceries()
	salary.Description, salary.Type, salary.Category = "Salary", core.Credit, "Salary"
	salary.Amount = decimal.NewFromInt(100)
	ts, _ := newTestServer(t, salary, groceries())

	resp, err := http.Get(ts.URL + BasePath + "/summary")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var got map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{"totalIncome": "100.00", "totalExpenses": "40.00", "balance": "60.00"}
	for k, v := range want {
		if string(got[k]) != v {
			t.Errorf("%s: expected %s, got %s", k, v, got[k])
		}
	}
}

func TestPDFExport(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + BasePath + "/pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on empty store, got %d", resp.StatusCode)
	}

	ts, _ = newTestServer(t, groceries())
	resp, err = http.Get(ts.URL + BasePath + "/pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.Header.Get("Content-Disposition") != "attachment; filename=transactions.pdf" {
		t.Fatalf("unexpected disposition %q", resp.Header.Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("expected a PDF body")
	}
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+BasePath, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected preflight response %d %v", resp.StatusCode, resp.Header)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id header")
	}
}
