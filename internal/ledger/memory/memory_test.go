package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

func sample(desc string) core.Transaction {
	return core.Transaction{
		Description: desc,
		Amount:      decimal.NewFromInt(12),
		Type:        core.Debit,
		Category:    "Food",
		Date:        core.NewDate(2024, 4, 1),
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := New(sample("seeded"))

	created, err := s.Create(ctx, sample("lunch"))
	if err != nil || created.ID != "2" {
		t.Fatalf("unexpected create: id=%q err=%v", created.ID, err)
	}

	items, _ := s.List(ctx)
	if len(items) != 2 || items[0].Description != "seeded" {
		t.Fatalf("unexpected list: %+v", items)
	}

	upd := sample("late lunch")
	if _, err := s.Update(ctx, "2", upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	items, _ = s.List(ctx)
	if items[1].Description != "late lunch" || items[1].ID != "2" {
		t.Fatalf("update not applied: %+v", items[1])
	}

	if ok, _ := s.Exists(ctx, "2"); !ok {
		t.Fatalf("expected id 2 to exist")
	}
	if err := s.Delete(ctx, "2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "2"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Update(ctx, "99", upd); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	bad := sample("neg")
	bad.Amount = decimal.NewFromInt(-3)
	if _, err := s.Create(context.Background(), bad); !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	items, _ := s.List(context.Background())
	if len(items) != 0 {
		t.Fatalf("invalid transaction was stored")
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := New(sample("a"))
	items, _ := s.List(context.Background())
	items[0].Description = "mutated"
	again, _ := s.List(context.Background())
	if again[0].Description != "a" {
		t.Fatalf("store state leaked through List")
	}
}
