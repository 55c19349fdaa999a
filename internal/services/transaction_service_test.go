package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"cashbook/internal/amqp"
	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/ledger/memory"
)

var _ ledger.Store = (*TransactionService)(nil)

type recordingPublisher struct {
	events []amqp.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, e amqp.TransactionEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func lunch() core.Transaction {
	return core.Transaction{
		Description: "Lunch",
		Amount:      decimal.NewFromInt(12),
		Type:        core.Debit,
		Category:    "Food",
		Date:        core.NewDate(2024, 4, 2),
	}
}

func TestTransactionServicePublishesEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewTransactionService(memory.New(), pub)

	saved, err := svc.Create(ctx, lunch())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Update(ctx, saved.ID, lunch()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []amqp.EventKind{amqp.EventCreated, amqp.EventUpdated, amqp.EventDeleted}
	if len(pub.events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), pub.events)
	}
	for i, k := range want {
		if pub.events[i].Kind != k || pub.events[i].ID != saved.ID {
			t.Fatalf("event %d: expected %s/%s, got %+v", i, k, saved.ID, pub.events[i])
		}
	}
}

func TestTransactionServiceIgnoresPublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewTransactionService(memory.New(), pub)
	if _, err := svc.Create(context.Background(), lunch()); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got %v", err)
	}
}

func TestTransactionServiceFailedWriteSkipsEvent(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewTransactionService(memory.New(), pub)

	err := svc.Delete(context.Background(), "404")
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("expected no events, got %+v", pub.events)
	}
}

func TestTransactionServiceWithoutPublisher(t *testing.T) {
	svc := NewTransactionService(memory.New(lunch()), nil)
	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !sum.Debit.Equal(decimal.NewFromInt(12)) || !sum.Balance.Equal(decimal.NewFromInt(-12)) {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
