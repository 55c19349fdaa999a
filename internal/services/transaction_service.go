package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cashbook/internal/amqp"
	"cashbook/internal/core"
	"cashbook/internal/ledger"
)

// EventPublisher publishes transaction change events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event amqp.TransactionEvent) error
}

// TransactionService orchestrates store writes and change events. It
// implements ledger.Store so it can sit in front of any backend.
type TransactionService struct {
	store     ledger.Store
	publisher EventPublisher
}

// NewTransactionService wires store and an optional publisher; pass nil to
// run without events.
func NewTransactionService(store ledger.Store, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.List(ctx)
}

// Create saves t and publishes a created event.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	saved, err := s.store.Create(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.publish(ctx, amqp.EventCreated, saved.ID)
	return saved, nil
}

func (s *TransactionService) Update(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	saved, err := s.store.Update(ctx, id, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	s.publish(ctx, amqp.EventUpdated, saved.ID)
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	s.publish(ctx, amqp.EventDeleted, id)
	return nil
}

func (s *TransactionService) Exists(ctx context.Context, id string) (bool, error) {
	return s.store.Exists(ctx, id)
}

func (s *TransactionService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Summary totals the whole store.
func (s *TransactionService) Summary(ctx context.Context) (core.Summary, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	return core.Summarize(txs), nil
}

// publish is best effort: the write already succeeded.
func (s *TransactionService) publish(ctx context.Context, kind amqp.EventKind, id string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", "kind", kind, "id", id)
		return
	}
	if err := s.publisher.PublishEvent(ctx, amqp.NewTransactionEvent(kind, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"kind", kind, "id", id, "error", err)
	}
}

// Close closes the store and publisher when they hold resources.
func (s *TransactionService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
