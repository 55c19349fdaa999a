package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cashbook/internal/amqp"
)

// EventRecorder stores audit trail entries.
type EventRecorder interface {
	RecordEvent(ctx context.Context, kind, transactionID string, at time.Time) error
	UnauditedTransactionIDs(ctx context.Context, limit int) ([]string, error)
}

// AuditWorker records transaction change events consumed from AMQP.
type AuditWorker struct {
	recorder  EventRecorder
	batchSize int
	now       func() time.Time
}

func NewAuditWorker(recorder EventRecorder, batchSize int) *AuditWorker {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &AuditWorker{recorder: recorder, batchSize: batchSize, now: time.Now}
}

// HandleEvent is the amqp.EventHandler of the worker. A returned error
// makes the delivery go back to the queue.
func (w *AuditWorker) HandleEvent(ctx context.Context, event amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"kind", event.Kind,
		"transaction_id", event.ID,
		"timestamp", event.Timestamp)

	at := event.Timestamp
	if at.IsZero() {
		at = w.now()
	}
	if err := w.recorder.RecordEvent(ctx, string(event.Kind), event.ID, at); err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// StartupAuditCheck records a "created" entry for stored transactions that
// have no audit trail, e.g. rows written while the broker was down. It works
// in batches until a short batch is returned or a batch records nothing.
func (w *AuditWorker) StartupAuditCheck(ctx context.Context) error {
	total, recorded, failed := 0, 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ids, err := w.recorder.UnauditedTransactionIDs(ctx, w.batchSize)
		if err != nil {
			return fmt.Errorf("list unaudited transactions: %w", err)
		}
		total += len(ids)

		batchRecorded := 0
		for _, id := range ids {
			if err := w.recorder.RecordEvent(ctx, string(amqp.EventCreated), id, w.now()); err != nil {
				slog.ErrorContext(ctx, "Failed to backfill audit entry", "transaction_id", id, "error", err)
				failed++
				continue
			}
			batchRecorded++
		}
		recorded += batchRecorded

		// failed rows stay unaudited and would come back in the next batch
		if len(ids) < w.batchSize || batchRecorded == 0 {
			break
		}
	}

	if total == 0 {
		slog.InfoContext(ctx, "No unaudited transactions found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup audit check completed",
		"total", total,
		"recorded", recorded,
		"errors", failed)
	return nil
}
