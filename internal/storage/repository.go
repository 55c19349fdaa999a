package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"cashbook/internal/core"
	"cashbook/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the SQLite-backed transaction store. It also holds
// dashboard preferences and the transaction event audit trail.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// List returns every transaction in insertion order. Rows that fail
// core.CheckStored are skipped with a warning.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount, type, category, date FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable transaction row", "error", err)
			continue
		}
		if err := t.CheckStored(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid transaction row", "id", t.ID, "error", err)
			continue
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (description, amount, type, category, date) VALUES (?, ?, ?, ?, ?)`,
		t.Description, t.Amount.String(), string(t.Type), t.Category, t.Date.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read transaction id: %w", err)
	}
	t.ID = strconv.FormatInt(id, 10)

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"type", t.Type,
		"category", t.Category,
		"amount", t.Amount.String())
	return t, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	key, ok := parseID(id)
	if !ok {
		return core.Transaction{}, ledger.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		    SET description = ?, amount = ?, type = ?, category = ?, date = ?, updated_at = CURRENT_TIMESTAMP
		  WHERE id = ?`,
		t.Description, t.Amount.String(), string(t.Type), t.Category, t.Date.String(), key)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	t.ID = id
	return t, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	key, ok := parseID(id)
	if !ok {
		return ledger.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, key)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, id string) (bool, error) {
	key, ok := parseID(id)
	if !ok {
		return false, nil
	}
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM transactions WHERE id = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check transaction %s: %w", id, err)
	}
	return true, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetPreference returns the stored value for key and whether it was set.
func (r *SQLiteRepository) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) SetPreference(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// Event is one row of the transaction audit trail.
type Event struct {
	ID            int64
	Kind          string
	TransactionID string
	OccurredAt    time.Time
	RecordedAt    time.Time
}

// RecordEvent appends a change event to the audit trail.
func (r *SQLiteRepository) RecordEvent(ctx context.Context, kind, transactionID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transaction_events (kind, transaction_id, occurred_at) VALUES (?, ?, ?)`,
		kind, transactionID, at.UTC())
	if err != nil {
		return fmt.Errorf("record %s event for %s: %w", kind, transactionID, err)
	}
	return nil
}

// Events returns the audit trail of a transaction, oldest first.
func (r *SQLiteRepository) Events(ctx context.Context, transactionID string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, transaction_id, occurred_at, recorded_at
		   FROM transaction_events WHERE transaction_id = ? ORDER BY id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", transactionID, err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.TransactionID, &e.OccurredAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UnauditedTransactionIDs returns up to limit ids of stored transactions
// that have no event in the audit trail.
func (r *SQLiteRepository) UnauditedTransactionIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id FROM transactions t
		  WHERE NOT EXISTS (
		        SELECT 1 FROM transaction_events e WHERE e.transaction_id = CAST(t.id AS TEXT))
		  ORDER BY t.id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unaudited transactions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan transaction id: %w", err)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return ids, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var id int64
	var desc, amount, typ, category, date string
	if err := s.Scan(&id, &desc, &amount, &typ, &category, &date); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d amount: %w", id, core.ErrInvalidAmount)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, err)
	}
	return core.Transaction{
		ID:          strconv.FormatInt(id, 10),
		Description: desc,
		Amount:      amt,
		Type:        core.TxType(typ),
		Category:    category,
		Date:        d,
	}, nil
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil
}
