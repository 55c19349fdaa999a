// Package ledger defines the transaction store port and the wire format of
// transaction records exchanged over REST.
package ledger

import (
	"context"
	"errors"

	"cashbook/internal/core"
)

// ErrNotFound is returned when the store has no transaction with the given id.
var ErrNotFound = errors.New("transaction not found")

// Ports for the transaction store.
type (
	Lister interface {
		// List returns every transaction known to the store.
		List(ctx context.Context) ([]core.Transaction, error)
	}

	Writer interface {
		Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
		Update(ctx context.Context, id string, t core.Transaction) (core.Transaction, error)
		Delete(ctx context.Context, id string) error
	}

	// Store is the full transaction store used by the dashboard and the
	// REST API server.
	Store interface {
		Lister
		Writer
		Exists(ctx context.Context, id string) (bool, error)
		// Ping reports whether the store is reachable.
		Ping(ctx context.Context) error
	}
)
