// Package app owns the dashboard state and the operations the UI performs
// against the transaction store.
package app

import (
	"sync"
	"sync/atomic"
	"time"

	"cashbook/internal/core"
)

// State is the process-scoped dashboard state. The cached set is only ever
// replaced wholesale; whichever fetch completes last wins.
type State struct {
	mu          sync.RWMutex
	txs         []core.Transaction
	query       core.Query
	lastRefresh time.Time

	online atomic.Bool
}

func NewState() *State {
	return &State{query: core.DefaultQuery()}
}

// Transactions returns a copy of the cached set.
func (s *State) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.txs...)
}

func (s *State) replace(txs []core.Transaction, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = txs
	s.lastRefresh = at
}

func (s *State) Query() core.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *State) setQuery(q core.Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

func (s *State) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

func (s *State) Online() bool {
	return s.online.Load()
}

func (s *State) SetOnline(v bool) {
	s.online.Store(v)
}
