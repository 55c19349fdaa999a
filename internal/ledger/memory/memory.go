package memory

import (
	"context"
	"strconv"
	"sync"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
)

// Store keeps transactions in process memory, in insertion order.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
}

func New(seed ...core.Transaction) *Store {
	s := &Store{}
	for _, t := range seed {
		s.nextID++
		t.ID = strconv.FormatInt(s.nextID, 10)
		s.items = append(s.items, t)
	}
	return s
}

// List returns a copy of the stored transactions.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}

// Create assigns the next numeric id and stores the transaction.
func (s *Store) Create(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = strconv.FormatInt(s.nextID, 10)
	s.items = append(s.items, t)
	return t, nil
}

func (s *Store) Update(_ context.Context, id string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	t.ID = id
	s.items[i] = t
	return t, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ledger.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0, nil
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}
