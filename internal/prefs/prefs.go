// Package prefs persists the dashboard's sort, filter and search choices
// across sessions.
package prefs

import (
	"context"
	"fmt"
	"sync"

	"cashbook/internal/core"
	"cashbook/internal/log"
)

// Storage keys, all under the cashbook namespace.
const (
	KeySort   = "cashbook.sort"
	KeyFilter = "cashbook.filter"
	KeySearch = "cashbook.search"
)

// Store is a string key/value store.
type Store interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Load reads the saved query. Missing, unreadable or invalid values fall
// back to core.DefaultQuery field by field; read errors are logged.
func Load(ctx context.Context, s Store, logger *log.Logger) core.Query {
	q := core.DefaultQuery()

	if v, ok := get(ctx, s, logger, KeySort); ok {
		q.Sort = core.ParseSortMode(v)
	}
	if v, ok := get(ctx, s, logger, KeyFilter); ok && (v == core.AllCategories || core.IsCategory(v)) {
		q.Category = v
	}
	if v, ok := get(ctx, s, logger, KeySearch); ok {
		q.Search = v
	}
	return q
}

// Save writes the fields of next that differ from prev.
func Save(ctx context.Context, s Store, prev, next core.Query) error {
	changes := []struct{ key, old, new string }{
		{KeySort, string(prev.Sort), string(next.Sort)},
		{KeyFilter, prev.Category, next.Category},
		{KeySearch, prev.Search, next.Search},
	}
	for _, c := range changes {
		if c.old == c.new {
			continue
		}
		if err := s.SetPreference(ctx, c.key, c.new); err != nil {
			return fmt.Errorf("save %s: %w", c.key, err)
		}
	}
	return nil
}

func get(ctx context.Context, s Store, logger *log.Logger, key string) (string, bool) {
	v, ok, err := s.GetPreference(ctx, key)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read preference, using default", "key", key, log.FieldError, err)
		return "", false
	}
	return v, ok
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) GetPreference(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) SetPreference(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
