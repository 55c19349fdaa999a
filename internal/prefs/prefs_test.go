package prefs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"cashbook/internal/core"
	"cashbook/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

type failingStore struct{ sets int }

func (f *failingStore) GetPreference(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}

func (f *failingStore) SetPreference(context.Context, string, string) error {
	f.sets++
	return errors.New("storage unavailable")
}

type countingStore struct {
	*Memory
	writes []string
}

func (c *countingStore) SetPreference(ctx context.Context, key, value string) error {
	c.writes = append(c.writes, key)
	return c.Memory.SetPreference(ctx, key, value)
}

func TestLoadDefaults(t *testing.T) {
	got := Load(context.Background(), NewMemory(), quietLogger())
	if got != core.DefaultQuery() {
		t.Fatalf("expected defaults, got %+v", got)
	}
	got = Load(context.Background(), &failingStore{}, quietLogger())
	if got != core.DefaultQuery() {
		t.Fatalf("expected defaults on read failure, got %+v", got)
	}
}

func TestLoadFallsBackPerField(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.SetPreference(ctx, KeySort, "price-asc")
	_ = m.SetPreference(ctx, KeyFilter, "Crypto")
	_ = m.SetPreference(ctx, KeySearch, "rent")

	got := Load(ctx, m, quietLogger())
	if got.Sort != core.DefaultSort || got.Category != core.AllCategories || got.Search != "rent" {
		t.Fatalf("unexpected query %+v", got)
	}
}

func TestSaveWritesOnlyChangedKeys(t *testing.T) {
	ctx := context.Background()
	s := &countingStore{Memory: NewMemory()}

	prev := core.DefaultQuery()
	next := prev
	next.Category = "Food"
	if err := Save(ctx, s, prev, next); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(s.writes) != 1 || s.writes[0] != KeyFilter {
		t.Fatalf("expected a single filter write, got %v", s.writes)
	}

	got := Load(ctx, s, quietLogger())
	if got.Category != "Food" || got.Sort != core.DefaultSort {
		t.Fatalf("unexpected round trip %+v", got)
	}
}

func TestSaveReportsFailure(t *testing.T) {
	next := core.DefaultQuery()
	next.Search = "bus"
	if err := Save(context.Background(), &failingStore{}, core.DefaultQuery(), next); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadLogsReadFailuresWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	Load(context.Background(), &failingStore{}, logger)

	out := buf.String()
	if got := strings.Count(out, "Failed to read preference"); got != 3 {
		t.Fatalf("expected one warning per key, got %d:\n%s", got, out)
	}
	for _, want := range []string{"component=app", "key=" + KeySort, "error=\"storage unavailable\""} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
