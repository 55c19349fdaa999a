package main

import (
	"errors"
	"testing"
)

func TestRunRequiresBroker(t *testing.T) {
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	if err := run(); !errors.Is(err, errNoBroker) {
		t.Fatalf("expected errNoBroker, got %v", err)
	}
}
