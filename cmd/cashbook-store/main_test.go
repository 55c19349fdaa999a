package main

import (
	"net"
	"strconv"
	"testing"
	"time"
)

func TestRunReportsServeFailure(t *testing.T) {
	// hold the port so the store cannot bind it
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	t.Setenv("STORE_PORT", strconv.Itoa(port))
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	done := make(chan error, 1)
	go func() { done <- run() }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error when the port is taken")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after a bind failure")
	}
}
